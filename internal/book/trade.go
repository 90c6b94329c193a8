package book

// Trade is a single fill between an incoming (aggressor) order and a
// resting (matched) order. Price is always the resting side's limit
// price, never the aggressor's.
type Trade struct {
	AggressorID uint64
	MatchedID   uint64
	Price       uint32
	Volume      uint64
}
