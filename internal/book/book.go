package book

import (
	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"
)

const (
	orderPoolChunkSize = 4096
	limitPoolChunkSize = 1024
)

// LevelView is a read-only snapshot of one price level, used by
// consumers iterating a side of the book.
type LevelView struct {
	Price       uint32
	TotalVolume uint64
}

// side holds one half of the book: a price->Limit map for O(1) lookup
// and an ordered price set for O(log P) best-price retrieval. best is
// refreshed from prices whenever the top of book might have moved.
type side struct {
	isBuy  bool
	limits map[uint32]*Limit
	prices *btree.BTreeG[uint32]
	best   uint32
}

func newSide(isBuy bool) *side {
	return &side{
		isBuy:  isBuy,
		limits: make(map[uint32]*Limit),
		prices: btree.NewBTreeG(func(a, b uint32) bool { return a < b }),
	}
}

func (s *side) refreshBest() {
	if s.isBuy {
		if p, ok := s.prices.Max(); ok {
			s.best = p
			return
		}
	} else {
		if p, ok := s.prices.Min(); ok {
			s.best = p
			return
		}
	}
	s.best = 0
}

// crosses reports whether an incoming order at price would match
// against this (opposite) side's best price.
func (s *side) crosses(price uint32) bool {
	if s.best == 0 {
		return false
	}
	if s.isBuy {
		// s is the buy side, so the incoming order is a SELL; it
		// crosses while its price is at or below the best bid.
		return price <= s.best
	}
	// s is the sell side, incoming is a BUY; crosses at or above best ask.
	return price >= s.best
}

// Book owns both sides of a single symbol's order book plus the global
// id->Order registry and the Order/Limit object pools.
type Book struct {
	buy  *side
	sell *side

	idToOrder map[uint64]*Order

	orders *pool[Order]
	limits *pool[Limit]
}

// New returns an empty Book.
func New() *Book {
	return &Book{
		buy:       newSide(true),
		sell:      newSide(false),
		idToOrder: make(map[uint64]*Order),
		orders:    newPool[Order](orderPoolChunkSize),
		limits:    newPool[Limit](limitPoolChunkSize),
	}
}

// PlaceOrder matches id against the opposite side of the book, rests any
// residual volume, and returns the trades produced. A malformed or
// duplicate-id placement is rejected: it is logged as a warning and an
// empty trade list is returned — never an error.
func (b *Book) PlaceOrder(id, agentID uint64, s Side, price uint32, volume uint64) []Trade {
	if price == 0 || volume == 0 {
		log.Warn().Uint64("id", id).Uint32("price", price).Uint64("volume", volume).
			Msg("rejected place: non-positive price or zero volume")
		return nil
	}
	if _, exists := b.idToOrder[id]; exists {
		log.Warn().Uint64("id", id).Msg("rejected place: order id already exists")
		return nil
	}

	incoming := b.orders.alloc()
	*incoming = Order{
		ID:            id,
		AgentID:       agentID,
		Side:          s,
		Price:         price,
		InitialVolume: volume,
		Volume:        volume,
		Status:        Active,
	}

	var opposite *side
	if s == Buy {
		opposite = b.sell
	} else {
		opposite = b.buy
	}

	var trades []Trade
	for opposite.crosses(price) && !incoming.isFulfilled() {
		limit := opposite.limits[opposite.best]
		levelTrades := limit.matchOrder(incoming)
		trades = append(trades, levelTrades...)
		b.reclaimFulfilled(levelTrades)
		b.checkForEmptyLimit(opposite, limit.Price)
	}

	if incoming.isFulfilled() {
		b.orders.release(incoming)
	} else {
		b.idToOrder[id] = incoming
		b.restOrder(incoming)
	}

	return trades
}

// reclaimFulfilled erases and pool-releases every resting order that a
// round of matching consumed down to zero volume.
func (b *Book) reclaimFulfilled(trades []Trade) {
	for _, t := range trades {
		matched, ok := b.idToOrder[t.MatchedID]
		if ok && matched.Status == Fulfilled {
			delete(b.idToOrder, t.MatchedID)
			b.orders.release(matched)
		}
	}
}

// checkForEmptyLimit removes and pool-releases price's Limit on side s
// if matching or cancellation emptied it, and refreshes the cached best
// price if that Limit was the top of book.
func (b *Book) checkForEmptyLimit(s *side, price uint32) {
	limit, ok := s.limits[price]
	if !ok || !limit.isEmpty() {
		return
	}
	delete(s.limits, price)
	s.prices.Delete(price)
	b.limits.release(limit)
	if price == s.best {
		s.refreshBest()
	}
}

// getOrCreateLimit returns the existing Limit at price on side s, or
// allocates and registers a new one.
func (b *Book) getOrCreateLimit(s *side, price uint32) *Limit {
	if limit, ok := s.limits[price]; ok {
		return limit
	}
	limit := b.limits.alloc()
	*limit = Limit{Price: price}
	s.limits[price] = limit
	s.prices.Set(price)
	return limit
}

// restOrder inserts a residual order into its own side, updating the
// cached best price if it extends the top of book.
func (b *Book) restOrder(o *Order) {
	s := b.sideFor(o.Side)
	limit := b.getOrCreateLimit(s, o.Price)
	limit.insertOrder(o)

	if s.isBuy {
		if s.best == 0 || o.Price > s.best {
			s.best = o.Price
		}
	} else {
		if s.best == 0 || o.Price < s.best {
			s.best = o.Price
		}
	}
}

func (b *Book) sideFor(s Side) *side {
	if s == Buy {
		return b.buy
	}
	return b.sell
}

// DeleteOrder cancels a resting order. An unknown id, or one that has
// already been fulfilled or deleted, is a silent no-op.
func (b *Book) DeleteOrder(id uint64) {
	o, ok := b.idToOrder[id]
	if !ok || o.Status != Active {
		return
	}

	s := b.sideFor(o.Side)
	limit := s.limits[o.Price]
	limit.deleteOrder(o)
	b.checkForEmptyLimit(s, o.Price)

	delete(b.idToOrder, id)
	b.orders.release(o)
}

// BestBuy is the highest price with a resting buy order, or 0 if the
// buy side is empty.
func (b *Book) BestBuy() uint32 { return b.buy.best }

// BestSell is the lowest price with a resting sell order, or 0 if the
// sell side is empty.
func (b *Book) BestSell() uint32 { return b.sell.best }

// Spread is BestSell - BestBuy. Only meaningful when both sides are
// non-empty; callers must check BestBuy/BestSell first.
func (b *Book) Spread() uint32 { return b.sell.best - b.buy.best }

// MidPrice is the integer-truncated mid-point of best bid and best ask.
// Only meaningful when both sides are non-empty. Embedders needing a
// fractional mid-price should compute it themselves in a wider domain.
func (b *Book) MidPrice() uint32 { return (b.sell.best + b.buy.best) / 2 }

// OrderStatus reports ACTIVE for a currently resting order. Per the
// source contract this repository follows, DELETED is returned both for
// orders that were genuinely cancelled/fulfilled-and-reclaimed and for
// ids that were never placed at all — the two cases are not
// distinguished.
func (b *Book) OrderStatus(id uint64) OrderStatus {
	if o, ok := b.idToOrder[id]; ok {
		return o.Status
	}
	return Deleted
}

// BuyLevels returns (price, total volume) pairs for the buy side in
// ascending price order (i.e. worst-to-best bid; reverse to walk from
// the best bid down).
func (b *Book) BuyLevels() []LevelView { return levels(b.buy) }

// SellLevels returns (price, total volume) pairs for the sell side in
// ascending price order (best-to-worst ask).
func (b *Book) SellLevels() []LevelView { return levels(b.sell) }

func levels(s *side) []LevelView {
	prices := s.prices.Items()
	views := make([]LevelView, len(prices))
	for i, price := range prices {
		views[i] = LevelView{Price: price, TotalVolume: s.limits[price].TotalVolume}
	}
	return views
}
