// Package engine is the thin, synchronous seam between the pure matching
// core (internal/book) and the surrounding transport/ingestion layers.
// It owns exactly one Book — this repository's core is single-symbol by
// design — and forwards command results to a pluggable Reporter.
package engine

import (
	"github.com/rs/zerolog/log"

	"lobengine/internal/book"
)

// Reporter receives the side effects of processed commands: trades
// produced by a place, or an error worth surfacing to an operator.
// Grounded on the teacher's Engine.Trade(taker, maker, qty) hook,
// generalized to the Trade batch the core returns directly rather than
// reporting one fill at a time.
type Reporter interface {
	ReportTrades(trades []book.Trade)
	ReportError(err error)
}

// Engine translates Place/Cancel commands into Book calls and reports
// results. It holds no state of its own beyond the Book and the wired
// Reporter.
type Engine struct {
	Book     *book.Book
	reporter Reporter
}

// New returns an Engine over a fresh, empty Book.
func New() *Engine {
	return &Engine{Book: book.New()}
}

// SetReporter wires a Reporter to receive future trade notifications.
// A nil reporter (the default) silently drops them. Engine itself never
// calls ReportError: Book rejections produce no error value.
func (e *Engine) SetReporter(r Reporter) {
	e.reporter = r
}

// PlaceOrder processes one PLACE command and returns the trades it
// produced, forwarding them to the Reporter if one is wired.
func (e *Engine) PlaceOrder(id, agentID uint64, side book.Side, price uint32, volume uint64) []book.Trade {
	trades := e.Book.PlaceOrder(id, agentID, side, price, volume)
	if e.reporter != nil && len(trades) > 0 {
		e.reporter.ReportTrades(trades)
	}
	log.Debug().
		Uint64("id", id).
		Str("side", side.String()).
		Int("trades", len(trades)).
		Msg("place processed")
	return trades
}

// CancelOrder processes one DELETE command.
func (e *Engine) CancelOrder(id uint64) {
	e.Book.DeleteOrder(id)
	log.Debug().Uint64("id", id).Msg("cancel processed")
}
