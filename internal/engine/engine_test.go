package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobengine/internal/book"
)

type fakeReporter struct {
	trades []book.Trade
	errs   []error
}

func (f *fakeReporter) ReportTrades(trades []book.Trade) { f.trades = append(f.trades, trades...) }
func (f *fakeReporter) ReportError(err error)            { f.errs = append(f.errs, err) }

func TestEngineReportsTrades(t *testing.T) {
	e := New()
	r := &fakeReporter{}
	e.SetReporter(r)

	e.PlaceOrder(1, 10, book.Sell, 50, 10)
	trades := e.PlaceOrder(2, 20, book.Buy, 50, 10)

	require.Len(t, trades, 1)
	assert.Equal(t, trades, r.trades)
}

func TestEngineCancel(t *testing.T) {
	e := New()
	e.PlaceOrder(1, 10, book.Buy, 100, 5)
	assert.Equal(t, book.Active, e.Book.OrderStatus(1))

	e.CancelOrder(1)
	assert.Equal(t, book.Deleted, e.Book.OrderStatus(1))
}

func TestEngineNoReporterDoesNotPanic(t *testing.T) {
	e := New()
	assert.NotPanics(t, func() {
		e.PlaceOrder(1, 0, book.Buy, 100, 5)
	})
}
