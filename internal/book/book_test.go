package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// place is a small helper mirroring the CSV command-stream's PLACE row.
func place(b *Book, id uint64, s Side, price uint32, volume uint64) []Trade {
	return b.PlaceOrder(id, 0, s, price, volume)
}

func TestRestThenCancel(t *testing.T) {
	b := New()

	trades := place(b, 1, Buy, 100, 10)
	assert.Empty(t, trades)
	assert.EqualValues(t, 100, b.BestBuy())

	trades = place(b, 2, Sell, 105, 5)
	assert.Empty(t, trades)
	assert.EqualValues(t, 105, b.BestSell())
	assert.EqualValues(t, 5, b.Spread())

	b.DeleteOrder(1)
	assert.EqualValues(t, 0, b.BestBuy())
}

func TestFullConsumeAtOneLevel(t *testing.T) {
	b := New()

	place(b, 1, Sell, 50, 10)
	trades := place(b, 2, Buy, 50, 10)

	require.Len(t, trades, 1)
	assert.Equal(t, Trade{AggressorID: 2, MatchedID: 1, Price: 50, Volume: 10}, trades[0])
	assert.EqualValues(t, 0, b.BestBuy())
	assert.EqualValues(t, 0, b.BestSell())
}

func TestFIFOAtOnePrice(t *testing.T) {
	b := New()

	place(b, 1, Sell, 50, 4)
	place(b, 2, Sell, 50, 6)
	trades := place(b, 3, Buy, 50, 7)

	require.Len(t, trades, 2)
	assert.Equal(t, Trade{AggressorID: 3, MatchedID: 1, Price: 50, Volume: 4}, trades[0])
	assert.Equal(t, Trade{AggressorID: 3, MatchedID: 2, Price: 50, Volume: 3}, trades[1])

	levels := b.SellLevels()
	require.Len(t, levels, 1)
	assert.Equal(t, LevelView{Price: 50, TotalVolume: 3}, levels[0])
	assert.EqualValues(t, 0, b.BestBuy())
}

func TestSweepMultipleLevels(t *testing.T) {
	b := New()

	place(b, 1, Sell, 100, 2)
	place(b, 2, Sell, 101, 2)
	place(b, 3, Sell, 102, 2)
	trades := place(b, 4, Buy, 101, 5)

	require.Len(t, trades, 2)
	assert.Equal(t, Trade{AggressorID: 4, MatchedID: 1, Price: 100, Volume: 2}, trades[0])
	assert.Equal(t, Trade{AggressorID: 4, MatchedID: 2, Price: 101, Volume: 2}, trades[1])

	assert.EqualValues(t, 101, b.BestBuy())
	assert.EqualValues(t, 102, b.BestSell())
	assert.Equal(t, Active, b.OrderStatus(4))
}

func TestResidualRests(t *testing.T) {
	b := New()

	place(b, 1, Sell, 200, 5)
	trades := place(b, 2, Buy, 200, 8)

	require.Len(t, trades, 1)
	assert.Equal(t, Trade{AggressorID: 2, MatchedID: 1, Price: 200, Volume: 5}, trades[0])
	assert.EqualValues(t, 200, b.BestBuy())
	assert.EqualValues(t, 0, b.BestSell())

	levels := b.BuyLevels()
	require.Len(t, levels, 1)
	assert.Equal(t, LevelView{Price: 200, TotalVolume: 3}, levels[0])
}

func TestCancelOfNonExistentID(t *testing.T) {
	b := New()
	b.DeleteOrder(999)
	assert.EqualValues(t, 0, b.BestBuy())
	assert.EqualValues(t, 0, b.BestSell())
}

func TestRejectsMalformedPlace(t *testing.T) {
	b := New()

	assert.Empty(t, place(b, 1, Buy, 0, 10))
	assert.Empty(t, place(b, 1, Buy, 10, 0))

	place(b, 1, Buy, 10, 10)
	assert.Empty(t, place(b, 1, Buy, 20, 20), "duplicate id must be rejected")
	assert.EqualValues(t, 10, b.BestBuy())
}

func TestNoCrossedBookAfterSweep(t *testing.T) {
	b := New()
	place(b, 1, Sell, 100, 2)
	place(b, 2, Sell, 101, 2)
	place(b, 3, Buy, 101, 5)

	bestBuy, bestSell := b.BestBuy(), b.BestSell()
	assert.True(t, bestBuy == 0 || bestSell == 0 || bestBuy < bestSell)
}

func TestDeleteIsIdempotent(t *testing.T) {
	b := New()
	place(b, 1, Buy, 100, 10)

	b.DeleteOrder(1)
	assert.Equal(t, Deleted, b.OrderStatus(1))

	b.DeleteOrder(1)
	assert.Equal(t, Deleted, b.OrderStatus(1))
	assert.EqualValues(t, 0, b.BestBuy())
}

func TestConservationOfShares(t *testing.T) {
	b := New()
	place(b, 1, Sell, 50, 10)
	trades := place(b, 2, Buy, 50, 7)

	require.Len(t, trades, 1)
	var filled uint64
	for _, tr := range trades {
		if tr.MatchedID == 1 {
			filled += tr.Volume
		}
	}
	// order 1 had initial volume 10, is still resting with 3 remaining.
	levels := b.SellLevels()
	require.Len(t, levels, 1)
	assert.EqualValues(t, 10, filled+levels[0].TotalVolume)
}

func TestPoolReleaseOnFullFillNeverRested(t *testing.T) {
	b := New()
	place(b, 1, Sell, 50, 10)
	place(b, 2, Buy, 50, 10)

	// order 2 matched fully on entry and should never appear as resting.
	assert.Equal(t, Deleted, b.OrderStatus(2))
}

func TestMultiLevelDeterministicReplay(t *testing.T) {
	run := func() []Trade {
		b := New()
		place(b, 1, Sell, 100, 2)
		place(b, 2, Sell, 101, 2)
		place(b, 3, Sell, 102, 2)
		return place(b, 4, Buy, 103, 10)
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}
