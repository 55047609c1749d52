package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderBookImbalanceAndAsk(t *testing.T) {
	book := OrderBook{
		Above: []PriceLevel{{Price: 70, Size: 300}, {Price: 68, Size: 100}},
		Below: []PriceLevel{{Price: 27, Size: 100}, {Price: 25, Size: 100}},
	}
	imb, ok := book.Imbalance()
	assert.True(t, ok)
	assert.InDelta(t, 1.0/3.0, imb, 1e-9)
	assert.Equal(t, 73, book.BestAsk(SideAbove))
	assert.Equal(t, 30, book.BestAsk(SideBelow))
	assert.Zero(t, book.BestAsk(SideNone))

	_, ok = OrderBook{}.Imbalance()
	assert.False(t, ok)
	assert.Zero(t, OrderBook{}.BestAsk(SideAbove))
}

func TestRecentVolatilityPct(t *testing.T) {
	candles := []Candle{
		{High: 200, Low: 100},
		{High: 101, Low: 99},
		{High: 102, Low: 100},
	}
	vol, ok := RecentVolatilityPct(candles, 2, 100)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, vol, 1e-9)

	_, ok = RecentVolatilityPct(nil, 5, 100)
	assert.False(t, ok)
	_, ok = RecentVolatilityPct(candles, 5, 0)
	assert.False(t, ok)
}

func TestSideHelpers(t *testing.T) {
	assert.Equal(t, SideBelow, SideAbove.Opposite())
	assert.Equal(t, "yes", SideAbove.VenueSide())
	assert.Equal(t, "no", SideBelow.VenueSide())
	assert.Equal(t, SideAbove, ParseSide("YES"))
	assert.Equal(t, SideNone, ParseSide("sideways"))
}
