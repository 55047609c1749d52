package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikebot/internal/market"
)

func series(n int, start, step float64) []market.Candle {
	out := make([]market.Candle, n)
	price := start
	for i := range out {
		out[i] = market.Candle{
			OpenTime:  int64(i) * 60_000,
			CloseTime: int64(i+1)*60_000 - 1,
			Open:      price,
			High:      price + 5,
			Low:       price - 5,
			Close:     price + step,
		}
		price += step
	}
	return out
}

func TestTalibProviderInsufficientData(t *testing.T) {
	p := NewTalibProvider(TalibSettings{})
	assert.Nil(t, p.Compute(nil))
	assert.Nil(t, p.Compute(series(20, 78000, 3)))
}

func TestTalibProviderDirection(t *testing.T) {
	p := NewTalibProvider(TalibSettings{})

	up := p.Compute(series(60, 78000, 4))
	require.NotNil(t, up)
	require.NotNil(t, up.ProbabilityAbove)
	assert.Greater(t, *up.ProbabilityAbove, 50.0)
	assert.LessOrEqual(t, *up.ProbabilityAbove, 80.0)
	assert.InDelta(t, 4, *up.Momentum1m, 1e-9)
	assert.InDelta(t, 20, *up.Momentum5m, 1e-9)
	assert.Nil(t, up.OrderBookImbalance)

	down := p.Compute(series(60, 78000, -4))
	require.NotNil(t, down)
	assert.Less(t, *down.ProbabilityAbove, 50.0)
	below, ok := down.ProbabilityBelow()
	assert.True(t, ok)
	assert.Greater(t, below, 50.0)
}

func TestBundleWithImbalance(t *testing.T) {
	var b *Bundle
	withOnly := b.WithImbalance(0.25)
	require.NotNil(t, withOnly.OrderBookImbalance)
	assert.Nil(t, withOnly.ProbabilityAbove)

	orig := &Bundle{ProbabilityAbove: Float(61)}
	cp := orig.WithImbalance(-0.5)
	assert.Nil(t, orig.OrderBookImbalance, "receiver is not mutated")
	assert.Equal(t, 61.0, *cp.ProbabilityAbove)
	assert.Equal(t, -0.5, *cp.OrderBookImbalance)

	_, ok := b.ProbabilityBelow()
	assert.False(t, ok)
}
