package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikebot/internal/pkg/circuit"
)

type stubSource struct {
	price float64
	err   error
	calls int
}

func (s *stubSource) Quote(ctx context.Context, symbol string) (Quote, error) {
	s.calls++
	if s.err != nil {
		return Quote{}, s.err
	}
	return Quote{Symbol: symbol, Price: s.price}, nil
}

func (s *stubSource) Candles(ctx context.Context, symbol, interval string, limit int) ([]Candle, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []Candle{{Close: s.price}}, nil
}

func TestFailoverPrefersPrimary(t *testing.T) {
	primary := &stubSource{price: 100}
	secondary := &stubSource{price: 200}
	f := NewFailoverSource(primary, secondary, 2, time.Minute)

	q, err := f.Quote(t.Context(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 100.0, q.Price)
	assert.Zero(t, secondary.calls)
}

func TestFailoverFallsBackAndOpens(t *testing.T) {
	primary := &stubSource{err: errors.New("down")}
	secondary := &stubSource{price: 200}
	f := NewFailoverSource(primary, secondary, 2, time.Minute)

	for i := 0; i < 3; i++ {
		q, err := f.Quote(t.Context(), "BTCUSDT")
		require.NoError(t, err)
		assert.Equal(t, 200.0, q.Price)
	}
	assert.Equal(t, 2, primary.calls)
	assert.Equal(t, circuit.StateOpen, f.PrimaryState())

	c, err := f.Candles(t.Context(), "BTCUSDT", "1m", 1)
	require.NoError(t, err)
	assert.Equal(t, 200.0, c[0].Close)
}

func TestFailoverBothFail(t *testing.T) {
	f := NewFailoverSource(&stubSource{err: errors.New("a")}, &stubSource{err: errors.New("b")}, 3, time.Minute)
	_, err := f.Quote(t.Context(), "BTCUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary: a")
	assert.Contains(t, err.Error(), "fallback: b")
}
