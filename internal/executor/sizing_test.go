package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"strikebot/internal/gateway/exchange"
)

func TestSizeContracts(t *testing.T) {
	p := DefaultSizingParams()
	assert.Equal(t, 6, SizeContracts(10_000, 80, p), "5% of $100 at 80c")
	assert.Equal(t, 10, SizeContracts(1_000_000, 50, p), "clamped to max")
	assert.Equal(t, 1, SizeContracts(500, 90, p), "clamped to min")
	assert.Equal(t, 1, SizeContracts(0, 90, p))
	assert.Equal(t, 1, SizeContracts(10_000, 0, p))
}

func TestSizeFallsBackToMinimum(t *testing.T) {
	p := SizingParams{MaxBalanceFraction: 0.05, MinContracts: 2, MaxContracts: 10}

	v := new(MockVenue)
	v.On("HasCredentials").Return(true)
	v.On("Balance", mock.Anything).Return(exchange.Balance{}, errors.New("timeout")).Once()
	e := New(v, DefaultParams())
	count, bal := e.Size(context.Background(), 70, p)
	assert.Equal(t, 2, count)
	assert.Nil(t, bal)

	v.On("Balance", mock.Anything).Return(exchange.Balance{AvailableCents: 20_000}, nil).Once()
	count, bal = e.Size(context.Background(), 70, p)
	assert.Equal(t, 10, count, "14 contracts clamped to max")
	require.NotNil(t, bal)
	assert.Equal(t, int64(20_000), *bal)

	noCreds := new(MockVenue)
	noCreds.On("HasCredentials").Return(false)
	count, _ = New(noCreds, DefaultParams()).Size(context.Background(), 70, p)
	assert.Equal(t, 2, count)
	noCreds.AssertNotCalled(t, "Balance", mock.Anything)
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
	require.NoError(t, DefaultSizingParams().Validate())
	p := DefaultParams()
	p.OrderType = "stop"
	assert.Error(t, p.Validate())
	assert.Equal(t, 99, DefaultParams().OrderPrice(98))
	assert.Equal(t, 0, DefaultParams().OrderPrice(0))
}
