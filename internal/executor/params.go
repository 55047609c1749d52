package executor

import (
	"fmt"
	"time"

	"strikebot/internal/gateway/exchange"
)

// Params control order construction and the retry ceiling.
type Params struct {
	// MaxRetries is the number of additional submissions after the first;
	// at most MaxRetries+1 requests are sent.
	MaxRetries       int
	Backoff          time.Duration
	SubmitTimeout    time.Duration
	OrderType        exchange.OrderType
	PriceBufferCents int
	MaxPriceCents    int
}

func DefaultParams() Params {
	return Params{
		MaxRetries:       2,
		Backoff:          2 * time.Second,
		SubmitTimeout:    10 * time.Second,
		OrderType:        exchange.OrderLimit,
		PriceBufferCents: 2,
		MaxPriceCents:    99,
	}
}

func (p Params) Validate() error {
	switch {
	case p.MaxRetries < 0 || p.MaxRetries > 10:
		return fmt.Errorf("execution: max_retries must be within [0,10]")
	case p.Backoff < 0:
		return fmt.Errorf("execution: backoff must be >= 0")
	case p.SubmitTimeout <= 0:
		return fmt.Errorf("execution: submit_timeout must be > 0")
	case p.OrderType != exchange.OrderLimit && p.OrderType != exchange.OrderMarket:
		return fmt.Errorf("execution: unknown order_type %q", p.OrderType)
	case p.PriceBufferCents < 0 || p.PriceBufferCents > 10:
		return fmt.Errorf("execution: price_buffer_cents must be within [0,10]")
	case p.MaxPriceCents < 1 || p.MaxPriceCents > 99:
		return fmt.Errorf("execution: max_price_cents must be within [1,99]")
	}
	return nil
}

// OrderPrice is the price sent with the order: the ask plus the protective
// buffer, capped at MaxPriceCents.
func (p Params) OrderPrice(askCents int) int {
	if askCents <= 0 {
		return 0
	}
	price := askCents + p.PriceBufferCents
	if p.MaxPriceCents > 0 && price > p.MaxPriceCents {
		price = p.MaxPriceCents
	}
	return price
}
