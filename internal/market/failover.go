package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"strikebot/internal/logger"
	"strikebot/internal/pkg/circuit"
)

// FailoverSource reads from Primary and falls back to Secondary when the
// primary fails. After repeated primary failures the breaker skips the
// primary until its cool-down elapses.
type FailoverSource struct {
	Primary   ReferenceSource
	Secondary ReferenceSource
	breaker   *circuit.CircuitBreaker
}

func NewFailoverSource(primary, secondary ReferenceSource, threshold int, cooldown time.Duration) *FailoverSource {
	return &FailoverSource{
		Primary:   primary,
		Secondary: secondary,
		breaker:   circuit.NewCircuitBreaker("reference", threshold, cooldown),
	}
}

func (f *FailoverSource) Quote(ctx context.Context, symbol string) (Quote, error) {
	var q Quote
	err := f.breaker.Do(func() error {
		var err error
		q, err = f.Primary.Quote(ctx, symbol)
		return err
	})
	if err == nil {
		return q, nil
	}
	logger.Warnf("reference: primary quote failed, using fallback: %v", err)
	q, ferr := f.Secondary.Quote(ctx, symbol)
	if ferr != nil {
		return Quote{}, errors.Join(fmt.Errorf("primary: %w", err), fmt.Errorf("fallback: %w", ferr))
	}
	return q, nil
}

func (f *FailoverSource) Candles(ctx context.Context, symbol, interval string, limit int) ([]Candle, error) {
	var out []Candle
	err := f.breaker.Do(func() error {
		var err error
		out, err = f.Primary.Candles(ctx, symbol, interval, limit)
		return err
	})
	if err == nil {
		return out, nil
	}
	logger.Warnf("reference: primary candles failed, using fallback: %v", err)
	out, ferr := f.Secondary.Candles(ctx, symbol, interval, limit)
	if ferr != nil {
		return nil, errors.Join(fmt.Errorf("primary: %w", err), fmt.Errorf("fallback: %w", ferr))
	}
	return out, nil
}

// PrimaryState reports the primary breaker state.
func (f *FailoverSource) PrimaryState() circuit.State {
	return f.breaker.State()
}
