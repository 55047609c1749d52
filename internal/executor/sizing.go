package executor

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"strikebot/internal/logger"
)

// SizingParams bound the contract count.
type SizingParams struct {
	MaxBalanceFraction float64
	MinContracts       int
	MaxContracts       int
}

func DefaultSizingParams() SizingParams {
	return SizingParams{MaxBalanceFraction: 0.05, MinContracts: 1, MaxContracts: 10}
}

func (p SizingParams) Validate() error {
	switch {
	case p.MaxBalanceFraction <= 0 || p.MaxBalanceFraction > 1:
		return fmt.Errorf("sizing: max_balance_fraction must be within (0,1]")
	case p.MinContracts < 1:
		return fmt.Errorf("sizing: min_contracts must be >= 1")
	case p.MaxContracts < p.MinContracts:
		return fmt.Errorf("sizing: max_contracts must be >= min_contracts")
	}
	return nil
}

// SizeContracts is floor(balance × fraction / price) clamped to
// [MinContracts, MaxContracts].
func SizeContracts(balanceCents int64, priceCents int, p SizingParams) int {
	if balanceCents <= 0 || priceCents <= 0 {
		return p.MinContracts
	}
	budget := decimal.NewFromInt(balanceCents).Mul(decimal.NewFromFloat(p.MaxBalanceFraction))
	count := int(budget.Div(decimal.NewFromInt(int64(priceCents))).Floor().IntPart())
	if count < p.MinContracts {
		count = p.MinContracts
	}
	if p.MaxContracts > 0 && count > p.MaxContracts {
		count = p.MaxContracts
	}
	return count
}

// Size queries the venue balance and sizes the order; any balance failure
// falls back to MinContracts.
func (e *Executor) Size(ctx context.Context, priceCents int, p SizingParams) (int, *int64) {
	if e.venue == nil || !e.venue.HasCredentials() {
		return p.MinContracts, nil
	}
	bal, err := e.venue.Balance(ctx)
	if err != nil {
		logger.Warnf("executor: balance unavailable, sizing at minimum %d: %v", p.MinContracts, err)
		return p.MinContracts, nil
	}
	cents := bal.AvailableCents
	return SizeContracts(cents, priceCents, p), &cents
}
