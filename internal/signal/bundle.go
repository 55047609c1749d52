// Package signal carries the per-cycle technical summary consumed by fusion
// and the provider that computes it from candles.
package signal

import "strikebot/internal/market"

// Bundle is one optional technical summary per cycle. Every field may be nil;
// consumers treat a nil field as neutral.
type Bundle struct {
	// ProbabilityAbove is the 0..100 probability that the reference price
	// finishes above its current level.
	ProbabilityAbove *float64 `json:"probability_above,omitempty"`
	// Momentum1m and Momentum5m are signed price deltas over 1 and 5 bars.
	Momentum1m *float64 `json:"momentum_1m,omitempty"`
	Momentum5m *float64 `json:"momentum_5m,omitempty"`
	// OrderBookImbalance is in -1..1, positive when above-side bids dominate.
	OrderBookImbalance *float64 `json:"orderbook_imbalance,omitempty"`
}

// ProbabilityBelow is the complement of ProbabilityAbove.
func (b *Bundle) ProbabilityBelow() (float64, bool) {
	if b == nil || b.ProbabilityAbove == nil {
		return 0, false
	}
	return 100 - *b.ProbabilityAbove, true
}

// WithImbalance returns a copy carrying the given order-book imbalance.
// A nil receiver yields a bundle holding only the imbalance.
func (b *Bundle) WithImbalance(v float64) *Bundle {
	out := Bundle{}
	if b != nil {
		out = *b
	}
	out.OrderBookImbalance = &v
	return &out
}

// Provider turns a chronological candle sequence into a Bundle. It returns nil
// when the data is insufficient.
type Provider interface {
	Compute(candles []market.Candle) *Bundle
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
