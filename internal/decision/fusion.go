package decision

import (
	"math"

	"strikebot/internal/market"
	"strikebot/internal/signal"
)

// FusionInput is everything Fuse looks at. Signals and VolatilityPct are
// optional.
type FusionInput struct {
	ReferencePrice      float64        `json:"reference_price"`
	Strike              float64        `json:"strike"`
	MinutesToSettlement float64        `json:"minutes_to_settlement"`
	Signals             *signal.Bundle `json:"signals,omitempty"`
	VolatilityPct       *float64       `json:"volatility_pct,omitempty"`
}

// Fusion is the fused side and confidence together with the components that
// produced them.
type Fusion struct {
	Side       market.Side `json:"side"`
	Confidence float64     `json:"confidence"`

	DistancePct  float64     `json:"distance_pct"`
	PriceSide    market.Side `json:"price_side"`
	PriceScore   float64     `json:"price_score"`
	SignalAbove  float64     `json:"signal_above"`
	PriceWeight  float64     `json:"price_weight"`
	SignalWeight float64     `json:"signal_weight"`
	// CombinedAbove is the weighted probability of finishing above the strike
	// before nudges.
	CombinedAbove float64 `json:"combined_above"`

	MomentumNudge     float64 `json:"momentum_nudge"`
	ImbalanceNudge    float64 `json:"imbalance_nudge"`
	VolatilityPenalty float64 `json:"volatility_penalty"`
}

// Decision returns the un-gated decision.
func (f Fusion) Decision() Decision {
	return Decision{Side: f.Side, Confidence: f.Confidence}
}

// Fuse combines price position and technical signals into one side and a
// confidence in [MinConfidence, MaxConfidence]. It is pure.
//
// Both inputs are expressed as a probability of finishing above the strike and
// blended with the time band's weights. The side follows the blended value;
// an exact tie falls back to the side the price is on. Momentum, order-book
// imbalance and volatility then move the confidence of that side but can never
// push it under neutral, so they never flip it.
func Fuse(in FusionInput, p FusionParams) Fusion {
	out := Fusion{Side: market.SideNone, Confidence: p.NeutralConfidence}
	if in.ReferencePrice <= 0 || in.Strike <= 0 || math.IsNaN(in.ReferencePrice) || math.IsNaN(in.Strike) {
		return out
	}

	out.DistancePct = math.Abs(in.ReferencePrice-in.Strike) / in.Strike * 100
	out.PriceSide = market.SideBelow
	if in.ReferencePrice > in.Strike {
		out.PriceSide = market.SideAbove
	}
	out.PriceScore = p.priceScore(out.DistancePct)
	priceAbove := out.PriceScore
	if out.PriceSide == market.SideBelow {
		priceAbove = 100 - out.PriceScore
	}

	out.SignalAbove = p.NeutralConfidence
	if in.Signals != nil && in.Signals.ProbabilityAbove != nil && !math.IsNaN(*in.Signals.ProbabilityAbove) {
		out.SignalAbove = clamp(*in.Signals.ProbabilityAbove, 0, 100)
	}

	out.PriceWeight = p.priceWeight(in.MinutesToSettlement)
	out.SignalWeight = 1 - out.PriceWeight
	out.CombinedAbove = out.PriceWeight*priceAbove + out.SignalWeight*out.SignalAbove

	switch {
	case out.CombinedAbove > 50:
		out.Side = market.SideAbove
	case out.CombinedAbove < 50:
		out.Side = market.SideBelow
	default:
		out.Side = out.PriceSide
	}
	conf := out.CombinedAbove
	if out.Side == market.SideBelow {
		conf = 100 - out.CombinedAbove
	}

	out.MomentumNudge = momentumNudge(in, p, out.Side)
	out.ImbalanceNudge = imbalanceNudge(in.Signals, p, out.Side)
	if in.VolatilityPct != nil && *in.VolatilityPct > 0 {
		out.VolatilityPenalty = math.Min(p.VolatilityPenaltyMax, *in.VolatilityPct*p.VolatilityPenaltyPerPct)
	}
	conf += out.MomentumNudge + out.ImbalanceNudge - out.VolatilityPenalty
	if conf < p.NeutralConfidence {
		conf = p.NeutralConfidence
	}
	out.Confidence = clamp(conf, p.MinConfidence, p.MaxConfidence)
	return out
}

// momentumNudge is positive when the recent move runs in the chosen side's
// direction, i.e. away from the strike on the winning side.
func momentumNudge(in FusionInput, p FusionParams, side market.Side) float64 {
	if in.Signals == nil || p.MomentumScalePct <= 0 || p.MomentumMaxNudge <= 0 {
		return 0
	}
	m1, m5 := in.Signals.Momentum1m, in.Signals.Momentum5m
	var move float64
	switch {
	case m1 != nil && m5 != nil:
		move = 0.6**m5 + 0.4**m1
	case m5 != nil:
		move = *m5
	case m1 != nil:
		move = *m1
	default:
		return 0
	}
	if math.IsNaN(move) {
		return 0
	}
	movePct := move / in.ReferencePrice * 100
	nudge := clamp(movePct/p.MomentumScalePct, -p.MomentumMaxNudge, p.MomentumMaxNudge)
	if side == market.SideBelow {
		nudge = -nudge
	}
	return nudge
}

func imbalanceNudge(b *signal.Bundle, p FusionParams, side market.Side) float64 {
	if b == nil || b.OrderBookImbalance == nil || math.IsNaN(*b.OrderBookImbalance) {
		return 0
	}
	nudge := clamp(*b.OrderBookImbalance, -1, 1) * p.ImbalanceMaxNudge
	if side == market.SideBelow {
		nudge = -nudge
	}
	return nudge
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
