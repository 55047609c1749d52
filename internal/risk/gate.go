// Package risk applies the ordered veto filters between fusion and execution.
package risk

import (
	"fmt"
	"math"

	"strikebot/internal/decision"
	"strikebot/internal/market"
)

// Params are the gate thresholds.
type Params struct {
	MinDistanceUSD     float64 `json:"min_distance_usd"`
	MaxVolatilityPct   float64 `json:"max_volatility_pct"`
	MinConfidence      float64 `json:"min_confidence"`
	MaxEntryPriceCents int     `json:"max_entry_price_cents"`
	EdgeFilter         Edge    `json:"edge_filter"`
}

// Edge is the optional confidence-minus-price filter. Off unless enabled.
type Edge struct {
	Enabled bool    `json:"enabled"`
	MinEdge float64 `json:"min_edge"`
}

func DefaultParams() Params {
	return Params{
		MinDistanceUSD:     20,
		MaxVolatilityPct:   0.5,
		MinConfidence:      65,
		MaxEntryPriceCents: 95,
	}
}

func (p Params) Validate() error {
	switch {
	case p.MinDistanceUSD < 0:
		return fmt.Errorf("risk: min_distance_usd must be >= 0")
	case p.MaxVolatilityPct <= 0:
		return fmt.Errorf("risk: max_volatility_pct must be > 0")
	case p.MinConfidence < 0 || p.MinConfidence > 100:
		return fmt.Errorf("risk: min_confidence must be within [0,100]")
	case p.MaxEntryPriceCents < 2 || p.MaxEntryPriceCents > 100:
		return fmt.Errorf("risk: max_entry_price_cents must be within [2,100]")
	}
	return nil
}

// Input is one cycle's admission request.
type Input struct {
	ReferencePrice      float64           `json:"reference_price"`
	Strike              float64           `json:"strike"`
	Decision            decision.Decision `json:"decision"`
	ExecutionPriceCents int               `json:"execution_price_cents"`
	// VolatilityPct is nil when it could not be computed; unknown volatility
	// does not veto.
	VolatilityPct *float64 `json:"volatility_pct,omitempty"`
}

// Admission is the gate's verdict. Decision carries the veto when rejected.
type Admission struct {
	Proceed  bool              `json:"proceed"`
	Decision decision.Decision `json:"decision"`
}

// Gate holds the thresholds; the zero value is unusable, use NewGate.
type Gate struct {
	params Params
}

func NewGate(p Params) *Gate {
	return &Gate{params: p}
}

// Params returns the thresholds in use.
func (g *Gate) Params() Params { return g.params }

// Admit runs the filters in fixed order and stops at the first match:
// missing data, too close, volatility, confidence, price, edge.
func (g *Gate) Admit(in Input) Admission {
	if v := g.firstVeto(in); v != nil {
		return Admission{Decision: in.Decision.WithVeto(v)}
	}
	return Admission{Proceed: true, Decision: in.Decision.WithVeto(nil)}
}

func (g *Gate) firstVeto(in Input) *decision.Veto {
	p := g.params
	if in.ReferencePrice <= 0 || math.IsNaN(in.ReferencePrice) || in.Strike <= 0 || in.Decision.Side == market.SideNone {
		return &decision.Veto{Kind: decision.VetoMissingData, Message: "missing data"}
	}
	if dist := math.Abs(in.ReferencePrice - in.Strike); dist < p.MinDistanceUSD {
		return &decision.Veto{
			Kind:      decision.VetoTooClose,
			Message:   "too close to call",
			Value:     dist,
			Threshold: p.MinDistanceUSD,
		}
	}
	if in.VolatilityPct != nil && *in.VolatilityPct > p.MaxVolatilityPct {
		return &decision.Veto{
			Kind:      decision.VetoVolatility,
			Message:   "volatility too high",
			Value:     *in.VolatilityPct,
			Threshold: p.MaxVolatilityPct,
		}
	}
	if in.Decision.Confidence < p.MinConfidence {
		return &decision.Veto{
			Kind:      decision.VetoLowConfidence,
			Message:   "confidence too low",
			Value:     in.Decision.Confidence,
			Threshold: p.MinConfidence,
		}
	}
	if in.ExecutionPriceCents <= 0 || in.ExecutionPriceCents >= p.MaxEntryPriceCents {
		return &decision.Veto{
			Kind:      decision.VetoPrice,
			Message:   "price unavailable or unattractive",
			Value:     float64(in.ExecutionPriceCents),
			Threshold: float64(p.MaxEntryPriceCents),
		}
	}
	if p.EdgeFilter.Enabled {
		if edge := in.Decision.Confidence - float64(in.ExecutionPriceCents); edge < p.EdgeFilter.MinEdge {
			return &decision.Veto{
				Kind:      decision.VetoNegativeEdge,
				Message:   "no edge over market price",
				Value:     edge,
				Threshold: p.EdgeFilter.MinEdge,
			}
		}
	}
	return nil
}
