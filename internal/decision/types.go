// Package decision fuses price position and technical signals into a side and
// a confidence, and defines the structured veto reported by the risk gate.
package decision

import (
	"fmt"

	"strikebot/internal/market"
)

// Decision is the output of fusion plus gate. A SideNone decision never
// trades; a vetoed one keeps its side and confidence for reporting.
type Decision struct {
	Side       market.Side `json:"side"`
	Confidence float64     `json:"confidence"`
	Veto       *Veto       `json:"veto,omitempty"`
}

// Vetoed reports whether the gate rejected the decision.
func (d Decision) Vetoed() bool { return d.Veto != nil }

// Reason returns the veto message, empty when admitted.
func (d Decision) Reason() string {
	if d.Veto == nil {
		return ""
	}
	return d.Veto.Message
}

// WithVeto returns a copy of d carrying v.
func (d Decision) WithVeto(v *Veto) Decision {
	d.Veto = v
	return d
}

// VetoKind lets callers branch on why a cycle was skipped.
type VetoKind string

const (
	VetoMissingData   VetoKind = "missing_data"
	VetoTooClose      VetoKind = "too_close"
	VetoVolatility    VetoKind = "volatility"
	VetoLowConfidence VetoKind = "low_confidence"
	VetoPrice         VetoKind = "price"
	VetoNegativeEdge  VetoKind = "negative_edge"
)

// Veto is a structured gate rejection: kind plus the offending value and the
// threshold it was compared against.
type Veto struct {
	Kind      VetoKind `json:"kind"`
	Message   string   `json:"message"`
	Value     float64  `json:"value"`
	Threshold float64  `json:"threshold"`
}

func (v Veto) String() string {
	return fmt.Sprintf("%s: %s (value=%.4g threshold=%.4g)", v.Kind, v.Message, v.Value, v.Threshold)
}
