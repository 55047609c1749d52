package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikebot/internal/decision"
	"strikebot/internal/market"
)

func vol(v float64) *float64 { return &v }

func admitted() Input {
	return Input{
		ReferencePrice:      78771.37,
		Strike:              78749.99,
		Decision:            decision.Decision{Side: market.SideAbove, Confidence: 71},
		ExecutionPriceCents: 74,
		VolatilityPct:       vol(0.1),
	}
}

func TestAdmitProceeds(t *testing.T) {
	a := NewGate(DefaultParams()).Admit(admitted())
	assert.True(t, a.Proceed)
	assert.False(t, a.Decision.Vetoed())
	assert.Equal(t, 71.0, a.Decision.Confidence)
}

func TestAdmitTooClose(t *testing.T) {
	in := admitted()
	in.ReferencePrice = in.Strike + 4.5
	a := NewGate(DefaultParams()).Admit(in)
	require.False(t, a.Proceed)
	require.NotNil(t, a.Decision.Veto)
	assert.Equal(t, decision.VetoTooClose, a.Decision.Veto.Kind)
	assert.Equal(t, "too close to call", a.Decision.Reason())
	assert.InDelta(t, 4.5, a.Decision.Veto.Value, 1e-6)
	assert.Equal(t, 20.0, a.Decision.Veto.Threshold)
	assert.Equal(t, market.SideAbove, a.Decision.Side, "vetoed decision keeps its side for reporting")
}

func TestAdmitVetoOrder(t *testing.T) {
	g := NewGate(DefaultParams())
	cases := []struct {
		name string
		mut  func(*Input)
		want decision.VetoKind
	}{
		{"all bad", func(in *Input) {
			in.ReferencePrice = 0
			in.VolatilityPct = vol(5)
			in.Decision.Confidence = 10
			in.ExecutionPriceCents = 0
		}, decision.VetoMissingData},
		{"no side", func(in *Input) { in.Decision.Side = market.SideNone }, decision.VetoMissingData},
		{"close and volatile and weak", func(in *Input) {
			in.ReferencePrice = in.Strike + 1
			in.VolatilityPct = vol(5)
			in.Decision.Confidence = 10
			in.ExecutionPriceCents = 99
		}, decision.VetoTooClose},
		{"volatile and weak and pricey", func(in *Input) {
			in.VolatilityPct = vol(0.8)
			in.Decision.Confidence = 10
			in.ExecutionPriceCents = 99
		}, decision.VetoVolatility},
		{"weak and pricey", func(in *Input) {
			in.Decision.Confidence = 64.99
			in.ExecutionPriceCents = 99
		}, decision.VetoLowConfidence},
		{"price at ceiling", func(in *Input) { in.ExecutionPriceCents = 95 }, decision.VetoPrice},
		{"price missing", func(in *Input) { in.ExecutionPriceCents = 0 }, decision.VetoPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := admitted()
			tc.mut(&in)
			for i := 0; i < 3; i++ {
				a := g.Admit(in)
				require.False(t, a.Proceed)
				assert.Equal(t, tc.want, a.Decision.Veto.Kind)
			}
		})
	}
}

func TestAdmitUnknownVolatilityDoesNotVeto(t *testing.T) {
	in := admitted()
	in.VolatilityPct = nil
	assert.True(t, NewGate(DefaultParams()).Admit(in).Proceed)
}

func TestEdgeFilterOptional(t *testing.T) {
	in := admitted()
	in.ExecutionPriceCents = 80

	assert.True(t, NewGate(DefaultParams()).Admit(in).Proceed, "negative edge trades when the filter is off")

	p := DefaultParams()
	p.EdgeFilter = Edge{Enabled: true}
	a := NewGate(p).Admit(in)
	require.False(t, a.Proceed)
	assert.Equal(t, decision.VetoNegativeEdge, a.Decision.Veto.Kind)
	assert.InDelta(t, -9, a.Decision.Veto.Value, 1e-9)
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
	p := DefaultParams()
	p.MaxEntryPriceCents = 101
	assert.Error(t, p.Validate())
}
