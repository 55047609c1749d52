package decision

import (
	"fmt"
	"math"
	"sort"
)

// Band assigns the price-position weight for settlements at most MaxMinutes
// away. A band with MaxMinutes <= 0 is open-ended and catches everything
// beyond the bounded bands.
type Band struct {
	MaxMinutes  float64 `json:"max_minutes"`
	PriceWeight float64 `json:"price_weight"`
}

// PriceThreshold maps a price-to-strike gap of at least MinDistancePct percent
// onto a confidence for the side the price is on.
type PriceThreshold struct {
	MinDistancePct float64 `json:"min_distance_pct"`
	Confidence     float64 `json:"confidence"`
}

// FusionParams holds the tunable tables and nudge magnitudes of Fuse.
type FusionParams struct {
	Bands           []Band           `json:"bands"`
	PriceThresholds []PriceThreshold `json:"price_thresholds"`

	NeutralConfidence float64 `json:"neutral_confidence"`

	// MomentumScalePct is the reference move (percent of price) worth one
	// confidence point.
	MomentumScalePct float64 `json:"momentum_scale_pct"`
	MomentumMaxNudge float64 `json:"momentum_max_nudge"`

	ImbalanceMaxNudge float64 `json:"imbalance_max_nudge"`

	VolatilityPenaltyPerPct float64 `json:"volatility_penalty_per_pct"`
	VolatilityPenaltyMax    float64 `json:"volatility_penalty_max"`

	MinConfidence float64 `json:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence"`
}

// DefaultBands weights raw price position more heavily as settlement nears.
func DefaultBands() []Band {
	return []Band{
		{MaxMinutes: 5, PriceWeight: 0.95},
		{MaxMinutes: 15, PriceWeight: 0.90},
		{MaxMinutes: 30, PriceWeight: 0.80},
		{MaxMinutes: 0, PriceWeight: 0.70},
	}
}

// DefaultPriceThresholds saturates near 97 for gaps of half a percent or more.
func DefaultPriceThresholds() []PriceThreshold {
	return []PriceThreshold{
		{MinDistancePct: 0.50, Confidence: 97},
		{MinDistancePct: 0.30, Confidence: 94},
		{MinDistancePct: 0.20, Confidence: 91},
		{MinDistancePct: 0.10, Confidence: 87},
		{MinDistancePct: 0.05, Confidence: 83},
		{MinDistancePct: 0.02, Confidence: 80},
		{MinDistancePct: 0.01, Confidence: 70},
		{MinDistancePct: 0.005, Confidence: 60},
	}
}

func DefaultFusionParams() FusionParams {
	return FusionParams{
		Bands:                   DefaultBands(),
		PriceThresholds:         DefaultPriceThresholds(),
		NeutralConfidence:       50,
		MomentumScalePct:        0.05,
		MomentumMaxNudge:        3,
		ImbalanceMaxNudge:       2,
		VolatilityPenaltyPerPct: 10,
		VolatilityPenaltyMax:    10,
		MinConfidence:           1,
		MaxConfidence:           99,
	}
}

// Validate rejects tables Fuse cannot evaluate deterministically.
func (p FusionParams) Validate() error {
	if len(p.Bands) == 0 {
		return fmt.Errorf("fusion: at least one band required")
	}
	bounded := make(map[float64]bool, len(p.Bands))
	openEnded := 0
	for i, b := range p.Bands {
		if b.PriceWeight < 0 || b.PriceWeight > 1 || math.IsNaN(b.PriceWeight) {
			return fmt.Errorf("fusion: bands[%d].price_weight must be within [0,1]", i)
		}
		if b.MaxMinutes <= 0 {
			openEnded++
			continue
		}
		if bounded[b.MaxMinutes] {
			return fmt.Errorf("fusion: duplicate band max_minutes %.2f", b.MaxMinutes)
		}
		bounded[b.MaxMinutes] = true
	}
	if openEnded > 1 {
		return fmt.Errorf("fusion: only one open-ended band allowed")
	}
	for i, t := range p.PriceThresholds {
		if t.MinDistancePct < 0 {
			return fmt.Errorf("fusion: price_thresholds[%d].min_distance_pct must be >= 0", i)
		}
		if t.Confidence < 0 || t.Confidence > 100 {
			return fmt.Errorf("fusion: price_thresholds[%d].confidence must be within [0,100]", i)
		}
	}
	if p.MinConfidence <= 0 || p.MaxConfidence >= 100 || p.MinConfidence >= p.MaxConfidence {
		return fmt.Errorf("fusion: confidence bounds must satisfy 0 < min < max < 100")
	}
	if p.NeutralConfidence < p.MinConfidence || p.NeutralConfidence > p.MaxConfidence {
		return fmt.Errorf("fusion: neutral_confidence must lie within the confidence bounds")
	}
	if p.MomentumScalePct < 0 || p.MomentumMaxNudge < 0 || p.ImbalanceMaxNudge < 0 ||
		p.VolatilityPenaltyPerPct < 0 || p.VolatilityPenaltyMax < 0 {
		return fmt.Errorf("fusion: nudge and penalty magnitudes must be >= 0")
	}
	return nil
}

// priceWeight picks the first bounded band whose limit covers minutes,
// falling back to the open-ended band (or the widest bounded one).
func (p FusionParams) priceWeight(minutes float64) float64 {
	bands := make([]Band, 0, len(p.Bands))
	var open *Band
	for i := range p.Bands {
		if p.Bands[i].MaxMinutes <= 0 {
			open = &p.Bands[i]
			continue
		}
		bands = append(bands, p.Bands[i])
	}
	sort.Slice(bands, func(i, j int) bool { return bands[i].MaxMinutes < bands[j].MaxMinutes })
	for _, b := range bands {
		if minutes <= b.MaxMinutes {
			return b.PriceWeight
		}
	}
	if open != nil {
		return open.PriceWeight
	}
	if len(bands) > 0 {
		return bands[len(bands)-1].PriceWeight
	}
	return 1
}

// priceScore maps a percentage gap onto the confidence of the price side.
func (p FusionParams) priceScore(distancePct float64) float64 {
	thresholds := append([]PriceThreshold(nil), p.PriceThresholds...)
	sort.Slice(thresholds, func(i, j int) bool {
		return thresholds[i].MinDistancePct > thresholds[j].MinDistancePct
	})
	for _, t := range thresholds {
		if distancePct >= t.MinDistancePct && distancePct > 0 {
			return t.Confidence
		}
	}
	return p.NeutralConfidence
}
