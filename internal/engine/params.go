package engine

import (
	"fmt"
	"strings"
	"time"

	"strikebot/internal/decision"
	"strikebot/internal/executor"
	"strikebot/internal/risk"
)

// Params are the cycle settings. Fusion, Risk and Sizing may be swapped at
// runtime through SetTunables.
type Params struct {
	Symbol           string
	Series           string
	CandleInterval   string
	CandleLimit      int
	VolatilityWindow int
	ReferenceTimeout time.Duration
	VenueTimeout     time.Duration
	// Live gates order submission; false keeps every cycle observe-only.
	Live bool
	// DetailedNotify sends the sectioned message instead of one line.
	DetailedNotify bool

	Fusion decision.FusionParams
	Risk   risk.Params
	Sizing executor.SizingParams
}

func DefaultParams() Params {
	return Params{
		Symbol:           "BTCUSDT",
		Series:           "KXBTCD",
		CandleInterval:   "1m",
		CandleLimit:      60,
		VolatilityWindow: 15,
		ReferenceTimeout: 10 * time.Second,
		VenueTimeout:     10 * time.Second,
		Fusion:           decision.DefaultFusionParams(),
		Risk:             risk.DefaultParams(),
		Sizing:           executor.DefaultSizingParams(),
	}
}

func (p Params) Validate() error {
	switch {
	case strings.TrimSpace(p.Symbol) == "":
		return fmt.Errorf("engine: symbol required")
	case strings.TrimSpace(p.Series) == "":
		return fmt.Errorf("engine: series required")
	case p.CandleLimit < 0:
		return fmt.Errorf("engine: candle_limit must be >= 0")
	case p.VolatilityWindow <= 0:
		return fmt.Errorf("engine: volatility_window must be > 0")
	case p.ReferenceTimeout <= 0 || p.VenueTimeout <= 0:
		return fmt.Errorf("engine: fetch timeouts must be > 0")
	}
	if err := p.Fusion.Validate(); err != nil {
		return err
	}
	if err := p.Risk.Validate(); err != nil {
		return err
	}
	return p.Sizing.Validate()
}
