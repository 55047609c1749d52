package app

import (
	"fmt"
	"strings"

	"strikebot/internal/config"
)

// StartupSummary is printed once when the daemon starts.
type StartupSummary struct {
	Reference string
	Venue     string
	Schedule  string
	Mode      string
	Risk      []string
	Execution []string
	Store     string
}

func buildSummary(cfg *config.Config, hasCreds, storeOn bool) *StartupSummary {
	mode := "observe-only"
	switch {
	case cfg.Execution.Enabled && hasCreds:
		mode = "LIVE"
	case cfg.Execution.Enabled:
		mode = "observe-only (no credentials)"
	}
	store := "disabled (in-memory fire marker)"
	if storeOn {
		store = cfg.Store.Path
	}
	edge := "off"
	if cfg.Risk.EdgeFilter.Enabled {
		edge = fmt.Sprintf("min %.1f", cfg.Risk.EdgeFilter.MinEdge)
	}
	return &StartupSummary{
		Reference: fmt.Sprintf("%s via %s (%s x%d candles)", cfg.Reference.Symbol, cfg.Reference.RESTBaseURL,
			cfg.Reference.CandleInterval, cfg.Reference.CandleLimit),
		Venue:    fmt.Sprintf("%s via %s", cfg.Venue.Series, cfg.Venue.BaseURL),
		Schedule: fmt.Sprintf("minute %02d of every hour, poll %ds", cfg.Schedule.TriggerMinute, cfg.Schedule.PollIntervalSeconds),
		Mode:     mode,
		Risk: []string{
			fmt.Sprintf("min distance $%.2f", cfg.Risk.MinDistanceUSD),
			fmt.Sprintf("max volatility %.2f%% over %dm", cfg.Risk.MaxVolatilityPct, cfg.Risk.VolatilityWindowMinutes),
			fmt.Sprintf("min confidence %.1f", cfg.Risk.MinConfidence),
			fmt.Sprintf("max entry %dc", cfg.Risk.MaxEntryPriceCents),
			"edge filter " + edge,
		},
		Execution: []string{
			fmt.Sprintf("%s orders, buffer %dc", cfg.Execution.OrderType, cfg.Execution.PriceBufferCents),
			fmt.Sprintf("retries %d, backoff %ds, submit timeout %ds",
				cfg.Execution.MaxRetries, cfg.Execution.BackoffSeconds, cfg.Execution.SubmitTimeoutSeconds),
			fmt.Sprintf("size %.0f%% of balance, %d..%d contracts",
				cfg.Sizing.MaxBalanceFraction*100, cfg.Sizing.MinContracts, cfg.Sizing.MaxContracts),
		},
		Store: store,
	}
}

func (s *StartupSummary) String() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("STARTUP SUMMARY\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "  reference: %s\n", s.Reference)
	fmt.Fprintf(&b, "  venue:     %s\n", s.Venue)
	fmt.Fprintf(&b, "  schedule:  %s\n", s.Schedule)
	fmt.Fprintf(&b, "  mode:      %s\n", s.Mode)
	fmt.Fprintf(&b, "  store:     %s\n", s.Store)
	b.WriteString("[risk]\n")
	for _, line := range s.Risk {
		b.WriteString("  - " + line + "\n")
	}
	b.WriteString("[execution]\n")
	for _, line := range s.Execution {
		b.WriteString("  - " + line + "\n")
	}
	b.WriteString(strings.Repeat("=", 60))
	return b.String()
}

func (s *StartupSummary) Print() {
	fmt.Println(s.String())
}
