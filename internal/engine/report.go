package engine

import (
	"fmt"
	"strings"
	"time"

	"strikebot/internal/decision"
	"strikebot/internal/executor"
	"strikebot/internal/gateway/notifier"
	"strikebot/internal/market"
	"strikebot/internal/signal"
)

// Outcome is the terminal classification of one cycle.
type Outcome string

const (
	OutcomeNoPrice       Outcome = "no_price"
	OutcomeNoMarket      Outcome = "no_market"
	OutcomeVetoed        Outcome = "vetoed"
	OutcomeObserveOnly   Outcome = "observe_only"
	OutcomeFilled        Outcome = "filled"
	OutcomeRejected      Outcome = "rejected"
	OutcomeExhausted     Outcome = "exhausted"
	OutcomeSigningFailed Outcome = "signing_failed"
	OutcomeFailed        Outcome = "failed"
)

// Report is everything one cycle saw and decided. Optional parts stay nil
// when the cycle ended before reaching them.
type Report struct {
	TraceID    string    `json:"trace_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    Outcome   `json:"outcome"`

	Reference     *market.Quote      `json:"reference,omitempty"`
	Candidates    int                `json:"candidates"`
	Selection     *market.Selection  `json:"selection,omitempty"`
	Signals       *signal.Bundle     `json:"signals,omitempty"`
	VolatilityPct *float64           `json:"volatility_pct,omitempty"`
	Fusion        *decision.Fusion   `json:"fusion,omitempty"`
	Decision      *decision.Decision `json:"decision,omitempty"`

	AskCents     int              `json:"ask_cents,omitempty"`
	PriceCents   int              `json:"price_cents,omitempty"`
	Contracts    int              `json:"contracts,omitempty"`
	BalanceCents *int64           `json:"balance_cents,omitempty"`
	Execution    *executor.Result `json:"execution,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

func (r *Report) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Duration is the wall time of the cycle.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Line renders the report as a single human-readable line.
func (r Report) Line() string {
	parts := []string{"cycle " + string(r.Outcome)}
	if r.Reference != nil {
		parts = append(parts, fmt.Sprintf("ref=%.2f", r.Reference.Price))
	}
	if r.Selection != nil {
		parts = append(parts, fmt.Sprintf("market=%s strike=%.2f mins=%.1f",
			r.Selection.Instance.Ticker, r.Selection.Instance.Strike, r.Selection.MinutesToSettlement))
	}
	if r.Decision != nil {
		parts = append(parts, fmt.Sprintf("side=%s conf=%.1f", sideLabel(r.Decision.Side), r.Decision.Confidence))
		if r.Decision.Veto != nil {
			parts = append(parts, "veto="+r.Decision.Veto.String())
		}
	}
	if r.Execution != nil {
		if last, ok := r.Execution.LastAttempt(); ok {
			parts = append(parts, fmt.Sprintf("attempts=%d price=%dc count=%d", last.Number, last.PriceCents, last.Count))
		}
		if r.Execution.OrderID != "" {
			parts = append(parts, "order="+r.Execution.OrderID)
		}
	}
	if len(r.Errors) > 0 {
		parts = append(parts, "errors="+strings.Join(r.Errors, "; "))
	}
	return strings.Join(parts, " ")
}

// Message renders the report as a sectioned notification.
func (r Report) Message() notifier.Message {
	msg := notifier.Message{
		Title:     "strikebot " + string(r.Outcome),
		Footer:    "trace " + r.TraceID,
		Timestamp: r.FinishedAt,
	}
	var mkt []string
	if r.Reference != nil {
		mkt = append(mkt, fmt.Sprintf("reference %s %.2f", r.Reference.Symbol, r.Reference.Price))
	}
	if r.Selection != nil {
		mkt = append(mkt,
			fmt.Sprintf("market %s", r.Selection.Instance.Ticker),
			fmt.Sprintf("strike %.2f (%.3f%% away)", r.Selection.Instance.Strike, r.Selection.DistancePct),
			fmt.Sprintf("%.1f minutes to settlement", r.Selection.MinutesToSettlement))
	}
	msg.Sections = append(msg.Sections, notifier.Section{Title: "market", Lines: mkt})
	if r.Decision != nil {
		lines := []string{
			"side " + sideLabel(r.Decision.Side),
			fmt.Sprintf("confidence %.1f", r.Decision.Confidence),
		}
		if r.Decision.Veto != nil {
			lines = append(lines, "veto "+r.Decision.Veto.String())
		}
		msg.Sections = append(msg.Sections, notifier.Section{Title: "decision", Lines: lines})
	}
	if r.Execution != nil {
		var lines []string
		for _, a := range r.Execution.Attempts {
			line := fmt.Sprintf("#%d %s %dx@%dc %s", a.Number, sideLabel(a.Side), a.Count, a.PriceCents, a.Outcome)
			if a.Err != "" {
				line += " (" + a.Err + ")"
			}
			lines = append(lines, line)
		}
		if r.Execution.OrderID != "" {
			lines = append(lines, "order "+r.Execution.OrderID)
		}
		msg.Sections = append(msg.Sections, notifier.Section{Title: "execution", Lines: lines})
	}
	if len(r.Errors) > 0 {
		msg.Sections = append(msg.Sections, notifier.Section{Title: "errors", Lines: r.Errors})
	}
	return msg
}

func sideLabel(s market.Side) string {
	if s == market.SideNone {
		return "none"
	}
	return string(s)
}

func outcomeFromExecution(res executor.Result) Outcome {
	switch res.Outcome {
	case executor.OutcomeFilled:
		return OutcomeFilled
	case executor.OutcomeRejected:
		return OutcomeRejected
	case executor.OutcomeExhausted:
		return OutcomeExhausted
	case executor.OutcomeSigningFailed:
		return OutcomeSigningFailed
	case executor.OutcomeNoCredentials:
		return OutcomeObserveOnly
	default:
		return OutcomeFailed
	}
}
