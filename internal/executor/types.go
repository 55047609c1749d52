// Package executor is the order state machine: authenticate, sign, submit,
// retry transient failures a bounded number of times, classify the outcome.
package executor

import (
	"context"
	"time"

	"strikebot/internal/gateway/exchange"
	"strikebot/internal/market"
)

// Venue is what the executor needs from an order venue.
type Venue interface {
	HasCredentials() bool
	Balance(ctx context.Context) (exchange.Balance, error)
	Sign(order exchange.Order) (exchange.SignedOrder, error)
	Submit(ctx context.Context, signed exchange.SignedOrder) (exchange.OrderAck, error)
}

// State is a node of the execution state machine.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateSigning         State = "signing"
	StateSubmitted       State = "submitted"
	StateRetrying        State = "retrying"
	StateFilled          State = "filled"
	StateRejected        State = "rejected"
	StateExhausted       State = "exhausted"
)

// Outcome is the terminal classification of one Execute call.
type Outcome string

const (
	OutcomeFilled        Outcome = "filled"
	OutcomeRejected      Outcome = "rejected"
	OutcomeExhausted     Outcome = "exhausted"
	OutcomeNoCredentials Outcome = "no_credentials"
	OutcomeSigningFailed Outcome = "signing_failed"
)

// AttemptOutcome classifies a single submission.
type AttemptOutcome string

const (
	AttemptFilled       AttemptOutcome = "filled"
	AttemptRejected     AttemptOutcome = "rejected"
	AttemptNetworkError AttemptOutcome = "network_error"
	AttemptTimeout      AttemptOutcome = "timeout"
	AttemptHTTPError    AttemptOutcome = "http_error"
)

// Request is one order intent from the engine.
type Request struct {
	Ticker         string      `json:"ticker"`
	Side           market.Side `json:"side"`
	Count          int         `json:"count"`
	AskCents       int         `json:"ask_cents"`
	ReferencePrice float64     `json:"reference_price"`
}

// Attempt records one submission.
type Attempt struct {
	Number        int                `json:"number"`
	Ticker        string             `json:"ticker"`
	Side          market.Side        `json:"side"`
	Count         int                `json:"count"`
	Type          exchange.OrderType `json:"type"`
	PriceCents    int                `json:"price_cents"`
	ClientOrderID string             `json:"client_order_id"`
	Outcome       AttemptOutcome     `json:"outcome"`
	StatusCode    int                `json:"status_code,omitempty"`
	OrderID       string             `json:"order_id,omitempty"`
	Err           string             `json:"error,omitempty"`
	At            time.Time          `json:"at"`
	Elapsed       time.Duration      `json:"elapsed"`
}

// Result is the terminal state of Execute plus the attempts that led to it.
type Result struct {
	Outcome  Outcome   `json:"outcome"`
	State    State     `json:"state"`
	OrderID  string    `json:"order_id,omitempty"`
	Attempts []Attempt `json:"attempts"`
	Path     []State   `json:"path"`
	Err      string    `json:"error,omitempty"`
}

// LastAttempt returns the final attempt, if any.
func (r Result) LastAttempt() (Attempt, bool) {
	if len(r.Attempts) == 0 {
		return Attempt{}, false
	}
	return r.Attempts[len(r.Attempts)-1], true
}
