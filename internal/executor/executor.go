package executor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"strikebot/internal/gateway/exchange"
	"strikebot/internal/logger"
)

// Executor runs the order state machine against one venue. Attempts are
// strictly sequential.
type Executor struct {
	venue  Venue
	params Params
	sleep  func(ctx context.Context, d time.Duration) error
	newID  func() string
	nowFn  func() time.Time
}

func New(venue Venue, params Params) *Executor {
	return &Executor{
		venue:  venue,
		params: params,
		sleep:  sleepCtx,
		newID:  uuid.NewString,
		nowFn:  time.Now,
	}
}

// Params returns the parameters in use.
func (e *Executor) Params() Params { return e.params }

// Execute drives Unauthenticated → Signing → Submitted → terminal. Every
// attempt is freshly signed with a new client order id, so a lost response
// followed by a retry can double fill at the venue.
func (e *Executor) Execute(ctx context.Context, req Request) Result {
	res := Result{Path: []State{StateUnauthenticated}}
	if e.venue == nil || !e.venue.HasCredentials() {
		res.Outcome = OutcomeNoCredentials
		res.State = StateUnauthenticated
		logger.Event("execution skipped", "ticker", req.Ticker, "reason", "no credentials")
		return res
	}

	price := e.params.OrderPrice(req.AskCents)
	var lastErr error
	ceiling := e.params.MaxRetries + 1
	for n := 1; n <= ceiling; n++ {
		order := exchange.Order{
			Ticker:        req.Ticker,
			Side:          req.Side,
			Count:         req.Count,
			Type:          e.params.OrderType,
			PriceCents:    price,
			ClientOrderID: e.newID(),
		}

		res.Path = append(res.Path, StateSigning)
		signed, err := e.venue.Sign(order)
		if err != nil {
			res.Err = err.Error()
			if errors.Is(err, exchange.ErrNoCredentials) {
				res.Outcome = OutcomeNoCredentials
				res.State = StateUnauthenticated
				return res
			}
			res.Outcome = OutcomeSigningFailed
			res.State = StateSigning
			logger.EventWarn("order signing failed", "ticker", req.Ticker, "attempt", n, "error", err)
			return res
		}

		res.Path = append(res.Path, StateSubmitted)
		att := e.submit(ctx, n, order, signed)
		res.Attempts = append(res.Attempts, att.Attempt)

		switch att.Outcome {
		case AttemptFilled:
			res.Outcome = OutcomeFilled
			res.State = StateFilled
			res.OrderID = att.OrderID
			res.Path = append(res.Path, StateFilled)
			logger.Event("order filled", "ticker", req.Ticker, "side", string(req.Side), "count", req.Count,
				"price_cents", price, "attempt", n, "order_id", att.OrderID)
			return res
		case AttemptRejected:
			res.Outcome = OutcomeRejected
			res.State = StateRejected
			res.OrderID = att.OrderID
			res.Err = att.Err
			res.Path = append(res.Path, StateRejected)
			logger.EventWarn("order rejected", "ticker", req.Ticker, "attempt", n, "status", att.Err)
			return res
		}

		lastErr = att.err
		logger.EventWarn("order attempt failed", "ticker", req.Ticker, "attempt", n, "of", ceiling,
			"outcome", string(att.Outcome), "error", att.Err)
		if n == ceiling {
			break
		}
		res.Path = append(res.Path, StateRetrying)
		if err := e.sleep(ctx, e.params.Backoff); err != nil {
			lastErr = err
			break
		}
	}

	res.Outcome = OutcomeExhausted
	res.State = StateExhausted
	res.Path = append(res.Path, StateExhausted)
	if lastErr != nil {
		res.Err = lastErr.Error()
	}
	logger.EventWarn("order attempts exhausted", "ticker", req.Ticker, "attempts", len(res.Attempts), "error", res.Err)
	return res
}

type attemptResult struct {
	Attempt
	err error
}

func (e *Executor) submit(ctx context.Context, n int, order exchange.Order, signed exchange.SignedOrder) attemptResult {
	start := e.nowFn()
	att := Attempt{
		Number:        n,
		Ticker:        order.Ticker,
		Side:          order.Side,
		Count:         order.Count,
		Type:          order.Type,
		PriceCents:    order.PriceCents,
		ClientOrderID: order.ClientOrderID,
		At:            start.UTC(),
	}
	subCtx, cancel := context.WithTimeout(ctx, e.params.SubmitTimeout)
	ack, err := e.venue.Submit(subCtx, signed)
	cancel()
	att.Elapsed = e.nowFn().Sub(start)

	if err == nil {
		att.StatusCode = ack.StatusCode
		att.OrderID = ack.OrderID
		if ack.Canceled() {
			att.Outcome = AttemptRejected
			att.Err = "venue status " + ack.Status
		} else {
			att.Outcome = AttemptFilled
		}
		return attemptResult{Attempt: att}
	}

	att.Err = err.Error()
	var se *exchange.StatusError
	if errors.As(err, &se) {
		att.StatusCode = se.StatusCode
	}
	switch exchange.Classify(err) {
	case exchange.KindTimeout:
		att.Outcome = AttemptTimeout
	case exchange.KindStatus:
		att.Outcome = AttemptHTTPError
	default:
		att.Outcome = AttemptNetworkError
	}
	return attemptResult{Attempt: att, err: err}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
