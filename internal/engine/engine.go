// Package engine runs one trading cycle: fetch, select, fuse, gate, size,
// execute, report.
package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"strikebot/internal/decision"
	"strikebot/internal/executor"
	"strikebot/internal/gateway/notifier"
	"strikebot/internal/logger"
	"strikebot/internal/market"
	"strikebot/internal/metrics"
	"strikebot/internal/risk"
	"strikebot/internal/signal"
	"strikebot/internal/store"
)

// Deps are the collaborators of an Engine. Store, Metrics and Notifier are
// optional.
type Deps struct {
	Reference market.ReferenceSource
	Venue     market.VenueReader
	Executor  *executor.Executor
	Signals   signal.Provider
	Store     store.Store
	Metrics   *metrics.Recorder
	Notifier  notifier.TextNotifier
}

type Engine struct {
	deps Deps

	mu     sync.RWMutex
	params Params
	last   *Report

	nowFn   func() time.Time
	traceFn func() string
}

func New(deps Deps, params Params) (*Engine, error) {
	if deps.Reference == nil {
		return nil, fmt.Errorf("engine: reference source required")
	}
	if deps.Venue == nil {
		return nil, fmt.Errorf("engine: venue reader required")
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("engine: executor required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		deps:    deps,
		params:  params,
		nowFn:   time.Now,
		traceFn: uuid.NewString,
	}, nil
}

// Params returns a copy of the current settings.
func (e *Engine) Params() Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

// SetTunables replaces fusion, risk and sizing parameters. The next cycle
// picks them up; a running cycle keeps the snapshot it started with.
func (e *Engine) SetTunables(f decision.FusionParams, r risk.Params, s executor.SizingParams) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.params.Fusion = f
	e.params.Risk = r
	e.params.Sizing = s
	e.mu.Unlock()
	logger.Infof("engine: tunables reloaded min_confidence=%.1f min_distance_usd=%.2f", r.MinConfidence, r.MinDistanceUSD)
	return nil
}

// Last returns the most recent report, if any.
func (e *Engine) Last() (Report, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.last == nil {
		return Report{}, false
	}
	return *e.last, true
}

// RunCycle executes one full cycle. It never returns an error: every failure
// is classified into the report's outcome.
func (e *Engine) RunCycle(ctx context.Context) (rep Report) {
	p := e.Params()
	rep = Report{TraceID: e.traceFn(), StartedAt: e.nowFn().UTC()}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("engine: cycle %s panic: %v\n%s", rep.TraceID, r, debug.Stack())
			rep.Outcome = OutcomeFailed
			rep.addError("panic: %v", r)
		}
		rep.FinishedAt = e.nowFn().UTC()
		e.finish(ctx, p, rep)
	}()

	rep.Outcome = e.cycle(ctx, p, &rep)
	return rep
}

func (e *Engine) cycle(ctx context.Context, p Params, rep *Report) Outcome {
	var (
		quote     market.Quote
		candles   []market.Candle
		instances []market.Instance
		errMu     sync.Mutex
	)
	note := func(format string, args ...any) {
		errMu.Lock()
		rep.addError(format, args...)
		errMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, p.ReferenceTimeout)
		defer cancel()
		q, err := e.deps.Reference.Quote(fctx, p.Symbol)
		if err != nil {
			return fmt.Errorf("reference quote: %w", err)
		}
		if q.Price <= 0 {
			return fmt.Errorf("reference quote: non-positive price %v", q.Price)
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		if e.deps.Signals == nil || p.CandleLimit == 0 {
			return nil
		}
		fctx, cancel := context.WithTimeout(gctx, p.ReferenceTimeout)
		defer cancel()
		cs, err := e.deps.Reference.Candles(fctx, p.Symbol, p.CandleInterval, p.CandleLimit)
		if err != nil {
			note("candles: %v", err)
			return nil
		}
		candles = cs
		return nil
	})
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(gctx, p.VenueTimeout)
		defer cancel()
		list, err := e.deps.Venue.ListMarkets(fctx, p.Series)
		if err != nil {
			note("markets: %v", err)
			return nil
		}
		instances = list
		return nil
	})
	if err := g.Wait(); err != nil {
		rep.addError("%v", err)
		logger.EventWarn("cycle aborted", "trace_id", rep.TraceID, "reason", "no reference price", "error", err)
		return OutcomeNoPrice
	}
	rep.Reference = &quote
	rep.Candidates = len(instances)

	now := e.nowFn()
	sel := market.SelectMarket(instances, quote.Price, now)
	if sel == nil {
		logger.Event("no tradeable market", "trace_id", rep.TraceID, "candidates", len(instances))
		return OutcomeNoMarket
	}
	rep.Selection = sel
	inst := sel.Instance

	var book *market.OrderBook
	bctx, cancel := context.WithTimeout(ctx, p.VenueTimeout)
	if ob, err := e.deps.Venue.OrderBook(bctx, inst.Ticker); err != nil {
		rep.addError("orderbook: %v", err)
	} else {
		book = &ob
	}
	cancel()

	var bundle *signal.Bundle
	if e.deps.Signals != nil && len(candles) > 0 {
		bundle = e.deps.Signals.Compute(candles)
	}
	if book != nil {
		if imb, ok := book.Imbalance(); ok {
			bundle = bundle.WithImbalance(imb)
		}
	}
	rep.Signals = bundle
	if vol, ok := market.RecentVolatilityPct(candles, p.VolatilityWindow, quote.Price); ok {
		rep.VolatilityPct = &vol
	}

	fusion := decision.Fuse(decision.FusionInput{
		ReferencePrice:      quote.Price,
		Strike:              inst.Strike,
		MinutesToSettlement: sel.MinutesToSettlement,
		Signals:             bundle,
		VolatilityPct:       rep.VolatilityPct,
	}, p.Fusion)
	rep.Fusion = &fusion

	ask := 0
	if book != nil {
		ask = book.BestAsk(fusion.Side)
	}
	if ask == 0 {
		ask = inst.Ask.For(fusion.Side)
	}
	rep.AskCents = ask
	// The gate judges the price the order would actually be sent at.
	price := e.deps.Executor.Params().OrderPrice(ask)
	rep.PriceCents = price

	adm := risk.NewGate(p.Risk).Admit(risk.Input{
		ReferencePrice:      quote.Price,
		Strike:              inst.Strike,
		Decision:            fusion.Decision(),
		ExecutionPriceCents: price,
		VolatilityPct:       rep.VolatilityPct,
	})
	d := adm.Decision
	rep.Decision = &d
	logger.Event("decision", "trace_id", rep.TraceID, "ticker", inst.Ticker, "side", string(d.Side),
		"confidence", d.Confidence, "price_weight", fusion.PriceWeight, "reason", d.Reason())
	if !adm.Proceed {
		return OutcomeVetoed
	}
	if !p.Live {
		return OutcomeObserveOnly
	}

	count, balance := e.deps.Executor.Size(ctx, price, p.Sizing)
	rep.Contracts = count
	rep.BalanceCents = balance

	res := e.deps.Executor.Execute(ctx, executor.Request{
		Ticker:         inst.Ticker,
		Side:           d.Side,
		Count:          count,
		AskCents:       ask,
		ReferencePrice: quote.Price,
	})
	rep.Execution = &res
	if res.Err != "" && res.Outcome != executor.OutcomeFilled {
		rep.addError("execution: %s", res.Err)
	}
	return outcomeFromExecution(res)
}

func (e *Engine) finish(ctx context.Context, p Params, rep Report) {
	e.mu.Lock()
	e.last = &rep
	e.mu.Unlock()

	vetoKind := ""
	confidence := 0.0
	if rep.Decision != nil {
		confidence = rep.Decision.Confidence
		if rep.Decision.Veto != nil {
			vetoKind = string(rep.Decision.Veto.Kind)
		}
	}
	var attempts []string
	if rep.Execution != nil {
		for _, a := range rep.Execution.Attempts {
			attempts = append(attempts, string(a.Outcome))
		}
	}
	e.deps.Metrics.ObserveCycle(string(rep.Outcome), vetoKind, confidence, attempts, rep.Duration())

	logger.Event("cycle finished", "trace_id", rep.TraceID, "outcome", string(rep.Outcome),
		"elapsed", rep.Duration().Round(time.Millisecond).String(), "errors", len(rep.Errors))

	if e.deps.Store != nil {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := saveReport(sctx, e.deps.Store, rep); err != nil {
			logger.Warnf("engine: persist cycle %s failed: %v", rep.TraceID, err)
		}
		cancel()
	}
	if e.deps.Notifier != nil {
		text := rep.Line()
		if p.DetailedNotify {
			text = rep.Message().Render()
		}
		if err := e.deps.Notifier.SendText(text); err != nil {
			logger.Warnf("engine: notify cycle %s failed: %v", rep.TraceID, err)
		}
	}
}
