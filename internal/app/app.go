package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"strikebot/internal/config"
	"strikebot/internal/engine"
	"strikebot/internal/logger"
	"strikebot/internal/scheduler"
	"strikebot/internal/store/sqlite"
	livehttp "strikebot/internal/transport/http/live"
)

// App wires config, engine, scheduler, status server and config watcher.
type App struct {
	cfg     *config.Config
	cfgPath string
	engine  *engine.Engine
	store   *sqlite.SqliteStore
	marker  scheduler.FireMarker
	venue   VenueClient
	http    *livehttp.Server
	Summary *StartupSummary

	mu    sync.RWMutex
	sched *scheduler.Hourly
}

// NewApp builds the application without starting it.
func NewApp(cfg *config.Config, opts ...AppBuilderOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)
	return NewAppBuilder(cfg, opts...).Build(context.Background())
}

// Run starts the scheduler, the status server and, when enabled, the config
// watcher. It returns when ctx ends or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.engine == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()
	if a.Summary != nil {
		a.Summary.Print()
	}

	group, ctx := errgroup.WithContext(ctx)
	if a.http != nil {
		group.Go(func() error {
			if err := a.http.Start(ctx); err != nil {
				return fmt.Errorf("status server error: %w", err)
			}
			return nil
		})
	}
	if a.cfg.App.HotReload && a.cfgPath != "" {
		w, err := config.NewWatcher(a.cfgPath, a.cfg)
		if err != nil {
			return err
		}
		w.Subscribe(a.applyTunables)
		group.Go(func() error { return w.Run(ctx) })
	}

	sched := scheduler.NewHourly(ctx, a.cfg.Schedule.TriggerMinute,
		time.Duration(a.cfg.Schedule.PollIntervalSeconds)*time.Second, a.marker)
	sched.Name = a.cfg.Venue.Series
	if err := sched.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	a.sched = sched
	a.mu.Unlock()
	group.Go(func() error {
		sched.Start(func(ctx context.Context) { a.engine.RunCycle(ctx) })
		return nil
	})
	return group.Wait()
}

// RunOnce executes a single cycle and returns its report.
func (a *App) RunOnce(ctx context.Context) engine.Report {
	return a.engine.RunCycle(ctx)
}

func (a *App) Engine() *engine.Engine { return a.engine }

func (a *App) Close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		logger.Warnf("app: close store: %v", err)
	}
	a.store = nil
}

// applyTunables pushes reloaded fusion, risk and sizing settings into the
// engine. Other sections need a restart.
func (a *App) applyTunables(cfg *config.Config) {
	if err := a.engine.SetTunables(cfg.Fusion.Params(), cfg.Risk.Params(), cfg.Sizing.Params()); err != nil {
		logger.Errorf("app: reject reloaded tunables: %v", err)
	}
}

func (a *App) status() any {
	p := a.engine.Params()
	out := map[string]any{
		"symbol":          p.Symbol,
		"series":          p.Series,
		"live":            p.Live,
		"has_credentials": a.venue != nil && a.venue.HasCredentials(),
		"trigger_minute":  a.cfg.Schedule.TriggerMinute,
		"min_confidence":  p.Risk.MinConfidence,
		"min_distance":    p.Risk.MinDistanceUSD,
	}
	a.mu.RLock()
	sched := a.sched
	a.mu.RUnlock()
	if sched != nil {
		out["next_trigger"] = sched.NextTrigger(time.Now()).Format(time.RFC3339)
	}
	if last, ok := a.engine.Last(); ok {
		out["last_outcome"] = last.Outcome
		out["last_trace_id"] = last.TraceID
	}
	return out
}
