package app

import (
	"context"
	"fmt"
	"time"

	"strikebot/internal/config"
	"strikebot/internal/engine"
	"strikebot/internal/executor"
	"strikebot/internal/gateway/binance"
	"strikebot/internal/gateway/gate"
	"strikebot/internal/gateway/kalshi"
	"strikebot/internal/gateway/notifier"
	"strikebot/internal/logger"
	"strikebot/internal/market"
	"strikebot/internal/metrics"
	"strikebot/internal/scheduler"
	"strikebot/internal/signal"
	"strikebot/internal/store/sqlite"
	livehttp "strikebot/internal/transport/http/live"
)

// VenueClient is the full surface the app needs from the order venue.
type VenueClient interface {
	market.VenueReader
	executor.Venue
}

type AppBuilder struct {
	cfg     *config.Config
	cfgPath string

	referenceFn func(config.ReferenceConfig) (market.ReferenceSource, error)
	venueFn     func(config.VenueConfig) (VenueClient, error)
	storeFn     func(config.StoreConfig) (*sqlite.SqliteStore, error)
}

type AppBuilderOption func(*AppBuilder)

// WithConfigPath enables hot reload from path.
func WithConfigPath(path string) AppBuilderOption {
	return func(b *AppBuilder) { b.cfgPath = path }
}

func WithReferenceSource(src market.ReferenceSource) AppBuilderOption {
	return func(b *AppBuilder) {
		b.referenceFn = func(config.ReferenceConfig) (market.ReferenceSource, error) { return src, nil }
	}
}

func WithVenue(v VenueClient) AppBuilderOption {
	return func(b *AppBuilder) {
		b.venueFn = func(config.VenueConfig) (VenueClient, error) { return v, nil }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:         cfg,
		referenceFn: buildReferenceSource,
		venueFn:     buildVenue,
		storeFn:     buildStore,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func buildReferenceSource(cfg config.ReferenceConfig) (market.ReferenceSource, error) {
	primary, err := binance.New(cfg.Client())
	if err != nil {
		return nil, err
	}
	if !cfg.Fallback.Enabled {
		return primary, nil
	}
	secondary, err := gate.New(cfg.FallbackClient())
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	return market.NewFailoverSource(primary, secondary, cfg.Fallback.FailureThreshold,
		time.Duration(cfg.Fallback.CooldownSeconds)*time.Second), nil
}

func buildVenue(cfg config.VenueConfig) (VenueClient, error) {
	return kalshi.NewClient(cfg.Client())
}

func buildStore(cfg config.StoreConfig) (*sqlite.SqliteStore, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return sqlite.NewSqliteStore(cfg.Path)
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	ref, err := b.referenceFn(cfg.Reference)
	if err != nil {
		return nil, fmt.Errorf("reference source: %w", err)
	}
	venue, err := b.venueFn(cfg.Venue)
	if err != nil {
		return nil, fmt.Errorf("venue: %w", err)
	}
	st, err := b.storeFn(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	rec := metrics.New()
	deps := engine.Deps{
		Reference: ref,
		Venue:     venue,
		Executor:  executor.New(venue, cfg.Execution.Params()),
		Signals:   signal.NewTalibProvider(cfg.Signals.Settings()),
		Metrics:   rec,
	}
	var marker scheduler.FireMarker = scheduler.NewMemoryMarker()
	if st != nil {
		deps.Store = st
		marker = st.Marker()
	}
	if cfg.Notify.Webhook.Enabled {
		deps.Notifier = notifier.NewWebhook(cfg.Notify.Webhook.URL, time.Duration(cfg.Notify.Webhook.TimeoutSeconds)*time.Second)
	}

	eng, err := engine.New(deps, cfg.EngineParams())
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		cfgPath: b.cfgPath,
		engine:  eng,
		store:   st,
		marker:  marker,
		venue:   venue,
		Summary: buildSummary(cfg, venue.HasCredentials(), st != nil),
	}
	if cfg.App.HTTPEnabled() {
		sc := livehttp.ServerConfig{
			Addr:    cfg.App.HTTPAddr,
			Last:    eng,
			Metrics: rec.Handler(),
			Status:  a.status,
			LogPath: cfg.App.LogPath,
		}
		if st != nil {
			sc.Cycles = st.Cycles()
		}
		a.http = livehttp.NewServer(sc)
	}
	logger.Infof("app built: series=%s symbol=%s live=%v store=%v", cfg.Venue.Series, cfg.Reference.Symbol, cfg.Execution.Enabled, st != nil)
	return a, nil
}
