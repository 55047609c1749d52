package config

import (
	"strings"

	"strikebot/internal/decision"
	"strikebot/internal/gateway/kalshi"
)

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogFormat    = "text"
	defaultAppHTTPAddr     = ":9991"
	defaultAppLogPath      = "data/logs/strikebot.log"
	defaultTriggerMinute   = 15
	defaultPollSeconds     = 15
	defaultSymbol          = "BTCUSDT"
	defaultReferenceREST   = "https://api.binance.com"
	defaultFallbackREST    = "https://api.gateio.ws/api/v4"
	defaultFallbackFails   = 3
	defaultFallbackCool    = 300
	defaultFetchTimeout    = 10
	defaultCandleInterval  = "1m"
	defaultCandleLimit     = 60
	defaultSeries          = "KXBTCD"
	defaultVenueRPS        = 10
	defaultPageLimit       = 200
	defaultMaxPages        = 5
	defaultMinStrike       = 1000
	defaultMinDistanceUSD  = 20
	defaultMaxVolPct       = 0.5
	defaultVolWindow       = 15
	defaultMinConfidence   = 65
	defaultMaxEntryCents   = 95
	defaultMaxRetries      = 2
	defaultBackoffSeconds  = 2
	defaultSubmitTimeout   = 10
	defaultOrderType       = "limit"
	defaultPriceBuffer     = 2
	defaultMaxPriceCents   = 99
	defaultBalanceFraction = 0.05
	defaultMinContracts    = 1
	defaultMaxContracts    = 10
	defaultWebhookTimeout  = 10
	defaultStorePath       = "data/strikebot.db"
)

// applyDefaults fills every field the config files left unset.
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Schedule.applyDefaults(keys)
	c.Reference.applyDefaults(keys)
	c.Venue.applyDefaults(keys)
	c.Signals.applyDefaults(keys)
	c.Fusion.applyDefaults(keys)
	c.Risk.applyDefaults(keys)
	c.Execution.applyDefaults(keys)
	c.Sizing.applyDefaults(keys)
	c.Notify.Webhook.applyDefaults(keys)
	c.Store.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
		boolFieldDefault("app.hot_reload", &a.HotReload, true),
	)
}

func (s *ScheduleConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("schedule.trigger_minute", &s.TriggerMinute, defaultTriggerMinute),
		positiveIntDefault("schedule.poll_interval_seconds", &s.PollIntervalSeconds, defaultPollSeconds),
	)
}

func (r *ReferenceConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	r.Proxy.normalize()
	applyFieldDefaults(keys,
		stringFieldDefault("reference.symbol", &r.Symbol, defaultSymbol),
		stringFieldDefault("reference.rest_base_url", &r.RESTBaseURL, defaultReferenceREST),
		positiveIntDefault("reference.timeout_seconds", &r.TimeoutSeconds, defaultFetchTimeout),
		stringFieldDefault("reference.candle_interval", &r.CandleInterval, defaultCandleInterval),
		intFieldDefault("reference.candle_limit", &r.CandleLimit, defaultCandleLimit),
		stringFieldDefault("reference.fallback.rest_base_url", &r.Fallback.RESTBaseURL, defaultFallbackREST),
		positiveIntDefault("reference.fallback.failure_threshold", &r.Fallback.FailureThreshold, defaultFallbackFails),
		positiveIntDefault("reference.fallback.cooldown_seconds", &r.Fallback.CooldownSeconds, defaultFallbackCool),
	)
	r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
}

func (v *VenueConfig) applyDefaults(keys keySet) {
	if v == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("venue.base_url", &v.BaseURL, kalshi.DefaultBaseURL),
		stringFieldDefault("venue.series", &v.Series, defaultSeries),
		positiveIntDefault("venue.timeout_seconds", &v.TimeoutSeconds, defaultFetchTimeout),
		positiveIntDefault("venue.page_limit", &v.PageLimit, defaultPageLimit),
		positiveIntDefault("venue.max_pages", &v.MaxPages, defaultMaxPages),
		positiveFloatDefault("venue.requests_per_second", &v.RequestsPerSecond, defaultVenueRPS),
		positiveFloatDefault("venue.min_plausible_strike", &v.MinPlausibleStrike, defaultMinStrike),
	)
	v.Series = strings.ToUpper(strings.TrimSpace(v.Series))
	v.KeyID = strings.TrimSpace(v.KeyID)
	v.PrivateKeyPath = strings.TrimSpace(v.PrivateKeyPath)
}

func (s *SignalsConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		positiveIntDefault("signals.rsi_period", &s.RSIPeriod, 14),
		positiveIntDefault("signals.fast_ema", &s.FastEMA, 9),
		positiveIntDefault("signals.slow_ema", &s.SlowEMA, 21),
		positiveIntDefault("signals.min_candles", &s.MinCandles, 35),
		positiveFloatDefault("signals.conviction", &s.Conviction, 0.6),
	)
}

func (f *FusionConfig) applyDefaults(keys keySet) {
	if f == nil {
		return
	}
	def := decision.DefaultFusionParams()
	applyFieldDefaults(keys,
		fieldDefault{
			key:  "fusion.bands",
			need: func() bool { return len(f.Bands) == 0 },
			apply: func() {
				for _, b := range def.Bands {
					f.Bands = append(f.Bands, BandConfig{MaxMinutes: b.MaxMinutes, PriceWeight: b.PriceWeight})
				}
			},
		},
		fieldDefault{
			key:  "fusion.price_thresholds",
			need: func() bool { return len(f.PriceThresholds) == 0 },
			apply: func() {
				for _, t := range def.PriceThresholds {
					f.PriceThresholds = append(f.PriceThresholds, ThresholdConfig{MinDistancePct: t.MinDistancePct, Confidence: t.Confidence})
				}
			},
		},
		positiveFloatDefault("fusion.neutral_confidence", &f.NeutralConfidence, def.NeutralConfidence),
		positiveFloatDefault("fusion.momentum_scale_pct", &f.MomentumScalePct, def.MomentumScalePct),
		floatFieldDefault("fusion.momentum_max_nudge", &f.MomentumMaxNudge, def.MomentumMaxNudge),
		floatFieldDefault("fusion.imbalance_max_nudge", &f.ImbalanceMaxNudge, def.ImbalanceMaxNudge),
		floatFieldDefault("fusion.volatility_penalty_per_pct", &f.VolatilityPenaltyPerPct, def.VolatilityPenaltyPerPct),
		floatFieldDefault("fusion.volatility_penalty_max", &f.VolatilityPenaltyMax, def.VolatilityPenaltyMax),
		positiveFloatDefault("fusion.min_confidence", &f.MinConfidence, def.MinConfidence),
		positiveFloatDefault("fusion.max_confidence", &f.MaxConfidence, def.MaxConfidence),
	)
}

func (r *RiskConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		floatFieldDefault("risk.min_distance_usd", &r.MinDistanceUSD, defaultMinDistanceUSD),
		positiveFloatDefault("risk.max_volatility_pct", &r.MaxVolatilityPct, defaultMaxVolPct),
		positiveIntDefault("risk.volatility_window_minutes", &r.VolatilityWindowMinutes, defaultVolWindow),
		floatFieldDefault("risk.min_confidence", &r.MinConfidence, defaultMinConfidence),
		positiveIntDefault("risk.max_entry_price_cents", &r.MaxEntryPriceCents, defaultMaxEntryCents),
	)
}

func (e *ExecutionConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("execution.max_retries", &e.MaxRetries, defaultMaxRetries),
		intFieldDefault("execution.backoff_seconds", &e.BackoffSeconds, defaultBackoffSeconds),
		positiveIntDefault("execution.submit_timeout_seconds", &e.SubmitTimeoutSeconds, defaultSubmitTimeout),
		stringFieldDefault("execution.order_type", &e.OrderType, defaultOrderType),
		intFieldDefault("execution.price_buffer_cents", &e.PriceBufferCents, defaultPriceBuffer),
		positiveIntDefault("execution.max_price_cents", &e.MaxPriceCents, defaultMaxPriceCents),
	)
	e.OrderType = strings.ToLower(strings.TrimSpace(e.OrderType))
}

func (s *SizingConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		positiveFloatDefault("sizing.max_balance_fraction", &s.MaxBalanceFraction, defaultBalanceFraction),
		positiveIntDefault("sizing.min_contracts", &s.MinContracts, defaultMinContracts),
		positiveIntDefault("sizing.max_contracts", &s.MaxContracts, defaultMaxContracts),
	)
}

func (w *WebhookConfig) applyDefaults(keys keySet) {
	if w == nil {
		return
	}
	applyFieldDefaults(keys,
		positiveIntDefault("notify.webhook.timeout_seconds", &w.TimeoutSeconds, defaultWebhookTimeout),
	)
	w.URL = strings.TrimSpace(w.URL)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("store.enabled", &s.Enabled, true),
		stringFieldDefault("store.path", &s.Path, defaultStorePath),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// intFieldDefault applies whenever the key is absent; zero is a legal value.
func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil },
		apply: func() { *target = def },
	}
}

func positiveIntDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil && *target <= 0 },
		apply: func() { *target = def },
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil },
		apply: func() { *target = def },
	}
}

func positiveFloatDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return target != nil && *target <= 0 },
		apply: func() { *target = def },
	}
}
