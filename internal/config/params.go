package config

import (
	"time"

	"strikebot/internal/decision"
	"strikebot/internal/engine"
	"strikebot/internal/executor"
	"strikebot/internal/gateway/binance"
	"strikebot/internal/gateway/exchange"
	"strikebot/internal/gateway/gate"
	"strikebot/internal/gateway/kalshi"
	"strikebot/internal/market"
	"strikebot/internal/risk"
	"strikebot/internal/signal"
)

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (f FusionConfig) Params() decision.FusionParams {
	p := decision.FusionParams{
		NeutralConfidence:       f.NeutralConfidence,
		MomentumScalePct:        f.MomentumScalePct,
		MomentumMaxNudge:        f.MomentumMaxNudge,
		ImbalanceMaxNudge:       f.ImbalanceMaxNudge,
		VolatilityPenaltyPerPct: f.VolatilityPenaltyPerPct,
		VolatilityPenaltyMax:    f.VolatilityPenaltyMax,
		MinConfidence:           f.MinConfidence,
		MaxConfidence:           f.MaxConfidence,
	}
	for _, b := range f.Bands {
		p.Bands = append(p.Bands, decision.Band{MaxMinutes: b.MaxMinutes, PriceWeight: b.PriceWeight})
	}
	for _, t := range f.PriceThresholds {
		p.PriceThresholds = append(p.PriceThresholds, decision.PriceThreshold{MinDistancePct: t.MinDistancePct, Confidence: t.Confidence})
	}
	return p
}

func (r RiskConfig) Params() risk.Params {
	return risk.Params{
		MinDistanceUSD:     r.MinDistanceUSD,
		MaxVolatilityPct:   r.MaxVolatilityPct,
		MinConfidence:      r.MinConfidence,
		MaxEntryPriceCents: r.MaxEntryPriceCents,
		EdgeFilter:         risk.Edge{Enabled: r.EdgeFilter.Enabled, MinEdge: r.EdgeFilter.MinEdge},
	}
}

func (e ExecutionConfig) Params() executor.Params {
	return executor.Params{
		MaxRetries:       e.MaxRetries,
		Backoff:          seconds(e.BackoffSeconds),
		SubmitTimeout:    seconds(e.SubmitTimeoutSeconds),
		OrderType:        exchange.ParseOrderType(e.OrderType),
		PriceBufferCents: e.PriceBufferCents,
		MaxPriceCents:    e.MaxPriceCents,
	}
}

func (s SizingConfig) Params() executor.SizingParams {
	return executor.SizingParams{
		MaxBalanceFraction: s.MaxBalanceFraction,
		MinContracts:       s.MinContracts,
		MaxContracts:       s.MaxContracts,
	}
}

func (s SignalsConfig) Settings() signal.TalibSettings {
	return signal.TalibSettings{
		RSIPeriod:  s.RSIPeriod,
		FastEMA:    s.FastEMA,
		SlowEMA:    s.SlowEMA,
		MinCandles: s.MinCandles,
		Conviction: s.Conviction,
	}
}

func (v VenueConfig) Client() kalshi.Config {
	return kalshi.Config{
		BaseURL:           v.BaseURL,
		KeyID:             v.KeyID,
		PrivateKeyPath:    v.PrivateKeyPath,
		SignBody:          v.SignBody,
		HTTPTimeout:       seconds(v.TimeoutSeconds),
		PageLimit:         v.PageLimit,
		MaxPages:          v.MaxPages,
		RequestsPerSecond: v.RequestsPerSecond,
		Extract:           market.ExtractOptions{MinPlausibleStrike: v.MinPlausibleStrike},
	}
}

func (r ReferenceConfig) Client() binance.Config {
	return binance.Config{
		RESTBaseURL:  r.RESTBaseURL,
		HTTPTimeout:  seconds(r.TimeoutSeconds),
		ProxyEnabled: r.Proxy.Enabled,
		RESTProxyURL: r.Proxy.RESTURL,
	}
}

// FallbackClient shares the primary's timeout and proxy settings.
func (r ReferenceConfig) FallbackClient() gate.Config {
	return gate.Config{
		RESTBaseURL:  r.Fallback.RESTBaseURL,
		HTTPTimeout:  seconds(r.TimeoutSeconds),
		ProxyEnabled: r.Proxy.Enabled,
		RESTProxyURL: r.Proxy.RESTURL,
	}
}

// EngineParams assembles the cycle settings from every section.
func (c *Config) EngineParams() engine.Params {
	return engine.Params{
		Symbol:           c.Reference.Symbol,
		Series:           c.Venue.Series,
		CandleInterval:   c.Reference.CandleInterval,
		CandleLimit:      c.Reference.CandleLimit,
		VolatilityWindow: c.Risk.VolatilityWindowMinutes,
		ReferenceTimeout: seconds(c.Reference.TimeoutSeconds),
		VenueTimeout:     seconds(c.Venue.TimeoutSeconds),
		Live:             c.Execution.Enabled,
		DetailedNotify:   c.Notify.Webhook.Detailed,
		Fusion:           c.Fusion.Params(),
		Risk:             c.Risk.Params(),
		Sizing:           c.Sizing.Params(),
	}
}
