package config

import "strings"

// Config is the strikebot configuration root.
type Config struct {
	App       AppConfig       `toml:"app" yaml:"app"`
	Schedule  ScheduleConfig  `toml:"schedule" yaml:"schedule"`
	Reference ReferenceConfig `toml:"reference" yaml:"reference"`
	Venue     VenueConfig     `toml:"venue" yaml:"venue"`
	Signals   SignalsConfig   `toml:"signals" yaml:"signals"`
	Fusion    FusionConfig    `toml:"fusion" yaml:"fusion"`
	Risk      RiskConfig      `toml:"risk" yaml:"risk"`
	Execution ExecutionConfig `toml:"execution" yaml:"execution"`
	Sizing    SizingConfig    `toml:"sizing" yaml:"sizing"`
	Notify    NotifyConfig    `toml:"notify" yaml:"notify"`
	Store     StoreConfig     `toml:"store" yaml:"store"`
}

type AppConfig struct {
	Env       string `toml:"env" yaml:"env"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
	LogPath   string `toml:"log_path" yaml:"log_path"`
	// HTTPAddr is the status server address; "off" disables it.
	HTTPAddr string `toml:"http_addr" yaml:"http_addr"`
	// HotReload re-applies fusion, risk and sizing when the file changes.
	HotReload bool `toml:"hot_reload" yaml:"hot_reload"`
}

func (a AppConfig) HTTPEnabled() bool {
	addr := strings.ToLower(strings.TrimSpace(a.HTTPAddr))
	return addr != "" && addr != "off"
}

type ScheduleConfig struct {
	TriggerMinute       int `toml:"trigger_minute" yaml:"trigger_minute"`
	PollIntervalSeconds int `toml:"poll_interval_seconds" yaml:"poll_interval_seconds"`
}

type ReferenceConfig struct {
	Symbol         string      `toml:"symbol" yaml:"symbol"`
	RESTBaseURL    string      `toml:"rest_base_url" yaml:"rest_base_url"`
	TimeoutSeconds int         `toml:"timeout_seconds" yaml:"timeout_seconds"`
	CandleInterval string      `toml:"candle_interval" yaml:"candle_interval"`
	CandleLimit    int         `toml:"candle_limit" yaml:"candle_limit"`
	Proxy          ProxyConfig `toml:"proxy" yaml:"proxy"`
	// Fallback is a Gate.io spot source used while the primary is failing.
	Fallback FallbackConfig `toml:"fallback" yaml:"fallback"`
}

type FallbackConfig struct {
	Enabled          bool   `toml:"enabled" yaml:"enabled"`
	RESTBaseURL      string `toml:"rest_base_url" yaml:"rest_base_url"`
	FailureThreshold int    `toml:"failure_threshold" yaml:"failure_threshold"`
	CooldownSeconds  int    `toml:"cooldown_seconds" yaml:"cooldown_seconds"`
}

type ProxyConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	RESTURL string `toml:"rest_url" yaml:"rest_url"`
}

func (p *ProxyConfig) normalize() {
	if p == nil {
		return
	}
	p.RESTURL = strings.TrimSpace(p.RESTURL)
}

type VenueConfig struct {
	BaseURL            string  `toml:"base_url" yaml:"base_url"`
	Series             string  `toml:"series" yaml:"series"`
	KeyID              string  `toml:"key_id" yaml:"key_id"`
	PrivateKeyPath     string  `toml:"private_key_path" yaml:"private_key_path"`
	SignBody           bool    `toml:"sign_body" yaml:"sign_body"`
	TimeoutSeconds     int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond  float64 `toml:"requests_per_second" yaml:"requests_per_second"`
	PageLimit          int     `toml:"page_limit" yaml:"page_limit"`
	MaxPages           int     `toml:"max_pages" yaml:"max_pages"`
	MinPlausibleStrike float64 `toml:"min_plausible_strike" yaml:"min_plausible_strike"`
}

// SignalsConfig tunes the indicator provider.
type SignalsConfig struct {
	RSIPeriod  int     `toml:"rsi_period" yaml:"rsi_period"`
	FastEMA    int     `toml:"fast_ema" yaml:"fast_ema"`
	SlowEMA    int     `toml:"slow_ema" yaml:"slow_ema"`
	MinCandles int     `toml:"min_candles" yaml:"min_candles"`
	Conviction float64 `toml:"conviction" yaml:"conviction"`
}

type BandConfig struct {
	MaxMinutes  float64 `toml:"max_minutes" yaml:"max_minutes"`
	PriceWeight float64 `toml:"price_weight" yaml:"price_weight"`
}

type ThresholdConfig struct {
	MinDistancePct float64 `toml:"min_distance_pct" yaml:"min_distance_pct"`
	Confidence     float64 `toml:"confidence" yaml:"confidence"`
}

type FusionConfig struct {
	Bands                   []BandConfig      `toml:"bands" yaml:"bands"`
	PriceThresholds         []ThresholdConfig `toml:"price_thresholds" yaml:"price_thresholds"`
	NeutralConfidence       float64           `toml:"neutral_confidence" yaml:"neutral_confidence"`
	MomentumScalePct        float64           `toml:"momentum_scale_pct" yaml:"momentum_scale_pct"`
	MomentumMaxNudge        float64           `toml:"momentum_max_nudge" yaml:"momentum_max_nudge"`
	ImbalanceMaxNudge       float64           `toml:"imbalance_max_nudge" yaml:"imbalance_max_nudge"`
	VolatilityPenaltyPerPct float64           `toml:"volatility_penalty_per_pct" yaml:"volatility_penalty_per_pct"`
	VolatilityPenaltyMax    float64           `toml:"volatility_penalty_max" yaml:"volatility_penalty_max"`
	MinConfidence           float64           `toml:"min_confidence" yaml:"min_confidence"`
	MaxConfidence           float64           `toml:"max_confidence" yaml:"max_confidence"`
}

type EdgeFilterConfig struct {
	Enabled bool    `toml:"enabled" yaml:"enabled"`
	MinEdge float64 `toml:"min_edge" yaml:"min_edge"`
}

type RiskConfig struct {
	MinDistanceUSD          float64          `toml:"min_distance_usd" yaml:"min_distance_usd"`
	MaxVolatilityPct        float64          `toml:"max_volatility_pct" yaml:"max_volatility_pct"`
	VolatilityWindowMinutes int              `toml:"volatility_window_minutes" yaml:"volatility_window_minutes"`
	MinConfidence           float64          `toml:"min_confidence" yaml:"min_confidence"`
	MaxEntryPriceCents      int              `toml:"max_entry_price_cents" yaml:"max_entry_price_cents"`
	EdgeFilter              EdgeFilterConfig `toml:"edge_filter" yaml:"edge_filter"`
}

type ExecutionConfig struct {
	// Enabled allows order submission. Off, every cycle is observe-only.
	Enabled              bool   `toml:"enabled" yaml:"enabled"`
	MaxRetries           int    `toml:"max_retries" yaml:"max_retries"`
	BackoffSeconds       int    `toml:"backoff_seconds" yaml:"backoff_seconds"`
	SubmitTimeoutSeconds int    `toml:"submit_timeout_seconds" yaml:"submit_timeout_seconds"`
	OrderType            string `toml:"order_type" yaml:"order_type"`
	PriceBufferCents     int    `toml:"price_buffer_cents" yaml:"price_buffer_cents"`
	MaxPriceCents        int    `toml:"max_price_cents" yaml:"max_price_cents"`
}

type SizingConfig struct {
	MaxBalanceFraction float64 `toml:"max_balance_fraction" yaml:"max_balance_fraction"`
	MinContracts       int     `toml:"min_contracts" yaml:"min_contracts"`
	MaxContracts       int     `toml:"max_contracts" yaml:"max_contracts"`
}

type NotifyConfig struct {
	Webhook WebhookConfig `toml:"webhook" yaml:"webhook"`
}

type WebhookConfig struct {
	Enabled        bool   `toml:"enabled" yaml:"enabled"`
	URL            string `toml:"url" yaml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
	Detailed       bool   `toml:"detailed" yaml:"detailed"`
}

type StoreConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// keySet tracks the field paths explicitly set in the config files.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes how one field receives its default.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
