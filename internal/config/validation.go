package config

import (
	"fmt"
	"strings"

	"strikebot/internal/gateway/binance"
)

// validate rejects configurations the builder cannot run with.
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Schedule.validate(); err != nil {
		return err
	}
	if err := c.Reference.validate(); err != nil {
		return err
	}
	if err := c.Venue.validate(); err != nil {
		return err
	}
	if err := c.Fusion.Params().Validate(); err != nil {
		return fmt.Errorf("fusion: %w", err)
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Execution.validate(); err != nil {
		return err
	}
	if err := c.Sizing.Params().Validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return c.Store.validate()
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(a.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level %q is not one of debug/info/warn/error", a.LogLevel)
	}
	switch strings.ToLower(a.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json")
	}
	return nil
}

func (s *ScheduleConfig) validate() error {
	if s.TriggerMinute < 0 || s.TriggerMinute > 59 {
		return fmt.Errorf("schedule.trigger_minute must be within [0,59]")
	}
	if s.PollIntervalSeconds < 1 || s.PollIntervalSeconds > 59 {
		return fmt.Errorf("schedule.poll_interval_seconds must be within [1,59]")
	}
	return nil
}

func (r *ReferenceConfig) validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("reference.symbol cannot be empty")
	}
	if _, ok := binance.ParseIntervalDuration(r.CandleInterval); !ok {
		return fmt.Errorf("reference.candle_interval %q is not a kline interval", r.CandleInterval)
	}
	if r.CandleLimit < 0 || r.CandleLimit > 1000 {
		return fmt.Errorf("reference.candle_limit must be within [0,1000]")
	}
	if r.Proxy.Enabled && r.Proxy.RESTURL == "" {
		return fmt.Errorf("reference.proxy.rest_url required when proxy is enabled")
	}
	if r.Fallback.Enabled && r.Fallback.RESTBaseURL == "" {
		return fmt.Errorf("reference.fallback.rest_base_url required when fallback is enabled")
	}
	return nil
}

func (v *VenueConfig) validate() error {
	if v.Series == "" {
		return fmt.Errorf("venue.series cannot be empty")
	}
	if (v.KeyID == "") != (v.PrivateKeyPath == "") {
		return fmt.Errorf("venue.key_id and venue.private_key_path must be set together")
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if r.VolatilityWindowMinutes <= 0 {
		return fmt.Errorf("risk.volatility_window_minutes must be > 0")
	}
	return r.Params().Validate()
}

func (e *ExecutionConfig) validate() error {
	switch e.OrderType {
	case "limit", "market":
	default:
		return fmt.Errorf("execution.order_type must be limit or market, got %q", e.OrderType)
	}
	return e.Params().Validate()
}

func (n *NotifyConfig) validate() error {
	if n.Webhook.Enabled && n.Webhook.URL == "" {
		return fmt.Errorf("notify.webhook.url required when webhook is enabled")
	}
	return nil
}

func (s *StoreConfig) validate() error {
	if s.Enabled && strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("store.path required when store is enabled")
	}
	return nil
}
