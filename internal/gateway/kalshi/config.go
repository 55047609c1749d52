package kalshi

import (
	"strings"
	"time"

	"strikebot/internal/market"
)

const DefaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

type Config struct {
	BaseURL        string
	KeyID          string
	PrivateKeyPath string
	// SignBody appends the request body to the signed message; some venue
	// deployments require it for POST requests.
	SignBody    bool
	HTTPTimeout time.Duration
	PageLimit   int
	MaxPages    int
	// RequestsPerSecond and Burst throttle every REST call.
	RequestsPerSecond float64
	Burst             int
	Extract           market.ExtractOptions
}

func (c *Config) withDefaults() Config {
	out := *c
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	out.KeyID = strings.TrimSpace(out.KeyID)
	out.PrivateKeyPath = strings.TrimSpace(out.PrivateKeyPath)
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 10 * time.Second
	}
	if out.PageLimit <= 0 || out.PageLimit > 1000 {
		out.PageLimit = 200
	}
	if out.MaxPages <= 0 {
		out.MaxPages = 5
	}
	if out.RequestsPerSecond <= 0 {
		out.RequestsPerSecond = 10
	}
	if out.Burst <= 0 {
		out.Burst = 5
	}
	return out
}
