// Package kalshi is the venue adapter: market listings, order books, portfolio
// balance and signed order submission over the venue REST API.
package kalshi

import (
	"bytes"
	"context"
	"crypto/rsa"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"strikebot/internal/gateway/exchange"
	"strikebot/internal/logger"
)

// Client wraps the venue REST endpoints the engine needs.
type Client struct {
	cfg        Config
	baseURL    *url.URL
	httpClient *http.Client
	signer     *Signer
	// keyErr holds a private key load failure; with a key id configured it
	// turns every signing attempt into exchange.ErrSigning.
	keyErr  error
	limiter *rate.Limiter
	nowFn   func() time.Time
}

// NewClient builds a client. A configured but unreadable private key is not a
// construction error: the client reports credentials present and fails at
// signing time.
func NewClient(cfg Config) (*Client, error) {
	final := cfg.withDefaults()
	parsed, err := url.Parse(final.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse venue base_url: %w", err)
	}
	c := &Client{
		cfg:        final,
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: final.HTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(final.RequestsPerSecond), final.Burst),
		nowFn:      time.Now,
	}
	if final.KeyID != "" && final.PrivateKeyPath != "" {
		var key *rsa.PrivateKey
		key, c.keyErr = LoadPrivateKey(final.PrivateKeyPath)
		if c.keyErr != nil {
			logger.Warnf("kalshi: private key unusable, orders will fail to sign: %v", c.keyErr)
		} else {
			c.signer = NewSigner(final.KeyID, key, final.SignBody)
		}
	}
	return c, nil
}

// WithSigner installs an already parsed key.
func (c *Client) WithSigner(s *Signer) *Client {
	c.signer = s
	c.keyErr = nil
	return c
}

// HasCredentials is true when a key id and key material are configured, even
// if the key later fails to sign.
func (c *Client) HasCredentials() bool {
	if c == nil {
		return false
	}
	return c.signer != nil || (c.cfg.KeyID != "" && c.keyErr != nil)
}

// fullPath is the URL path that gets signed, base path included.
func (c *Client) fullPath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(c.baseURL.Path, "/") + path
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.fullPath(path)
	u.RawPath = ""
	u.RawQuery = query.Encode()
	u.Fragment = ""
	return u.String()
}

func (c *Client) authHeaders(method, path string, body []byte) (map[string]string, error) {
	if c.keyErr != nil {
		return nil, fmt.Errorf("%w: %v", exchange.ErrSigning, c.keyErr)
	}
	if c.signer == nil {
		return nil, exchange.ErrNoCredentials
	}
	headers, err := c.signer.Headers(method, c.fullPath(path), body, c.nowFn())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", exchange.ErrSigning, err)
	}
	return headers, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body []byte, headers map[string]string) ([]byte, int, error) {
	if c == nil || c.httpClient == nil {
		return nil, 0, fmt.Errorf("kalshi client not initialized")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("venue rate limit: %w", err)
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("call venue %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, &exchange.StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(data),
		}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read venue response: %w", err)
	}
	return data, resp.StatusCode, nil
}
