package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"strikebot/internal/pkg/circuit"
)

// Webhook posts {"text": ...} to a URL, retrying up to Attempts times. A
// breaker stops hammering an endpoint that keeps failing.
type Webhook struct {
	URL      string
	Attempts int
	Client   *http.Client
	Breaker  *circuit.CircuitBreaker
	sleep    func(time.Duration)
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		URL:      strings.TrimSpace(url),
		Attempts: 3,
		Client:   &http.Client{Timeout: timeout},
		Breaker:  circuit.NewCircuitBreaker("webhook", 3, 5*time.Minute),
		sleep:    time.Sleep,
	}
}

func (w *Webhook) SendText(text string) error {
	if w.URL == "" {
		return fmt.Errorf("webhook url not configured")
	}
	if w.Breaker == nil {
		return w.post(text)
	}
	return w.Breaker.Do(func() error { return w.post(text) })
}

func (w *Webhook) post(text string) error {
	body, err := json.Marshal(map[string]any{"text": text})
	if err != nil {
		return err
	}
	attempts := w.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 && w.sleep != nil {
			w.sleep(time.Duration(i) * time.Second)
		}
		req, err := http.NewRequest(http.MethodPost, w.URL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := w.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode/100 == 2 {
			return nil
		}
		lastErr = fmt.Errorf("webhook status=%d", resp.StatusCode)
	}
	return lastErr
}
