package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikebot/internal/pkg/circuit"
)

func TestWebhookRetriesUntilSuccess(t *testing.T) {
	var calls int32
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		got = payload["text"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, time.Second)
	w.sleep = func(time.Duration) {}
	require.NoError(t, w.SendText("cycle filled"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "cycle filled", got)
}

func TestWebhookBreakerOpens(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, time.Second)
	w.sleep = func(time.Duration) {}
	w.Attempts = 1
	w.Breaker = circuit.NewCircuitBreaker("test", 1, time.Hour)
	w.Breaker.SetStateChangeHandler(func(string, circuit.State, circuit.State) {})

	assert.Error(t, w.SendText("a"))
	assert.ErrorIs(t, w.SendText("b"), circuit.ErrOpen)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWebhookRequiresURL(t *testing.T) {
	assert.Error(t, NewWebhook("  ", 0).SendText("x"))
}

func TestMessageRender(t *testing.T) {
	msg := Message{
		Title:     "strikebot cycle: filled",
		Sections:  []Section{{Title: "decision", Lines: []string{"side above", " ", "confidence 71.0"}}, {Title: "empty"}},
		Footer:    "trace t-1",
		Timestamp: time.Date(2025, 10, 14, 20, 15, 0, 0, time.UTC),
	}
	out := msg.Render()
	assert.True(t, strings.HasPrefix(out, "strikebot cycle: filled"))
	assert.Contains(t, out, "- side above\n- confidence 71.0")
	assert.NotContains(t, out, "empty")
	assert.Contains(t, out, "time: 2025-10-14 20:15:00 UTC")
}
