package binance

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikebot/internal/market"
)

func newTestSource(t *testing.T, h http.HandlerFunc, now time.Time) *Source {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s, err := New(Config{RESTBaseURL: srv.URL})
	require.NoError(t, err)
	s.nowFn = func() time.Time { return now }
	return s
}

func TestQuote(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		switch r.URL.Path {
		case "/api/v3/ticker/price":
			_, _ = io.WriteString(w, `{"symbol":"BTCUSDT","price":"78771.37000000"}`)
		case "/api/v3/ticker/bookTicker":
			_, _ = io.WriteString(w, `{"symbol":"BTCUSDT","bidPrice":"78771.36","bidQty":"1.2","askPrice":"78771.38","askQty":"0.4"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, time.Now())

	q, err := s.Quote(t.Context(), "btc/usdt")
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", q.Symbol)
	assert.Equal(t, 78771.37, q.Price)
	assert.Equal(t, 78771.36, q.Bid)
	assert.Equal(t, 78771.38, q.Ask)
}

func TestQuoteSurvivesMissingBook(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/price") {
			_, _ = io.WriteString(w, `{"symbol":"BTCUSDT","price":"78000.5"}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"code":-1,"msg":"boom"}`)
	}, time.Now())

	q, err := s.Quote(t.Context(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 78000.5, q.Price)
	assert.Zero(t, q.Bid)
}

func TestCandlesDropsOpenBar(t *testing.T) {
	base := time.Date(2025, 10, 14, 20, 0, 0, 0, time.UTC)
	now := base.Add(3*time.Minute + 20*time.Second)
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		rows := make([]string, 0, 4)
		for i := 0; i < 4; i++ {
			open := base.Add(time.Duration(i) * time.Minute).UnixMilli()
			rows = append(rows, fmt.Sprintf(`[%d,"100.0","101.0","99.0","100.5","12.5",%d,"1250.0",42,"6.0","600.0","0"]`,
				open, open+59_999))
		}
		_, _ = io.WriteString(w, "["+strings.Join(rows, ",")+"]")
	}, now)

	candles, err := s.Candles(t.Context(), "BTCUSDT", "1m", 3)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, base.UnixMilli(), candles[0].OpenTime)
	assert.Equal(t, market.Candle{
		OpenTime:  base.Add(2 * time.Minute).UnixMilli(),
		CloseTime: base.Add(2*time.Minute).UnixMilli() + 59_999,
		Open:      100, High: 101, Low: 99, Close: 100.5, Volume: 12.5, Trades: 42,
	}, candles[2])
}

func TestParseIntervalDuration(t *testing.T) {
	d, ok := ParseIntervalDuration("15m")
	assert.True(t, ok)
	assert.Equal(t, 15*time.Minute, d)
	_, ok = ParseIntervalDuration("m")
	assert.False(t, ok)
	_, ok = ParseIntervalDuration("3y")
	assert.False(t, ok)
}
