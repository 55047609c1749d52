// Package gate implements market.ReferenceSource on the Gate.io spot REST
// API. It serves as the fallback when the primary reference is down.
package gate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/antihax/optional"
	gateapi "github.com/gateio/gateapi-go/v7"

	"strikebot/internal/gateway/binance"
	"strikebot/internal/logger"
	"strikebot/internal/market"
)

const maxHistoryLimit = 1000

var quoteAssets = []string{"USDT", "USDC", "FDUSD", "USD", "BTC", "ETH"}

type Source struct {
	cfg   Config
	rest  *gateapi.APIClient
	nowFn func() time.Time
}

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	restClient, err := newRESTClient(final)
	if err != nil {
		return nil, err
	}
	return &Source{cfg: final, rest: restClient, nowFn: time.Now}, nil
}

func newRESTClient(cfg Config) (*gateapi.APIClient, error) {
	conf := gateapi.NewConfiguration()
	conf.BasePath = cfg.RESTBaseURL

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.ProxyEnabled && cfg.RESTProxyURL != "" {
		proxyURL, err := url.Parse(cfg.RESTProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid gate REST proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	conf.HTTPClient = httpClient
	return gateapi.NewAPIClient(conf), nil
}

func (s *Source) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	pair := CurrencyPair(symbol)
	if pair == "" {
		return market.Quote{}, fmt.Errorf("symbol is required")
	}
	tickers, _, err := s.rest.SpotApi.ListTickers(ctx, &gateapi.ListTickersOpts{
		CurrencyPair: optional.NewString(pair),
	})
	if err != nil {
		return market.Quote{}, fmt.Errorf("gate ticker %s: %w", pair, err)
	}
	for _, t := range tickers {
		if !strings.EqualFold(t.CurrencyPair, pair) {
			continue
		}
		q := market.Quote{
			Symbol: strings.ReplaceAll(pair, "_", ""),
			Price:  parseFloat(t.Last),
			Bid:    parseFloat(t.HighestBid),
			Ask:    parseFloat(t.LowestAsk),
			At:     s.nowFn().UTC(),
		}
		if q.Price > 0 {
			return q, nil
		}
	}
	return market.Quote{}, fmt.Errorf("gate ticker %s: empty response", pair)
}

// Candles returns closed candles oldest first. Rows are
// [time, quote_volume, close, high, low, open, base_volume, closed].
func (s *Source) Candles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	pair := CurrencyPair(symbol)
	if pair == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	dur, ok := binance.ParseIntervalDuration(interval)
	if !ok {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}

	rows, _, err := s.rest.SpotApi.ListCandlesticks(ctx, pair, &gateapi.ListCandlesticksOpts{
		Limit:    optional.NewInt32(int32(limit + 1)),
		Interval: optional.NewString(interval),
	})
	if err != nil {
		logger.Errorf("[gate] fetch candles failed %s %s limit=%d: %v", pair, interval, limit, err)
		return nil, fmt.Errorf("gate candles %s %s: %w", pair, interval, err)
	}

	now := s.nowFn().UTC()
	out := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 7 {
			continue
		}
		sec, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			continue
		}
		open := time.Unix(sec, 0)
		if len(row) > 7 && strings.EqualFold(strings.TrimSpace(row[7]), "false") {
			continue
		}
		if open.Add(dur).After(now) {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  open.UnixMilli(),
			CloseTime: open.Add(dur).UnixMilli() - 1,
			Open:      parseFloat(row[5]),
			High:      parseFloat(row[3]),
			Low:       parseFloat(row[4]),
			Close:     parseFloat(row[2]),
			Volume:    parseFloat(row[6]),
		})
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// CurrencyPair turns "BTCUSDT" or "btc/usdt" into "BTC_USDT".
func CurrencyPair(symbol string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	sym = strings.NewReplacer("/", "_", "-", "_").Replace(sym)
	if sym == "" || strings.Contains(sym, "_") {
		return sym
	}
	for _, q := range quoteAssets {
		if strings.HasSuffix(sym, q) && len(sym) > len(q) {
			return sym[:len(sym)-len(q)] + "_" + q
		}
	}
	return sym
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
