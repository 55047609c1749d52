// Package binance implements market.ReferenceSource on the Binance spot REST
// API via go-binance.
package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"strikebot/internal/logger"
	"strikebot/internal/market"
)

const maxHistoryLimit = 1000

// Source serves the reference spot price and its candles.
type Source struct {
	cfg    Config
	client *binance.Client
	nowFn  func() time.Time
}

func New(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	client := binance.NewClient("", "")
	client.BaseURL = final.RESTBaseURL
	httpClient := &http.Client{Timeout: final.HTTPTimeout}
	if final.ProxyEnabled && final.RESTProxyURL != "" {
		proxyURL, err := url.Parse(final.RESTProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REST proxy url: %w", err)
		}
		baseTransport, ok := http.DefaultTransport.(*http.Transport)
		if !ok || baseTransport == nil {
			return nil, fmt.Errorf("http DefaultTransport is not *http.Transport")
		}
		transport := baseTransport.Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient.Transport = transport
	}
	client.HTTPClient = httpClient
	return &Source{cfg: final, client: client, nowFn: time.Now}, nil
}

// Quote returns the last traded price plus best bid/ask when available. A
// failing book ticker only drops bid/ask.
func (s *Source) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	sym := exchangeSymbol(symbol)
	if sym == "" {
		return market.Quote{}, fmt.Errorf("symbol is required")
	}
	prices, err := s.client.NewListPricesService().Symbol(sym).Do(ctx)
	if err != nil {
		return market.Quote{}, fmt.Errorf("binance price %s: %w", sym, err)
	}
	q := market.Quote{Symbol: sym, At: s.nowFn().UTC()}
	for _, p := range prices {
		if p != nil && strings.EqualFold(p.Symbol, sym) {
			q.Price = parseFloat(p.Price)
			break
		}
	}
	if q.Price <= 0 {
		return market.Quote{}, fmt.Errorf("binance price %s: empty response", sym)
	}

	books, err := s.client.NewListBookTickersService().Symbol(sym).Do(ctx)
	if err != nil {
		logger.Debugf("binance: book ticker %s unavailable: %v", sym, err)
		return q, nil
	}
	for _, b := range books {
		if b != nil && strings.EqualFold(b.Symbol, sym) {
			q.Bid = parseFloat(b.BidPrice)
			q.Ask = parseFloat(b.AskPrice)
			break
		}
	}
	return q, nil
}

// Candles returns closed klines in chronological order; the in-progress bar
// is dropped.
func (s *Source) Candles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	sym := exchangeSymbol(symbol)
	if sym == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		return nil, fmt.Errorf("interval is required")
	}
	// One extra bar so dropping the open one still leaves limit candles.
	kls, err := s.client.NewKlinesService().Symbol(sym).Interval(interval).Limit(limit + 1).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w", sym, interval, err)
	}
	out := make([]market.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
			Trades:    kl.TradeNum,
		})
	}
	if dur, ok := ParseIntervalDuration(interval); ok {
		out = dropUnclosedKlineAt(out, dur, s.nowFn().UTC(), DefaultKlineGrace)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// exchangeSymbol turns "BTC/USDT" or "btc-usdt" into "BTCUSDT".
func exchangeSymbol(sym string) string {
	sym = strings.ToUpper(strings.TrimSpace(sym))
	return strings.NewReplacer("/", "", "-", "", "_", "").Replace(sym)
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
