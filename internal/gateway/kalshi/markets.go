package kalshi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"strikebot/internal/gateway/exchange"
	"strikebot/internal/market"
)

// ListMarkets returns the open instances of series, following the listing
// cursor up to MaxPages pages.
func (c *Client) ListMarkets(ctx context.Context, series string) ([]market.Instance, error) {
	series = strings.TrimSpace(series)
	if series == "" {
		return nil, fmt.Errorf("series is required")
	}
	var (
		out    []market.Instance
		cursor string
	)
	for page := 0; page < c.cfg.MaxPages; page++ {
		q := url.Values{}
		q.Set("series_ticker", series)
		q.Set("status", "open")
		q.Set("limit", fmt.Sprint(c.cfg.PageLimit))
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		data, _, err := c.doRequest(ctx, http.MethodGet, "/markets", q, nil, nil)
		if err != nil {
			return nil, err
		}
		batch, err := market.ParseInstances(data, c.cfg.Extract)
		if err != nil {
			return nil, fmt.Errorf("parse markets page %d: %w", page, err)
		}
		out = append(out, batch...)
		cursor = strings.TrimSpace(gjson.GetBytes(data, "cursor").String())
		if cursor == "" || len(batch) == 0 {
			break
		}
	}
	return out, nil
}

// OrderBook fetches resting bids for both sides of ticker.
func (c *Client) OrderBook(ctx context.Context, ticker string) (market.OrderBook, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return market.OrderBook{}, fmt.Errorf("ticker is required")
	}
	data, _, err := c.doRequest(ctx, http.MethodGet, "/markets/"+url.PathEscape(ticker)+"/orderbook", nil, nil, nil)
	if err != nil {
		return market.OrderBook{}, err
	}
	if !gjson.ValidBytes(data) {
		return market.OrderBook{}, fmt.Errorf("orderbook response is not valid json")
	}
	book := gjson.GetBytes(data, "orderbook")
	return market.OrderBook{
		Ticker: ticker,
		Above:  parseLevels(book, "yes"),
		Below:  parseLevels(book, "no"),
	}, nil
}

// parseLevels reads [[price_cents, size], ...] or the dollar variant
// "<side>_dollars": [["0.45", size], ...].
func parseLevels(book gjson.Result, side string) []market.PriceLevel {
	var out []market.PriceLevel
	add := func(price int, size int64) {
		if price >= 1 && price <= 99 && size > 0 {
			out = append(out, market.PriceLevel{Price: price, Size: size})
		}
	}
	book.Get(side).ForEach(func(_, lvl gjson.Result) bool {
		add(int(lvl.Get("0").Int()), lvl.Get("1").Int())
		return true
	})
	if len(out) > 0 {
		return out
	}
	book.Get(side + "_dollars").ForEach(func(_, lvl gjson.Result) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(lvl.Get("0").String()))
		if err == nil {
			add(int(d.Shift(2).Round(0).IntPart()), lvl.Get("1").Int())
		}
		return true
	})
	return out
}

// Balance returns the available portfolio balance in cents.
func (c *Client) Balance(ctx context.Context) (exchange.Balance, error) {
	const path = "/portfolio/balance"
	headers, err := c.authHeaders(http.MethodGet, path, nil)
	if err != nil {
		return exchange.Balance{}, err
	}
	data, _, err := c.doRequest(ctx, http.MethodGet, path, nil, nil, headers)
	if err != nil {
		return exchange.Balance{}, err
	}
	v := gjson.GetBytes(data, "balance")
	if !v.Exists() {
		return exchange.Balance{}, fmt.Errorf("balance missing from venue response")
	}
	return exchange.Balance{AvailableCents: v.Int(), UpdatedAt: c.nowFn().UTC()}, nil
}

func (c *Client) now() time.Time { return c.nowFn().UTC() }
