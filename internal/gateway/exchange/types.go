// Package exchange defines the venue-neutral order types shared by the
// executor and venue adapters, plus error classification for submissions.
package exchange

import (
	"strings"
	"time"

	"strikebot/internal/market"
)

// OrderType is "limit" or "market".
type OrderType string

const (
	OrderLimit  OrderType = "limit"
	OrderMarket OrderType = "market"
)

// ParseOrderType defaults to limit.
func ParseOrderType(raw string) OrderType {
	if strings.EqualFold(strings.TrimSpace(raw), string(OrderMarket)) {
		return OrderMarket
	}
	return OrderLimit
}

// Order is one buy request for a binary contract.
type Order struct {
	Ticker        string      `json:"ticker"`
	Side          market.Side `json:"side"`
	Count         int         `json:"count"`
	Type          OrderType   `json:"type"`
	PriceCents    int         `json:"price_cents"` // limit price, or the worst acceptable price for market orders
	ClientOrderID string      `json:"client_order_id"`
}

// SignedOrder is an Order with its authenticated request materialized.
// It carries the exact body that was signed so it is sent unchanged.
type SignedOrder struct {
	Order    Order             `json:"order"`
	Method   string            `json:"method"`
	Path     string            `json:"path"`
	Body     []byte            `json:"-"`
	Headers  map[string]string `json:"-"`
	SignedAt time.Time         `json:"signed_at"`
}

// OrderAck is the venue's answer to an accepted (2xx) submission.
type OrderAck struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
}

// Canceled reports whether the venue accepted the request but killed the
// order immediately (e.g. an unfillable limit).
func (a OrderAck) Canceled() bool {
	switch strings.ToLower(strings.TrimSpace(a.Status)) {
	case "canceled", "cancelled", "rejected":
		return true
	default:
		return false
	}
}

// Balance is the available portfolio balance.
type Balance struct {
	AvailableCents int64     `json:"available_cents"`
	UpdatedAt      time.Time `json:"updated_at"`
}
