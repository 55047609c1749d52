package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"strikebot/internal/gateway/exchange"
	"strikebot/internal/market"
)

const ordersPath = "/portfolio/orders"

type createOrderPayload struct {
	Ticker        string `json:"ticker"`
	ClientOrderID string `json:"client_order_id"`
	Side          string `json:"side"`
	Action        string `json:"action"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
	YesPrice      int    `json:"yes_price,omitempty"`
	NoPrice       int    `json:"no_price,omitempty"`
	BuyMaxCost    int    `json:"buy_max_cost,omitempty"`
}

// Sign materializes and authenticates one order submission. Errors wrap
// exchange.ErrSigning or exchange.ErrNoCredentials.
func (c *Client) Sign(order exchange.Order) (exchange.SignedOrder, error) {
	if order.Side != market.SideAbove && order.Side != market.SideBelow {
		return exchange.SignedOrder{}, fmt.Errorf("%w: unknown side %q", exchange.ErrSigning, order.Side)
	}
	payload := createOrderPayload{
		Ticker:        order.Ticker,
		ClientOrderID: order.ClientOrderID,
		Side:          order.Side.VenueSide(),
		Action:        "buy",
		Count:         order.Count,
		Type:          string(order.Type),
	}
	switch order.Type {
	case exchange.OrderMarket:
		if order.PriceCents > 0 {
			payload.BuyMaxCost = order.PriceCents * order.Count
		}
	default:
		payload.Type = string(exchange.OrderLimit)
		if order.Side == market.SideAbove {
			payload.YesPrice = order.PriceCents
		} else {
			payload.NoPrice = order.PriceCents
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return exchange.SignedOrder{}, fmt.Errorf("%w: encode order: %v", exchange.ErrSigning, err)
	}
	headers, err := c.authHeaders(http.MethodPost, ordersPath, body)
	if err != nil {
		return exchange.SignedOrder{}, err
	}
	return exchange.SignedOrder{
		Order:    order,
		Method:   http.MethodPost,
		Path:     c.fullPath(ordersPath),
		Body:     body,
		Headers:  headers,
		SignedAt: c.now(),
	}, nil
}

// Submit sends a signed order exactly once. Non-2xx answers come back as
// *exchange.StatusError.
func (c *Client) Submit(ctx context.Context, signed exchange.SignedOrder) (exchange.OrderAck, error) {
	data, code, err := c.doRequest(ctx, http.MethodPost, ordersPath, nil, signed.Body, signed.Headers)
	if err != nil {
		return exchange.OrderAck{}, err
	}
	ack := exchange.OrderAck{
		OrderID:    strings.TrimSpace(gjson.GetBytes(data, "order.order_id").String()),
		Status:     strings.TrimSpace(gjson.GetBytes(data, "order.status").String()),
		StatusCode: code,
	}
	return ack, nil
}
