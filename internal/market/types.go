// Package market holds the per-cycle market snapshot types, venue payload
// extraction and the market selector.
package market

import (
	"strings"
	"time"
)

// Side is the binary outcome a contract pays on.
type Side string

const (
	SideNone  Side = ""
	SideAbove Side = "above"
	SideBelow Side = "below"
)

// Opposite returns the other outcome; SideNone stays SideNone.
func (s Side) Opposite() Side {
	switch s {
	case SideAbove:
		return SideBelow
	case SideBelow:
		return SideAbove
	default:
		return SideNone
	}
}

// VenueSide maps the side onto the venue's yes/no vocabulary.
func (s Side) VenueSide() string {
	switch s {
	case SideAbove:
		return "yes"
	case SideBelow:
		return "no"
	default:
		return ""
	}
}

// ParseSide accepts above/below as well as yes/no.
func ParseSide(raw string) Side {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "above", "yes", "up":
		return SideAbove
	case "below", "no", "down":
		return SideBelow
	default:
		return SideNone
	}
}

// Asks are the current offer prices per side in cents (1..99); 0 means unavailable.
type Asks struct {
	Above int `json:"above"`
	Below int `json:"below"`
}

// For returns the ask of the given side.
func (a Asks) For(side Side) int {
	switch side {
	case SideAbove:
		return a.Above
	case SideBelow:
		return a.Below
	default:
		return 0
	}
}

// Instance is one tradeable strike inside a settlement event. Built fresh every
// cycle from the venue snapshot and never mutated afterwards.
type Instance struct {
	Ticker         string    `json:"ticker"`
	EventID        string    `json:"event_id"`
	Title          string    `json:"title,omitempty"`
	Subtitle       string    `json:"subtitle,omitempty"`
	Strike         float64   `json:"strike"`
	SettlementTime time.Time `json:"settlement_time"`
	Ask            Asks      `json:"ask"`
	OpenInterest   int64     `json:"open_interest"`
	Volume         int64     `json:"volume"`
}

// Selection is the instance picked for this cycle plus derived distances.
type Selection struct {
	Instance            Instance `json:"instance"`
	MinutesToSettlement float64  `json:"minutes_to_settlement"`
	Distance            float64  `json:"distance"`
	DistancePct         float64  `json:"distance_pct"`
}

// Quote is the reference spot price.
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Bid    float64   `json:"bid,omitempty"`
	Ask    float64   `json:"ask,omitempty"`
	At     time.Time `json:"at"`
}
