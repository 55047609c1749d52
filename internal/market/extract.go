package market

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// DefaultMinPlausibleStrike rejects numeric fragments that cannot be a strike
// of the reference asset (dates, hours, share counts embedded in titles).
const DefaultMinPlausibleStrike = 1000

// ExtractOptions tunes ParseInstances.
type ExtractOptions struct {
	MinPlausibleStrike float64
}

var (
	strikeFields     = []string{"floor_strike", "strike", "cap_strike", "strike_price"}
	settlementFields = []string{"close_time", "expected_expiration_time", "expiration_time", "latest_expiration_time"}

	tickerStrikeRe = regexp.MustCompile(`-[TB](\d+(?:\.\d+)?)$`)
	textStrikeRe   = regexp.MustCompile(`\$\s?([0-9][0-9,]*(?:\.[0-9]+)?)`)
)

// ParseInstances decodes a venue market listing. It accepts {"markets":[...]},
// {"market":{...}} or a bare array. Entries without ticker are skipped; entries
// whose strike or settlement time cannot be recovered keep the zero value and
// are dropped later by the selector.
func ParseInstances(raw []byte, opts ExtractOptions) ([]Instance, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("market listing is not valid json")
	}
	if opts.MinPlausibleStrike <= 0 {
		opts.MinPlausibleStrike = DefaultMinPlausibleStrike
	}
	root := gjson.ParseBytes(raw)
	var list gjson.Result
	switch {
	case root.IsArray():
		list = root
	case root.Get("markets").IsArray():
		list = root.Get("markets")
	case root.Get("market").IsObject():
		return []Instance{parseInstance(root.Get("market"), opts)}, nil
	default:
		return nil, fmt.Errorf("market listing has no markets array")
	}

	out := make([]Instance, 0, len(list.Array()))
	list.ForEach(func(_, item gjson.Result) bool {
		if strings.TrimSpace(item.Get("ticker").String()) == "" {
			return true
		}
		out = append(out, parseInstance(item, opts))
		return true
	})
	return out, nil
}

func parseInstance(item gjson.Result, opts ExtractOptions) Instance {
	inst := Instance{
		Ticker:       strings.TrimSpace(item.Get("ticker").String()),
		EventID:      strings.TrimSpace(item.Get("event_ticker").String()),
		Title:        strings.TrimSpace(item.Get("title").String()),
		Subtitle:     firstString(item, "yes_sub_title", "subtitle", "sub_title"),
		OpenInterest: item.Get("open_interest").Int(),
		Volume:       item.Get("volume").Int(),
	}
	if inst.EventID == "" {
		inst.EventID = eventFromTicker(inst.Ticker)
	}
	inst.Strike = ExtractStrike(item, inst.Ticker, opts.MinPlausibleStrike)
	inst.SettlementTime = ExtractSettlementTime(item)
	inst.Ask = Asks{
		Above: priceCents(item, "yes_ask"),
		Below: priceCents(item, "no_ask"),
	}
	return inst
}

// ExtractStrike walks the known strike representations in priority order:
// explicit numeric fields, the identifier suffix, then dollar amounts in the
// subtitle and title. Values under floor are ignored.
func ExtractStrike(item gjson.Result, ticker string, floor float64) float64 {
	for _, field := range strikeFields {
		v := item.Get(field)
		if !v.Exists() {
			continue
		}
		if f, ok := numeric(v); ok && f >= floor {
			return f
		}
	}
	if m := tickerStrikeRe.FindStringSubmatch(ticker); len(m) == 2 {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil && f >= floor {
			return f
		}
	}
	for _, field := range []string{"yes_sub_title", "subtitle", "sub_title", "title"} {
		text := item.Get(field).String()
		for _, m := range textStrikeRe.FindAllStringSubmatch(text, -1) {
			f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err == nil && f >= floor {
				return f
			}
		}
	}
	return 0
}

// ExtractSettlementTime prefers the trading-close instant; hourly markets carry
// a later terminal expiration that is not the settlement time.
func ExtractSettlementTime(item gjson.Result) time.Time {
	for _, field := range settlementFields {
		v := item.Get(field)
		if !v.Exists() {
			continue
		}
		if ts, ok := parseTime(v); ok {
			return ts
		}
	}
	return time.Time{}
}

func parseTime(v gjson.Result) (time.Time, bool) {
	switch v.Type {
	case gjson.Number:
		sec := v.Int()
		if sec <= 0 {
			return time.Time{}, false
		}
		if sec > 1e12 {
			return time.UnixMilli(sec).UTC(), true
		}
		return time.Unix(sec, 0).UTC(), true
	case gjson.String:
		s := strings.TrimSpace(v.String())
		if s == "" {
			return time.Time{}, false
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts.UTC(), true
		}
		if sec, err := strconv.ParseInt(s, 10, 64); err == nil && sec > 0 {
			return time.Unix(sec, 0).UTC(), true
		}
	}
	return time.Time{}, false
}

func numeric(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, v.Num > 0
	case gjson.String:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v.String()), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return f, f > 0
	default:
		return 0, false
	}
}

// priceCents reads "<field>" as integer cents or "<field>_dollars" as a
// decimal dollar string. Anything outside 1..99 is treated as unavailable.
func priceCents(item gjson.Result, field string) int {
	cents := 0
	if v := item.Get(field); v.Exists() && v.Type == gjson.Number {
		cents = int(v.Int())
	}
	if cents <= 0 {
		if v := item.Get(field + "_dollars"); v.Exists() {
			if d, err := decimal.NewFromString(strings.TrimSpace(v.String())); err == nil {
				cents = int(d.Shift(2).Round(0).IntPart())
			}
		}
	}
	if cents < 1 || cents > 99 {
		return 0
	}
	return cents
}

func firstString(item gjson.Result, fields ...string) string {
	for _, f := range fields {
		if s := strings.TrimSpace(item.Get(f).String()); s != "" {
			return s
		}
	}
	return ""
}

func eventFromTicker(ticker string) string {
	idx := strings.LastIndex(ticker, "-")
	if idx <= 0 {
		return ""
	}
	return ticker[:idx]
}
