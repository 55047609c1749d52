package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const listing = `{
  "cursor": "",
  "markets": [
    {
      "ticker": "KXBTCD-25OCT1417-T78749.99",
      "event_ticker": "KXBTCD-25OCT1417",
      "title": "Bitcoin price on Oct 14, 2025 at 5pm EDT?",
      "yes_sub_title": "$78,750 or above",
      "floor_strike": 78749.99,
      "close_time": "2025-10-14T21:00:00Z",
      "expiration_time": "2025-10-21T21:00:00Z",
      "latest_expiration_time": "2025-10-21T21:00:00Z",
      "yes_ask": 72,
      "no_ask": 30,
      "open_interest": 1200,
      "volume": 5400
    },
    {
      "ticker": "KXBTCD-25OCT1417-T79249.99",
      "event_ticker": "KXBTCD-25OCT1417",
      "title": "Bitcoin price on Oct 14, 2025 at 5pm EDT?",
      "expected_expiration_time": "2025-10-14T21:05:00Z",
      "yes_ask_dollars": "0.1800",
      "no_ask_dollars": "0.8400"
    },
    {"event_ticker": "no-ticker"}
  ]
}`

func TestParseInstancesListing(t *testing.T) {
	out, err := ParseInstances([]byte(listing), ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, "KXBTCD-25OCT1417", first.EventID)
	assert.Equal(t, 78749.99, first.Strike)
	assert.Equal(t, time.Date(2025, 10, 14, 21, 0, 0, 0, time.UTC), first.SettlementTime, "close_time wins over later expirations")
	assert.Equal(t, Asks{Above: 72, Below: 30}, first.Ask)
	assert.Equal(t, int64(1200), first.OpenInterest)

	second := out[1]
	assert.Equal(t, 79249.99, second.Strike, "strike recovered from ticker suffix")
	assert.Equal(t, time.Date(2025, 10, 14, 21, 5, 0, 0, time.UTC), second.SettlementTime)
	assert.Equal(t, Asks{Above: 18, Below: 84}, second.Ask)
}

func TestExtractStrikeFromTitleRespectsFloor(t *testing.T) {
	item := gjson.Parse(`{"title":"BTC above $78,500.50 at 5pm on Oct 14? Top 10 $5 prize"}`)
	assert.Equal(t, 78500.50, ExtractStrike(item, "KXBTC-25OCT14", DefaultMinPlausibleStrike))

	small := gjson.Parse(`{"strike": 17, "title":"Will it be $5 or more"}`)
	assert.Zero(t, ExtractStrike(small, "KXBTC-25OCT1417", DefaultMinPlausibleStrike))
}

func TestExtractStrikeStringField(t *testing.T) {
	item := gjson.Parse(`{"floor_strike": "78,000"}`)
	assert.Equal(t, 78000.0, ExtractStrike(item, "", DefaultMinPlausibleStrike))
}

func TestExtractSettlementTimeUnixSeconds(t *testing.T) {
	item := gjson.Parse(`{"expiration_time": 1760475600, "close_time": 1760472000}`)
	assert.Equal(t, time.Unix(1760472000, 0).UTC(), ExtractSettlementTime(item))
	assert.True(t, ExtractSettlementTime(gjson.Parse(`{}`)).IsZero())
}

func TestParseInstancesRejectsGarbage(t *testing.T) {
	_, err := ParseInstances([]byte(`{not json`), ExtractOptions{})
	assert.Error(t, err)
	_, err = ParseInstances([]byte(`{"cursor":""}`), ExtractOptions{})
	assert.Error(t, err)
}

func TestPriceOutsideRangeIsUnavailable(t *testing.T) {
	out, err := ParseInstances([]byte(`[{"ticker":"X-T80000","yes_ask":100,"no_ask":0}]`), ExtractOptions{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, Asks{}, out[0].Ask)
	assert.Equal(t, "X", out[0].EventID)
}
