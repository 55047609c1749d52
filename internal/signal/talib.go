package signal

import (
	"math"

	"github.com/markcheno/go-talib"

	"strikebot/internal/market"
)

// TalibSettings tunes TalibProvider.
type TalibSettings struct {
	RSIPeriod  int
	FastEMA    int
	SlowEMA    int
	MinCandles int
	// Conviction scales the blended score into a probability; 1 maps a
	// unanimous score onto 0/100, lower values keep the provider humble.
	Conviction float64
}

// DefaultTalibSettings mirrors the 1m-candle setup the engine runs with.
func DefaultTalibSettings() TalibSettings {
	return TalibSettings{
		RSIPeriod:  14,
		FastEMA:    9,
		SlowEMA:    21,
		MinCandles: 35,
		Conviction: 0.6,
	}
}

// TalibProvider blends RSI, MACD histogram and an EMA cross into a directional
// probability and reports raw 1- and 5-bar momentum.
type TalibProvider struct {
	cfg TalibSettings
}

func NewTalibProvider(cfg TalibSettings) *TalibProvider {
	def := DefaultTalibSettings()
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = def.RSIPeriod
	}
	if cfg.FastEMA <= 0 {
		cfg.FastEMA = def.FastEMA
	}
	if cfg.SlowEMA <= cfg.FastEMA {
		cfg.SlowEMA = def.SlowEMA
	}
	if cfg.MinCandles < 35 {
		cfg.MinCandles = def.MinCandles
	}
	if cfg.Conviction <= 0 || cfg.Conviction > 1 {
		cfg.Conviction = def.Conviction
	}
	return &TalibProvider{cfg: cfg}
}

func (p *TalibProvider) Compute(candles []market.Candle) *Bundle {
	if len(candles) < p.cfg.MinCandles {
		return nil
	}
	closes := market.Closes(candles)
	last := closes[len(closes)-1]
	if last <= 0 || math.IsNaN(last) {
		return nil
	}

	rsi := lastValid(sanitizeSeries(talib.Rsi(closes, p.cfg.RSIPeriod)))
	_, _, hist := talib.Macd(closes, 12, 26, 9)
	macdHist := lastValid(sanitizeSeries(hist))
	fast := lastValid(sanitizeSeries(talib.Ema(closes, p.cfg.FastEMA)))
	slow := lastValid(sanitizeSeries(talib.Ema(closes, p.cfg.SlowEMA)))

	// One tenth of a percent of price saturates the trend components.
	unit := last * 0.001
	score := 0.4*clampUnit((rsi-50)/50) +
		0.3*clampUnit(macdHist/unit) +
		0.3*clampUnit((fast-slow)/unit)

	prob := round4(50 + 50*score*p.cfg.Conviction)
	m1 := round4(last - closes[len(closes)-2])
	m5 := round4(last - closes[len(closes)-6])
	return &Bundle{
		ProbabilityAbove: &prob,
		Momentum1m:       &m1,
		Momentum5m:       &m5,
	}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

func sanitizeSeries(src []float64) []float64 {
	out := make([]float64, 0, len(src))
	for _, v := range src {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) && !math.IsInf(series[i], 0) {
			return series[i]
		}
	}
	return 0
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
