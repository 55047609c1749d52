package market

// RecentVolatilityPct is the high-low range of the last window candles as a
// percentage of price.
func RecentVolatilityPct(candles []Candle, window int, price float64) (float64, bool) {
	if len(candles) == 0 || price <= 0 || window <= 0 {
		return 0, false
	}
	if window > len(candles) {
		window = len(candles)
	}
	recent := candles[len(candles)-window:]
	hi, lo := recent[0].High, recent[0].Low
	for _, c := range recent[1:] {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	if hi <= 0 || lo <= 0 || hi < lo {
		return 0, false
	}
	return (hi - lo) / price * 100, true
}
