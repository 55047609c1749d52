package market

// PriceLevel is one resting bid, price in cents.
type PriceLevel struct {
	Price int   `json:"price"`
	Size  int64 `json:"size"`
}

// OrderBook holds resting bids per side. Binary venues only publish bids; the
// ask of one side is implied by the best bid of the other.
type OrderBook struct {
	Ticker string       `json:"ticker"`
	Above  []PriceLevel `json:"above"`
	Below  []PriceLevel `json:"below"`
}

// Imbalance is (above-below)/(above+below) over total resting size, in [-1,1].
func (b OrderBook) Imbalance() (float64, bool) {
	above := totalSize(b.Above)
	below := totalSize(b.Below)
	total := above + below
	if total <= 0 {
		return 0, false
	}
	return float64(above-below) / float64(total), true
}

// BestAsk returns the implied ask for side, 0 when the opposite book is empty.
func (b OrderBook) BestAsk(side Side) int {
	var opposite []PriceLevel
	switch side {
	case SideAbove:
		opposite = b.Below
	case SideBelow:
		opposite = b.Above
	default:
		return 0
	}
	best := 0
	for _, lvl := range opposite {
		if lvl.Size > 0 && lvl.Price > best {
			best = lvl.Price
		}
	}
	if best <= 0 || best >= 100 {
		return 0
	}
	return 100 - best
}

func totalSize(levels []PriceLevel) int64 {
	var sum int64
	for _, lvl := range levels {
		if lvl.Size > 0 {
			sum += lvl.Size
		}
	}
	return sum
}
