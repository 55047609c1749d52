package market

import "context"

// ReferenceSource supplies the reference spot price and its recent candles.
type ReferenceSource interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
	Candles(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
}

// VenueReader lists open instances of a series and their order books.
type VenueReader interface {
	ListMarkets(ctx context.Context, series string) ([]Instance, error)
	OrderBook(ctx context.Context, ticker string) (OrderBook, error)
}
