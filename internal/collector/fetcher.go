package collector

import (
	"context"
	"time"

	"MarketAnalytics/internal/model"
)

// Fetcher loads daily closing prices for one symbol. Zero start or end leaves
// that side of the range to the data source's default.
type Fetcher interface {
	FetchCloses(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error)
	Name() string
}
