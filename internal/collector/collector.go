package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"MarketAnalytics/internal/model"

	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// MockFetcher returns deterministic synthetic closes for development and testing.
type MockFetcher struct {
	Price  float64
	Days   int
	Series map[string]model.PriceSeries // fixed data per symbol, takes precedence
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCloses(_ context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	if s, ok := m.Series[symbol]; ok {
		return s.Between(start, end), nil
	}
	days := m.Days
	if days <= 0 {
		days = 120
	}
	base := m.Price
	if base <= 0 {
		base = 100
	}
	if end.IsZero() {
		end = dayOf(time.Now())
	}
	points := make([]model.Point, 0, days)
	for i := days; i > 0; i-- {
		t := end.AddDate(0, 0, -i)
		if !start.IsZero() && t.Before(start) {
			continue
		}
		// gentle trend with a weekly wobble, offset per symbol
		wobble := float64((i+len(symbol))%7-3) * 0.002
		p := base * (1 + float64(days-i)*0.001 + wobble)
		points = append(points, model.Point{Time: t, Value: model.Float(p)})
	}
	return model.NewPriceSeries(symbol, points)
}

// Collector fetches the price history of a set of symbols.
type Collector struct {
	Fetcher Fetcher
	log     zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		log:     log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// CollectAll fetches every symbol over [start, end). The first failure aborts the
// collection, since a comparison missing an asset is not useful downstream.
func (c *Collector) CollectAll(ctx context.Context, symbols []string, start, end time.Time) (map[string]model.PriceSeries, error) {
	out := make(map[string]model.PriceSeries, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := c.Fetcher.FetchCloses(ctx, sym, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", sym, err)
		}
		c.log.Debug().
			Str("symbol", sym).
			Int("points", s.Len()).
			Int("available", len(s.Available())).
			Msg("fetched closes")
		out[sym] = s
	}
	c.log.Info().Int("symbols", len(out)).Msg("collection complete")
	return out, nil
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// dayOf truncates t to midnight UTC of its calendar date.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dedupeDays keeps the last point of each day; feeds often repeat the current
// session as a live bar. Input must be sorted.
func dedupeDays(points []model.Point) []model.Point {
	out := make([]model.Point, 0, len(points))
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			if p.Value != nil {
				out[n-1] = p
			}
			continue
		}
		out = append(out, p)
	}
	return out
}
