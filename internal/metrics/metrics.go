// Package metrics exposes Prometheus metrics for the analysis service.
//
//   - analytics_runs_total{result}                 runs by outcome (ok|error)
//   - analytics_run_duration_seconds               end-to-end run latency
//   - analytics_assets_analyzed                    assets in the latest successful run
//   - analytics_asset_issues_total{asset}          statistics that could not be computed
//   - analytics_http_requests_total{route,status}  API requests served
//
// Metrics are registered in init() on the default registry and served by Handler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_runs_total",
			Help: "Analysis runs by result",
		},
		[]string{"result"},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_run_duration_seconds",
			Help:    "Duration of analysis runs, including data collection.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	assetsAnalyzed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analytics_assets_analyzed",
			Help: "Number of assets in the latest successful run.",
		},
	)

	// one increment per statistic left empty for the asset
	assetIssues = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_asset_issues_total",
			Help: "Risk statistics that could not be computed, by asset.",
		},
		[]string{"asset"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_http_requests_total",
			Help: "HTTP API requests by route and status code.",
		},
		[]string{"route", "status"},
	)
)

func init() {
	prometheus.MustRegister(runsTotal, runDuration, assetsAnalyzed, assetIssues, httpRequests)
}

// ObserveRun records the outcome of one analysis run. assets is ignored for failed runs.
func ObserveRun(err error, elapsed time.Duration, assets int) {
	runDuration.Observe(elapsed.Seconds())
	if err != nil {
		runsTotal.WithLabelValues(ResultError).Inc()
		return
	}
	runsTotal.WithLabelValues(ResultOK).Inc()
	assetsAnalyzed.Set(float64(assets))
}

// AddAssetIssues counts n statistics that were left empty for asset.
func AddAssetIssues(asset string, n int) {
	if n > 0 {
		assetIssues.WithLabelValues(asset).Add(float64(n))
	}
}

// ObserveHTTP counts one served request.
func ObserveHTTP(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
