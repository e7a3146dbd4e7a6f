// Package metrics регистрирует счетчики сервиса в реестре Prometheus по умолчанию
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matjib"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of listings returned by one search",
			Buckets:   []float64{0, 1, 5, 10, 30, 100, 300, 1000},
		},
	)

	RelayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_calls_total",
			Help:      "Recommendation relay calls by outcome",
		},
		[]string{"outcome"},
	)

	AnchorResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anchor_resolutions_total",
			Help:      "Commute anchor resolutions by result",
		},
		[]string{"ok"},
	)

	PhotoPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "photo_pool_size",
			Help:      "Size of the stock photo pool after filtering, 0 on failure",
			Buckets:   []float64{0, 1, 3, 10, 25, 50},
		},
	)

	DatasetListings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_listings",
			Help:      "Listings in the current dataset snapshot",
		},
	)

	DatasetReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset reload attempts by result",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Search sessions held in memory",
		},
	)
)

// Recorder - реализация port.MetricsPort поверх глобальных метрик
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (Recorder) SearchCompleted(resultCount int) {
	SearchResults.Observe(float64(resultCount))
}

func (Recorder) RelayCompleted(outcome string) {
	RelayCallsTotal.WithLabelValues(outcome).Inc()
}

func (Recorder) AnchorResolved(ok bool) {
	AnchorResolutionsTotal.WithLabelValues(strconv.FormatBool(ok)).Inc()
}

func (Recorder) PhotoLookupCompleted(poolSize int) {
	PhotoPoolSize.Observe(float64(poolSize))
}

// DatasetReloaded: при ошибке счетчик объявлений не трогаем, в памяти остался прежний снапшот
func (Recorder) DatasetReloaded(ok bool, listings int) {
	if !ok {
		DatasetReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	DatasetReloadsTotal.WithLabelValues("ok").Inc()
	DatasetListings.Set(float64(listings))
}

func (Recorder) ActiveSessionsChanged(active int) {
	ActiveSessions.Set(float64(active))
}
