package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/cashledger/internal/domain"
)

const namespace = "cashledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	Operations       *prometheus.CounterVec
	Rejections       *prometheus.CounterVec
	TransferDuration prometheus.Histogram
	LockWait         prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting and idempotency metrics
	RateLimitHits     prometheus.Counter
	IdempotentReplays prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Committed ledger operations by kind",
			},
			[]string{"kind"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Rejected ledger requests by error kind",
			},
			[]string{"kind"},
		),
		TransferDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_duration_seconds",
			Help:      "Duration of committed transfers",
			Buckets:   prometheus.DefBuckets,
		}),
		LockWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "account_lock_wait_seconds",
			Help:      "Time spent waiting for account locks",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests refused by the rate limiter",
		}),
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Responses replayed for a repeated idempotency key",
		}),
	}
}

// OperationRecorded implements usecase.Recorder.
func (m *Metrics) OperationRecorded(kind string) {
	m.Operations.WithLabelValues(kind).Inc()
}

// RequestRejected implements usecase.Recorder.
func (m *Metrics) RequestRejected(kind domain.ErrorKind) {
	m.Rejections.WithLabelValues(string(kind)).Inc()
}

// ObserveTransfer implements usecase.Recorder.
func (m *Metrics) ObserveTransfer(d time.Duration) {
	m.TransferDuration.Observe(d.Seconds())
}

// ObserveLockWait implements usecase.Recorder.
func (m *Metrics) ObserveLockWait(d time.Duration) {
	m.LockWait.Observe(d.Seconds())
}
