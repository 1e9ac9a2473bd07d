package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "ev_reimbursement"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	calculations       *prometheus.CounterVec
	calculationLatency prometheus.Histogram

	spotPriceFetches *prometheus.CounterVec
	sessionsImported prometheus.Counter
	publishes        *prometheus.CounterVec
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		)
		calculations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Monthly reimbursement calculations by result",
			},
			[]string{"result"},
		)
		calculationLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "calculation_duration_seconds",
				Help:      "Monthly reimbursement calculation latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		)
		spotPriceFetches = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spot_price_fetches_total",
				Help:      "Upstream spot price requests by area and result",
			},
			[]string{"area", "result"},
		)
		sessionsImported = prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_imported_total",
				Help:      "Charging sessions stored from usage imports",
			},
		)
		publishes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reimbursements_published_total",
				Help:      "Reimbursement publications by publisher and result",
			},
			[]string{"publisher", "result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			calculations,
			calculationLatency,
			spotPriceFetches,
			sessionsImported,
			publishes,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

func ObserveHTTP(route, method string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}

func ObserveCalculation(err error, d time.Duration) {
	if calculations != nil {
		calculations.WithLabelValues(result(err)).Inc()
	}
	if calculationLatency != nil {
		calculationLatency.Observe(d.Seconds())
	}
}

func IncSpotPriceFetch(area string, err error) {
	if spotPriceFetches != nil {
		spotPriceFetches.WithLabelValues(area, result(err)).Inc()
	}
}

func AddSessionsImported(n int) {
	if n <= 0 {
		return
	}
	if sessionsImported != nil {
		sessionsImported.Add(float64(n))
	}
}

func IncPublish(publisher string, err error) {
	if publishes != nil {
		publishes.WithLabelValues(publisher, result(err)).Inc()
	}
}
