package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "housepricer", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "housepricer", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "housepricer", Name: "predictions_total", Help: "Predictions by outcome."},
		[]string{"outcome"}, // outcome: ok|unavailable|error
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "housepricer", Name: "cache_events_total", Help: "Prediction cache hits/misses/sets/errors."},
		[]string{"cache", "event"},
	)
	ModelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "housepricer", Name: "model_loaded", Help: "1 when a trained artifact is loaded."},
	)
)

// InitRegistry returns a fresh registry holding the service collectors.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, Predictions, CacheEvents, ModelLoaded)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObservePrediction(outcome string) { // outcome: ok|unavailable|error
	Predictions.WithLabelValues(outcome).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set|error
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func SetModelLoaded(ok bool) {
	if ok {
		ModelLoaded.Set(1)
		return
	}
	ModelLoaded.Set(0)
}
