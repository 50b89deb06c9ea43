package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	loadDuration  *prometheus.HistogramVec
	loadFailures  *prometheus.CounterVec
	invalidations prometheus.Counter
}

func newMetrics(reg *prometheus.Registry, cacheEntries func() int) *metrics {
	m := &metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aidboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aidboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aidboard",
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent loading program extracts, cache hits included.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"scope"}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aidboard",
			Name:      "dataset_load_failures_total",
			Help:      "Failed program loads by scope.",
		}, []string{"scope"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aidboard",
			Name:      "cache_invalidations_total",
			Help:      "Cached datasets dropped because their extract changed.",
		}),
	}

	reg.MustRegister(
		m.requests,
		m.duration,
		m.loadDuration,
		m.loadFailures,
		m.invalidations,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "aidboard",
			Name:      "cache_entries",
			Help:      "Datasets held in the in-memory cache.",
		}, func() float64 { return float64(cacheEntries()) }),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// instrument wraps h with request counting and latency observation for route.
func (m *metrics) instrument(route string, h http.HandlerFunc) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerDuration(
		m.duration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), h),
	)
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
