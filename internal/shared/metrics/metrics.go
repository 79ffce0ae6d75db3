package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "housy"

var (
	registry = prometheus.NewRegistry()

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	photoUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photo_uploads_total",
		Help:      "Photo upload attempts by result.",
	}, []string{"result"})

	photoCompensationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photo_compensations_total",
		Help:      "Compensating deletes after failed photo persistence, by outcome.",
	}, []string{"outcome"})

	photoDeletesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photo_deletes_total",
		Help:      "Photo delete attempts by result.",
	}, []string{"result"})

	enrichmentRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichment_requests_total",
		Help:      "Calls to the AI enrichment service by result.",
	}, []string{"result"})

	eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Domain events handed to the queue, by type and result.",
	}, []string{"type", "result"})

	eventsConsumedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_consumed_total",
		Help:      "Domain events taken off the queue by the worker, by type and result.",
	}, []string{"type", "result"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		photoUploadsTotal,
		photoCompensationsTotal,
		photoDeletesTotal,
		enrichmentRequestsTotal,
		eventsPublishedTotal,
		eventsConsumedTotal,
	)
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncPhotoUpload counts an upload by result: success, upload_failed, persist_failed.
func IncPhotoUpload(result string) {
	photoUploadsTotal.WithLabelValues(result).Inc()
}

// IncPhotoCompensation counts a compensating delete by outcome: deleted, rejected, error.
func IncPhotoCompensation(outcome string) {
	photoCompensationsTotal.WithLabelValues(outcome).Inc()
}

func IncPhotoDelete(result string) {
	photoDeletesTotal.WithLabelValues(result).Inc()
}

func IncEnrichmentRequest(result string) {
	enrichmentRequestsTotal.WithLabelValues(result).Inc()
}

func IncEventPublished(eventType, result string) {
	eventsPublishedTotal.WithLabelValues(eventType, result).Inc()
}

// IncEventConsumed counts a consumed event by result: completed, ignored, failed, unrecoverable.
func IncEventConsumed(eventType, result string) {
	if eventType == "" {
		eventType = "unknown"
	}
	eventsConsumedTotal.WithLabelValues(eventType, result).Inc()
}

// Registry exposes the private registry for tests.
func Registry() *prometheus.Registry {
	return registry
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return gin.WrapH(h)
}
