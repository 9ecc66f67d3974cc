package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus collectors.
// A nil *MetricsManager is valid and records nothing.
type MetricsManager struct {
	Registry *prometheus.Registry

	ListingsCreatedTotal     prometheus.Counter
	ListingsUpdatedTotal     prometheus.Counter
	ListingsDeactivatedTotal prometheus.Counter
	ImagesUploadedTotal      prometheus.Counter
	EnquiriesTotal           prometheus.Counter
	NotificationsTotal       *prometheus.CounterVec
	HTTPRequestsTotal        *prometheus.CounterVec
	HTTPRequestLatency       *prometheus.HistogramVec
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		ListingsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of listings created.",
		}),
		ListingsUpdatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_updated_total",
			Help:      "Total number of listing updates.",
		}),
		ListingsDeactivatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_deactivated_total",
			Help:      "Total number of deactivation requests.",
		}),
		ImagesUploadedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_uploaded_total",
			Help:      "Total number of uploaded listing images.",
		}),
		EnquiriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enquiries_total",
			Help:      "Total number of buyer enquiries.",
		}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Telegram notifications by event type and result.",
		}, []string{"event", "result"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.ListingsCreatedTotal,
		m.ListingsUpdatedTotal,
		m.ListingsDeactivatedTotal,
		m.ImagesUploadedTotal,
		m.EnquiriesTotal,
		m.NotificationsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *MetricsManager) ListingCreated() {
	if m != nil {
		m.ListingsCreatedTotal.Inc()
	}
}

func (m *MetricsManager) ListingUpdated() {
	if m != nil {
		m.ListingsUpdatedTotal.Inc()
	}
}

func (m *MetricsManager) ListingDeactivated() {
	if m != nil {
		m.ListingsDeactivatedTotal.Inc()
	}
}

func (m *MetricsManager) ImageUploaded() {
	if m != nil {
		m.ImagesUploadedTotal.Inc()
	}
}

func (m *MetricsManager) EnquiryReceived() {
	if m != nil {
		m.EnquiriesTotal.Inc()
	}
}

func (m *MetricsManager) NotificationSent(event string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.NotificationsTotal.WithLabelValues(event, result).Inc()
}

func (m *MetricsManager) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
