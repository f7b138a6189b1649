// Package metrics регистрирует метрики Prometheus сервисов оформления.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckoutSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "checkout_sessions_active",
			Help: "Number of checkout wizard sessions held in memory",
		},
	)

	CheckoutSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_submissions_total",
			Help: "Total number of checkout submissions by result",
		},
		[]string{"result"},
	)

	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_catalog_requests_total",
			Help: "Total number of plan catalog lookups by source",
		},
		[]string{"source"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_webhook_events_total",
			Help: "Total number of payment webhook events",
		},
		[]string{"type", "result"},
	)

	ProvisioningStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_provisioning_steps_total",
			Help: "Total number of post-payment provisioning steps",
		},
		[]string{"step", "result"},
	)

	PushNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_push_notifications_total",
			Help: "Total number of push notifications delivered",
		},
		[]string{"status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSubmission(result string) {
	CheckoutSubmissionsTotal.WithLabelValues(result).Inc()
}

func RecordCatalogRequest(source string) {
	CatalogRequestsTotal.WithLabelValues(source).Inc()
}

func RecordWebhookEvent(eventType, result string) {
	WebhookEventsTotal.WithLabelValues(eventType, result).Inc()
}

func RecordProvisioningStep(step, result string) {
	ProvisioningStepsTotal.WithLabelValues(step, result).Inc()
}

func RecordPushNotification(status string) {
	PushNotificationsTotal.WithLabelValues(status).Inc()
}

// Result переводит ошибку в метку результата.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
