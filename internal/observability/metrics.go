package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	uploadRequests     *prometheus.CounterVec
	uploadRejected     *prometheus.CounterVec
	submissionsGraded  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fisikaku_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fisikaku_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fisikaku_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fisikaku_notifications_published_total",
			Help: "Total number of notifications published, by type.",
		}, []string{"type"})

		uploadRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fisikaku_upload_requests_total",
			Help: "Total number of accepted content uploads, by block type.",
		}, []string{"type"})

		uploadRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fisikaku_upload_rejected_total",
			Help: "Total number of rejected content uploads, by reason.",
		}, []string{"reason"})

		submissionsGraded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fisikaku_submissions_graded_total",
			Help: "Total number of submissions reaching the graded state.",
		}, []string{"assessment"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			notificationsTotal,
			uploadRequests,
			uploadRejected,
			submissionsGraded,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// NotificationsPublishedTotal exposes the counter for published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// UploadRequests exposes the counter for accepted uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequests
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejected
}

// SubmissionsGradedTotal exposes the counter for graded submissions.
func SubmissionsGradedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsGraded
}
