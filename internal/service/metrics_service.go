package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the dispatcher.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
	jobRuns           *prometheus.CounterVec
}

// NewMetricsService registers the dispatcher's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	notificationsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Delivery attempts by channel, notification type and outcome",
	}, []string{"channel", "type", "outcome"})

	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reminder_job_duration_seconds",
		Help:    "Duration of reminder job runs",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"job"})

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reminder_job_runs_total",
		Help: "Reminder job runs by outcome",
	}, []string{"job", "outcome"})

	registry.MustRegister(requestDuration, requestTotal, notificationsSent, jobDuration, jobRuns)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		notificationsSent: notificationsSent,
		jobDuration:       jobDuration,
		jobRuns:           jobRuns,
	}
}

// Handler exposes the /metrics endpoint handler.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one handled HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	statusLabel := http.StatusText(status)
	if statusLabel == "" {
		statusLabel = "unknown"
	}
	s.requestDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, statusLabel).Inc()
}

// ObserveSend records one delivery attempt.
func (s *MetricsService) ObserveSend(channel, notificationType string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	s.notificationsSent.WithLabelValues(channel, notificationType, outcome).Inc()
}

// ObserveJobRun records one reminder job run.
func (s *MetricsService) ObserveJobRun(job string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
	s.jobRuns.WithLabelValues(job, outcome).Inc()
}
