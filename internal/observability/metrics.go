package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	requestsTotal        *prometheus.CounterVec
	latencySeconds       *prometheus.HistogramVec
	errorsTotal          *prometheus.CounterVec
	lessonUnlocksTotal   *prometheus.CounterVec
	certificatesIssued   prometheus.Counter
	quizSubmissionsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillroute_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skillroute_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillroute_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		lessonUnlocksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillroute_lesson_unlocks_total",
			Help: "Lesson unlock transitions grouped by trigger mode.",
		}, []string{"mode"})

		certificatesIssued = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillroute_certificates_issued_total",
			Help: "Certificates issued on first passing quiz grade.",
		})

		quizSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillroute_quiz_submissions_total",
			Help: "Quiz submissions grouped by pass outcome.",
		}, []string{"passed"})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			lessonUnlocksTotal,
			certificatesIssued,
			quizSubmissionsTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// LessonUnlocks exposes the counter for lesson unlock transitions.
func LessonUnlocks() *prometheus.CounterVec {
	RegisterMetrics()
	return lessonUnlocksTotal
}

// CertificatesIssued exposes the certificate issuance counter.
func CertificatesIssued() prometheus.Counter {
	RegisterMetrics()
	return certificatesIssued
}

// QuizSubmissions exposes the quiz submission outcome counter.
func QuizSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return quizSubmissionsTotal
}
