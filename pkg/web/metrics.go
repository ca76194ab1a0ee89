package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oora",
		Name:      "completions_total",
		Help:      "Completion requests issued by submit and regenerate, by outcome.",
	}, []string{"op", "outcome"})
	metricCompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "oora",
		Name:      "completion_duration_seconds",
		Help:      "Time spent in submit and regenerate, provider call included.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"op"})
	metricRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oora",
		Name:      "rejected_operations_total",
		Help:      "Operations rejected before any provider call.",
	}, []string{"reason"})
	metricActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "oora",
		Name:      "sessions_active",
		Help:      "Number of chat sessions held in memory.",
	})
)

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.refreshSessionGauge()
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) refreshSessionGauge() {
	metricActiveSessions.Set(float64(s.store.Len()))
}
