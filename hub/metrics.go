package hub

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fchub_rpc_requests_total",
			Help: "Hub RPCs issued by the client, by outcome",
		},
		[]string{"method", "outcome"},
	)

	rpcDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fchub_rpc_duration_seconds",
			Help:    "Hub RPC latency including the readiness wait",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method"},
	)

	submissionsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fchub_memory_submissions_total",
			Help: "Messages submitted to the in-memory hub, by message type and result",
		},
		[]string{"type", "result"},
	)
)

func observe(method string, start time.Time, err error) {
	rpcDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	rpcRequests.WithLabelValues(method, outcome(err)).Inc()
}

func outcome(err error) string {
	var rejected *RejectedError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.As(err, &rejected):
		return "rejected"
	default:
		return "error"
	}
}
