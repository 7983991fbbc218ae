package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fgunited_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// OTPIssued counts one-time codes sent, labelled by flow (signup|reset) and
	// trigger (initial|resend).
	OTPIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fgunited_otp_issued_total",
			Help: "Total number of one-time codes issued",
		},
		[]string{"flow", "trigger"},
	)

	// OTPVerifications counts verification outcomes (success|mismatch|expired).
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fgunited_otp_verifications_total",
			Help: "Total number of one-time code verification attempts",
		},
		[]string{"flow", "result"},
	)

	// SignupsCompleted tracks accounts created through the verified signup flow.
	SignupsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fgunited_signups_completed_total",
			Help: "Total number of completed signups",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fgunited_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
