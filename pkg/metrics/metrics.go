package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roster", Name: "auth_attempts_total", Help: "Login/registration submits by mode and outcome."},
		[]string{"mode", "outcome"},
	)
	RecordReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roster", Name: "record_reads_total", Help: "Point reads of student records by source (server, cache, failed)."},
		[]string{"source"},
	)
	ListingScans = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roster", Name: "listing_scans_total", Help: "Collection scans for the listing screen by result."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roster", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roster", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(RecordReads)
	reg.MustRegister(ListingScans)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
