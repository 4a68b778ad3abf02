// Package metrics registers the Prometheus counters the session
// service reports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Logins counts successful credential exchanges by platform.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sessiond",
		Name:      "logins_total",
		Help:      "Successful logins by platform.",
	}, []string{"platform"})

	// Refreshes counts successful refresh-token rotations.
	Refreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sessiond",
		Name:      "refreshes_total",
		Help:      "Successful refresh token rotations.",
	})

	// SessionsRevoked counts sessions removed by logout, logout-all,
	// quota eviction, and expiry sweeps.
	SessionsRevoked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sessiond",
		Name:      "sessions_revoked_total",
		Help:      "Sessions revoked, by reason.",
	}, []string{"reason"})

	// AuthFailures counts rejected logins, refreshes, and bearer
	// tokens. Deliberately unlabelled beyond the operation so the
	// metric leaks nothing about why a given credential failed.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sessiond",
		Name:      "auth_failures_total",
		Help:      "Authentication failures by operation.",
	}, []string{"operation"})
)
