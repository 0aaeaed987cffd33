// Package metrics holds the hub's Prometheus collectors, registered on the
// default registry and served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OneClickRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "panel_oneclick_runs_total",
		Help: "Completed one-click start batch passes.",
	})

	UserTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_oneclick_user_tasks_total",
		Help: "Per-user one-click tasks by outcome.",
	}, []string{"outcome"})

	RateLimitDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "panel_ratelimit_denials_total",
		Help: "Token bucket acquisitions that exhausted their wait budget.",
	}, []string{"scope"})

	ThrottledRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "panel_http_throttled_requests_total",
		Help: "Inbound API requests rejected with 429.",
	})
)
