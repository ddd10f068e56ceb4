package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tierlist_votes_total",
			Help: "Vote writes by outcome.",
		},
		[]string{"result"}, // created, updated, removed, conflict
	)

	PushNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tierlist_push_notifications_total",
			Help: "Push deliveries by outcome.",
		},
		[]string{"result"}, // sent, skipped, gone, failed
	)

	LeaderboardCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tierlist_leaderboard_cache_total",
			Help: "Leaderboard cache lookups by outcome.",
		},
		[]string{"result"}, // hit, miss
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tierlist_auth_logins_total",
			Help: "Login attempts by method and outcome.",
		},
		[]string{"method", "result"},
	)
)

var registerOnce sync.Once

// MustRegister registers every collector with the default registry once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			VotesTotal,
			PushNotificationsTotal,
			LeaderboardCacheTotal,
			AuthLoginsTotal,
		)
	})
}
