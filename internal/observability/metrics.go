package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReactionsTotal counts reaction toggles by target type and outcome.
	ReactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_reactions_total",
		Help: "Reaction toggles by target type and outcome",
	}, []string{"target_type", "outcome"})

	// NotificationsEmitted counts stored notifications by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_notifications_emitted_total",
		Help: "Notifications persisted by type",
	}, []string{"type"})

	// NotificationFailures counts notification deliveries that were dropped.
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_notification_failures_total",
		Help: "Notifications that could not be stored or published",
	}, []string{"stage"})

	// AdminActions counts audited privileged actions.
	AdminActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_admin_actions_total",
		Help: "Privileged actions written to the admin log",
	}, []string{"action"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_errors_total",
		Help: "Redis errors by operation",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_cache_lookups_total",
		Help: "Cache-aside lookups by key prefix and result",
	}, []string{"prefix", "result"})

	// WebSocketConnections is the number of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_websocket_connections",
		Help: "Open notification websocket connections",
	})

	// WebSocketDrops counts frames dropped because a client was too slow.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_drops_total",
		Help: "Websocket frames dropped by reason",
	}, []string{"reason"})
)
