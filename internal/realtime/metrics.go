package realtime

import "github.com/prometheus/client_golang/prometheus"

var (
	activeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_active_connections",
			Help: "Number of open sync websocket connections",
		},
	)

	messagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_messages_received_total",
			Help: "Number of inbound protocol messages by type",
		},
		[]string{"type"},
	)

	broadcastsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_broadcasts_delivered_total",
			Help: "Number of character_updated frames queued for delivery",
		},
	)

	sendsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_sends_dropped_total",
			Help: "Number of outbound frames dropped because a connection buffer was full",
		},
	)
)

func init() {
	prometheus.MustRegister(activeConnections)
	prometheus.MustRegister(messagesReceived)
	prometheus.MustRegister(broadcastsDelivered)
	prometheus.MustRegister(sendsDropped)
}
