package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messaging_messages_sent_total",
		Help: "Messages persisted, by conversation type.",
	}, []string{"conversation_type"})

	RoomsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messaging_rooms_broadcast_total",
		Help: "Room deliveries attempted by the fan-out dispatcher.",
	})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "messaging_ws_connections",
		Help: "Currently open websocket connections.",
	})
)

// Handler returns the scrape handler; it is served on its own listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
