package pkg

import "github.com/prometheus/client_golang/prometheus"

var (
	SessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "game_server_sessions",
		Help: "A gauge of live player session connections.",
	})

	LobbyClientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "game_server_lobby_clients",
		Help: "A gauge of live lobby client connections.",
	})

	RoomsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "game_server_rooms",
		Help: "A gauge of open rooms in the registry.",
	})

	CardPlaysCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_server_card_plays_total",
		Help: "A counter of gameplay messages received from session players.",
	})

	BridgedPlaysCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_server_bridged_plays_total",
		Help: "A counter of card plays forwarded across the session-lobby bridge.",
	})

	RelayedMessagesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_server_relayed_messages_total",
		Help: "A counter of lobby relay commands delivered to session players.",
	})

	DroppedDeliveriesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_server_dropped_deliveries_total",
		Help: "A counter of outbound messages dropped on closed or backlogged connections.",
	})

	LobbyInFlightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "game_server_in_flight_requests",
		Help: "A gauge of requests being handled by the lobby server.",
	})

	LobbyRequestsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "game_server_requests_total",
		Help: "A counter for requests to the lobby server.",
	}, []string{"code", "method"})
)

func init() {
	prometheus.MustRegister(
		SessionsGauge,
		LobbyClientsGauge,
		RoomsGauge,
		CardPlaysCounter,
		BridgedPlaysCounter,
		RelayedMessagesCounter,
		DroppedDeliveriesCounter,
		LobbyInFlightGauge,
		LobbyRequestsCounter,
	)
}
