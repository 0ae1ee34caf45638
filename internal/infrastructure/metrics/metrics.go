package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines our Prometheus metrics
type Metrics struct {
	ActiveRooms      prometheus.Gauge
	ConnectedClients prometheus.Gauge
	GamesStarted     prometheus.Counter
	GamesFinished    prometheus.Counter
	Guesses          *prometheus.CounterVec
	InboundEvents    *prometheus.CounterVec
	QuizQuestions    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "asocijacije",
			Name:      "active_rooms",
			Help:      "Number of rooms currently resident in memory.",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "asocijacije",
			Name:      "connected_clients",
			Help:      "Number of open websocket connections.",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asocijacije",
			Name:      "games_started_total",
			Help:      "Games that entered the first secret phase.",
		}),
		GamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asocijacije",
			Name:      "games_finished_total",
			Help:      "Games that reached game over.",
		}),
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asocijacije",
			Name:      "guesses_total",
			Help:      "Guess submissions by outcome.",
		}, []string{"outcome"}),
		InboundEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asocijacije",
			Name:      "inbound_events_total",
			Help:      "Inbound websocket events by type.",
		}, []string{"type"}),
		QuizQuestions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "asocijacije",
			Name:      "quiz_questions_total",
			Help:      "Quiz questions asked.",
		}),
	}

	reg.MustRegister(
		m.ActiveRooms,
		m.ConnectedClients,
		m.GamesStarted,
		m.GamesFinished,
		m.Guesses,
		m.InboundEvents,
		m.QuizQuestions,
	)

	return m
}

// NewNop returns metrics backed by an isolated registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
