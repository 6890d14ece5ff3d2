package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine holds the collectors the storage layer feeds: how often the
// ledger turned a buyer away, how much came back, and what the campaigns
// touched.
type Engine struct {
	ReservationConflicts prometheus.Counter
	ReservationsReleased prometheus.Counter
	OrdersCreated        prometheus.Counter
	CampaignOrders       *prometheus.CounterVec
}

func NewEngine() *Engine {
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orderengine",
		Subsystem: "ledger",
		Name:      "reservation_conflicts_total",
		Help:      "Reservations refused because stock was insufficient.",
	})
	released := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orderengine",
		Subsystem: "ledger",
		Name:      "reservations_released_total",
		Help:      "Orders whose reservations were credited back.",
	})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orderengine",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Orders created with stock reserved.",
	})
	campaign := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orderengine",
		Subsystem: "campaign",
		Name:      "orders_updated_total",
		Help:      "Orders updated per campaign pass.",
	}, []string{"campaign"})

	prometheus.MustRegister(conflicts, released, created, campaign)
	return &Engine{
		ReservationConflicts: conflicts,
		ReservationsReleased: released,
		OrdersCreated:        created,
		CampaignOrders:       campaign,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
