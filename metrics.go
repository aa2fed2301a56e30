package roomcast

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a lifecycle Observer exporting room and membership gauges.
// Subscribe it to an adapter and scrape the registerer it was built with.
type Metrics struct {
	rooms       prometheus.Gauge
	memberships prometheus.Gauge
	joins       prometheus.Counter
	leaves      prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roomcast_rooms",
			Help: "Number of rooms that currently have members.",
		}),
		memberships: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roomcast_memberships",
			Help: "Number of (room, socket) membership edges.",
		}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomcast_joins_total",
			Help: "Total room joins.",
		}),
		leaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roomcast_leaves_total",
			Help: "Total room leaves.",
		}),
	}
	reg.MustRegister(m.rooms, m.memberships, m.joins, m.leaves)
	return m
}

func (m *Metrics) RoomCreated(room string) {
	m.rooms.Inc()
}

func (m *Metrics) RoomDeleted(room string) {
	m.rooms.Dec()
}

func (m *Metrics) SocketJoined(room, sid string) {
	m.memberships.Inc()
	m.joins.Inc()
}

func (m *Metrics) SocketLeft(room, sid string) {
	m.memberships.Dec()
	m.leaves.Inc()
}
