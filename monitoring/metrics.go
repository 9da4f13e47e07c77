package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Total tickets created in this session",
		},
	)

	ticketsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tickets_by_status",
			Help: "Current ticket count per lifecycle status",
		},
		[]string{"status"},
	)

	webhookSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_sends_total",
			Help: "Outbound webhook sends by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	syncSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_signals_total",
			Help: "Cross-client sync signals by type and direction",
		},
		[]string{"type", "direction"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "PIN gate login attempts by result",
		},
		[]string{"result"},
	)

	proxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_requests_total",
			Help: "Proxy requests by action and upstream status class",
		},
		[]string{"action", "status_class"},
	)
)

// Monitor is a thin facade over the package metrics so services do not
// depend on prometheus directly.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) TrackTicketCreated() {
	ticketsCreated.Inc()
}

func (m *Monitor) TrackTicketStatus(status string, count int) {
	ticketsByStatus.WithLabelValues(status).Set(float64(count))
}

func (m *Monitor) TrackWebhookSend(action, outcome string) {
	webhookSends.WithLabelValues(action, outcome).Inc()
}

func (m *Monitor) TrackSyncSignal(signalType, direction string) {
	syncSignals.WithLabelValues(signalType, direction).Inc()
}

func (m *Monitor) TrackLoginAttempt(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

func (m *Monitor) TrackProxyRequest(action, statusClass string) {
	proxyRequests.WithLabelValues(action, statusClass).Inc()
}
