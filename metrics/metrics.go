package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ReportTransitionsTotal counts report status transitions
	ReportTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civiccase_report_transitions_total",
			Help: "Total number of report status transitions",
		},
		[]string{"from", "to"},
	)

	// IncidentTransitionsTotal counts incident status transitions
	IncidentTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civiccase_incident_transitions_total",
			Help: "Total number of incident status transitions",
		},
		[]string{"from", "to"},
	)

	// AnomalousTransitionsTotal counts incident transitions that walk the
	// investigation backwards and were flagged for audit
	AnomalousTransitionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "civiccase_anomalous_incident_transitions_total",
			Help: "Total number of incident status regressions flagged for audit",
		},
	)

	// ConversionsTotal counts report-to-incident conversions by outcome
	ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civiccase_conversions_total",
			Help: "Total number of report-to-incident conversion attempts",
		},
		[]string{"result"}, // "ok", "partial_assignment", "failed"
	)

	// NotificationsTotal counts dispatched notifications by type and result
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civiccase_notifications_total",
			Help: "Total number of notification dispatch attempts",
		},
		[]string{"type", "result"},
	)

	// AvailableOfficers tracks the number of officers by duty status
	AvailableOfficers = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "civiccase_officers_by_status",
			Help: "Number of officers by duty status",
		},
		[]string{"status"},
	)
)

// Init registers the prometheus metrics
func Init() {
	prometheus.MustRegister(ReportTransitionsTotal)
	prometheus.MustRegister(IncidentTransitionsTotal)
	prometheus.MustRegister(AnomalousTransitionsTotal)
	prometheus.MustRegister(ConversionsTotal)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(AvailableOfficers)
}

// Handler returns the HTTP handler for the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
