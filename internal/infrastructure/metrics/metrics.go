package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	eligibilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loan_pipeline",
			Subsystem: "eligibility",
			Name:      "checks_total",
			Help:      "Eligibility verdicts by result.",
		},
		[]string{"result"},
	)

	quotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loan_pipeline",
			Subsystem: "pricing",
			Name:      "quotes_total",
			Help:      "Soft quote outcomes.",
		},
		[]string{"outcome"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loan_pipeline",
			Subsystem: "status",
			Name:      "transitions_total",
			Help:      "Accepted status transitions by target status.",
		},
		[]string{"to"},
	)

	needsListItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loan_pipeline",
			Subsystem: "needs_list",
			Name:      "items_total",
			Help:      "Needs-list materialization results per item.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		eligibilityChecks,
		quotes,
		transitions,
		needsListItems,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordEligibility(eligible, bypassed bool) {
	switch {
	case bypassed:
		eligibilityChecks.WithLabelValues("bypassed").Inc()
	case eligible:
		eligibilityChecks.WithLabelValues("eligible").Inc()
	default:
		eligibilityChecks.WithLabelValues("ineligible").Inc()
	}
}

func RecordQuote(declined bool) {
	if declined {
		quotes.WithLabelValues("declined").Inc()
		return
	}
	quotes.WithLabelValues("issued").Inc()
}

func RecordTransition(to string) { transitions.WithLabelValues(to).Inc() }

func RecordNeedsList(inserted, existing, failed int) {
	needsListItems.WithLabelValues("inserted").Add(float64(inserted))
	needsListItems.WithLabelValues("existing").Add(float64(existing))
	needsListItems.WithLabelValues("failed").Add(float64(failed))
}
