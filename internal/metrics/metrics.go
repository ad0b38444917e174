// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reliefdesk"

// Registry holds every reliefdesk collector plus the Go runtime collectors
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	ClaimsSubmitted = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claims_submitted_total",
		Help:      "Claims lodged, by case type.",
	}, []string{"case_type"})

	StatusTransitions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Claim status transitions, by target status and result.",
	}, []string{"status", "result"})

	VerificationRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_runs_total",
		Help:      "Verification sequencer runs, by outcome.",
	}, []string{"outcome"})

	StepDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "verification_step_seconds",
		Help:      "Duration of each verification step.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 3, 5, 10, 30},
	}, []string{"step", "status"})

	Disbursements = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "disbursements_total",
		Help:      "Disbursement attempts, by result.",
	}, []string{"result"})

	AssistantMessages = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assistant_messages_total",
		Help:      "Legal-assistant replies, by source (provider, fallback).",
	}, []string{"source"})

	AIThrottled = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_throttled_total",
		Help:      "AI calls that had to wait for a rate-limit token, by provider.",
	}, []string{"provider"})

	GrievancesLodged = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grievances_lodged_total",
		Help:      "Grievance tickets lodged.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
