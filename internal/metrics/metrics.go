// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus instruments for evaluations and
// document generation. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/clearrecordproj/clearrecord/internal/eligibility"
)

type Metrics struct {
	// Verdicts per relief type
	Verdicts *prometheus.CounterVec

	EvaluateLatency prometheus.Histogram

	// Document generation results per relief type: "ok" or "failed"
	Generations *prometheus.CounterVec

	// Rejected inputs by kind: "invalid_case", "unknown_jurisdiction", ...
	Rejections *prometheus.CounterVec
}

// New registers the instruments with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clearrecord_verdicts_total",
			Help: "Relief verdicts by jurisdiction, relief type and verdict",
		}, []string{"jurisdiction", "relief_type", "verdict"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "clearrecord_evaluate_duration_seconds",
			Help:    "Duration of a single eligibility evaluation",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),

		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clearrecord_document_generations_total",
			Help: "Filing generation results by jurisdiction, relief type and result",
		}, []string{"jurisdiction", "relief_type", "result"}),

		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clearrecord_rejected_requests_total",
			Help: "Requests rejected before evaluation, by reason",
		}, []string{"reason"}),
	}
}

// ObserveResult counts every relief verdict in r.
func (m *Metrics) ObserveResult(r eligibility.Result) {
	if m == nil {
		return
	}
	for _, rr := range r.Relief {
		m.Verdicts.WithLabelValues(r.Jurisdiction, rr.ReliefType, string(rr.Verdict)).Inc()
	}
}

func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementGeneration(jurisdiction, reliefType string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.Generations.WithLabelValues(jurisdiction, reliefType, result).Inc()
}

func (m *Metrics) IncrementRejection(reason string) {
	if m != nil {
		m.Rejections.WithLabelValues(reason).Inc()
	}
}
