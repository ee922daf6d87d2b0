// SPDX-License-Identifier: Apache-2.0

package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearrecordproj/clearrecord/internal/eligibility"
	"github.com/clearrecordproj/clearrecord/internal/metrics"
)

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveResult(eligibility.Result{Relief: []eligibility.ReliefResult{{ReliefType: "x"}}})
		m.ObserveEvaluateLatency(time.Millisecond)
		m.IncrementGeneration("dc", "record_sealing", true)
		m.IncrementRejection("invalid_case")
	})
}

func TestObserveResult(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveResult(eligibility.Result{
		Jurisdiction: "dc",
		Relief: []eligibility.ReliefResult{
			{ReliefType: "record_sealing", Verdict: eligibility.VerdictEligible},
			{ReliefType: "motion_expungement", Verdict: eligibility.VerdictIneligible},
		},
	})
	m.ObserveResult(eligibility.Result{
		Jurisdiction: "dc",
		Relief: []eligibility.ReliefResult{
			{ReliefType: "record_sealing", Verdict: eligibility.VerdictEligible},
		},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("dc", "record_sealing", "eligible")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("dc", "motion_expungement", "ineligible")))
}

func TestGenerationsAndRejections(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.IncrementGeneration("dc", "record_sealing", true)
	m.IncrementGeneration("dc", "record_sealing", false)
	m.IncrementGeneration("dc", "record_sealing", false)
	m.IncrementRejection("unknown_jurisdiction")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Generations.WithLabelValues("dc", "record_sealing", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Generations.WithLabelValues("dc", "record_sealing", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("unknown_jurisdiction")))
}

func TestNewRegistersInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveEvaluateLatency(2 * time.Millisecond)
	m.IncrementRejection("invalid_case")

	count, err := testutil.GatherAndCount(reg, "clearrecord_evaluate_duration_seconds", "clearrecord_rejected_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// a second registration on the same registry collides
	assert.Panics(t, func() { metrics.New(reg) })
}
