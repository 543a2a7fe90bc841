// SPDX-License-Identifier: MIT

package synth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/phasegate/phasetable"
	"github.com/katalvlaran/phasegate/search"
)

// metrics is a per-run registry; nothing registers globally.
type metrics struct {
	registry *prometheus.Registry

	candidates   prometheus.Counter
	replacements prometheus.Counter
	rejected     prometheus.Counter
	products     prometheus.Counter
	tested       *prometheus.CounterVec

	stageSeconds *prometheus.HistogramVec

	found       prometheus.Gauge
	expected    prometheus.Gauge
	mismatches  *prometheus.GaugeVec
	bufferBytes prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &metrics{
		registry: reg,
		candidates: f.NewCounter(prometheus.CounterOpts{
			Name: "phasegate_candidates_total",
			Help: "Candidates offered to the phase table",
		}),
		replacements: f.NewCounter(prometheus.CounterOpts{
			Name: "phasegate_replacements_total",
			Help: "Bucket entries replaced by a better candidate",
		}),
		rejected: f.NewCounter(prometheus.CounterOpts{
			Name: "phasegate_rejected_total",
			Help: "Candidates that lost to a stored entry",
		}),
		products: f.NewCounter(prometheus.CounterOpts{
			Name: "phasegate_mitm_products_total",
			Help: "Prefix/suffix products formed by meet-in-the-middle",
		}),
		tested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "phasegate_completions_tested_total",
			Help: "Completion tests by search stage",
		}, []string{"stage"}),
		stageSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "phasegate_stage_duration_seconds",
			Help:    "Wall time of each search stage",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 12), // 1ms to ~70min
		}, []string{"stage"}),
		found: f.NewGauge(prometheus.GaugeOpts{
			Name: "phasegate_buckets_found",
			Help: "Canonical buckets holding an entry",
		}),
		expected: f.NewGauge(prometheus.GaugeOpts{
			Name: "phasegate_buckets_expected",
			Help: "Canonical buckets (points/8)",
		}),
		mismatches: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "phasegate_verification_mismatches",
			Help: "Verification mismatches by pass",
		}, []string{"pass"}),
		bufferBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "phasegate_buffer_bytes",
			Help: "Approximate matrix buffer footprint",
		}),
	}
}

func (m *metrics) observeStage(st search.Stats, elapsed time.Duration) {
	name := string(st.Stage)
	m.tested.WithLabelValues(name).Add(float64(st.Tested))
	m.stageSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
	if st.Stage == search.StageMeetInTheMiddle {
		m.products.Add(float64(st.Products))
	}
}

func (m *metrics) observeTable(tab *phasetable.Table) {
	m.candidates.Add(float64(tab.Candidates()))
	m.replacements.Add(float64(tab.Replacements()))
	m.rejected.Add(float64(tab.Rejected()))
	m.found.Set(float64(tab.Found()))
	m.expected.Set(float64(tab.PhaseCount()))
}
