// Package filtermetrics exposes Prometheus metrics for the compile,
// attach, and reattach paths filterd drives.
package filtermetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CompilesTotal: total predicate compilations (Counter)
	// Labels: backend, result (ok, error, too_long)
	CompilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterd_compiles_total",
			Help: "Total number of predicate-to-program compilations",
		},
		[]string{"backend", "result"},
	)

	// CompileDuration: compile latency (Histogram)
	// Labels: backend
	CompileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filterd_compile_duration_seconds",
			Help:    "Time spent lowering a predicate to an instruction program",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"backend"},
	)

	// ProgramInstructions: compiled program size (Histogram)
	// Labels: backend
	ProgramInstructions = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filterd_program_instructions",
			Help:    "Instruction count of a compiled program",
			Buckets: []float64{4, 8, 16, 32, 64, 128, 256, 512, 1024, 4096},
		},
		[]string{"backend"},
	)

	// AttachesTotal: attach attempts (Counter)
	// Labels: backend, result (ok, kernel_rejected, attach_failed)
	AttachesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterd_attaches_total",
			Help: "Total number of program attach attempts",
		},
		[]string{"backend", "result"},
	)

	// ReattachesTotal: reattach attempts driven by registry updates (Counter)
	// Labels: filter, result (ok, throttled, error)
	ReattachesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterd_reattaches_total",
			Help: "Total number of recompile-and-reattach cycles triggered by registry updates",
		},
		[]string{"filter", "result"},
	)

	// ActiveFilters: filters currently attached (Gauge)
	ActiveFilters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterd_active_filters",
			Help: "Number of filters currently attached to a socket",
		},
	)
)

// RecordCompile records the outcome and cost of a compilation.
func RecordCompile(backend, result string, durationSeconds float64, instructions int) {
	CompilesTotal.WithLabelValues(backend, result).Inc()
	CompileDuration.WithLabelValues(backend).Observe(durationSeconds)
	if result == "ok" {
		ProgramInstructions.WithLabelValues(backend).Observe(float64(instructions))
	}
}

// RecordAttach records the outcome of an attach attempt.
func RecordAttach(backend, result string) {
	AttachesTotal.WithLabelValues(backend, result).Inc()
}

// RecordReattach records the outcome of a registry-triggered reattach cycle.
func RecordReattach(filter, result string) {
	ReattachesTotal.WithLabelValues(filter, result).Inc()
}
