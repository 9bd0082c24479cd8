// Package metrics exposes Prometheus instrumentation for the scoring
// pipeline, the playbook evaluator and the condition gate.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"
)

// Registry holds all Prometheus metrics for MacroIntel.
type Registry struct {
	registry *prometheus.Registry

	// Scoring pipeline
	ScoringDuration *prometheus.HistogramVec
	ScoringCycles   *prometheus.CounterVec
	TotalScore      prometheus.Gauge
	Classification  *prometheus.GaugeVec
	ComponentScores *prometheus.GaugeVec
	DegradedSubs    *prometheus.GaugeVec

	// Playbook evaluation
	ViableStrategies prometheus.Gauge
	Disqualifiers    prometheus.Gauge

	// Condition gate
	ConditionEvals *prometheus.CounterVec

	// Cache performance
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	CacheHitRatio prometheus.Gauge

	// Reading providers
	ProviderErrors *prometheus.CounterVec
}

// NewRegistry creates a registry with all MacroIntel metrics registered
// on a private Prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		ScoringDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrointel_scoring_duration_seconds",
				Help:    "Duration of each scoring pipeline step in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"step", "result"},
		),

		ScoringCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrointel_scoring_cycles_total",
				Help: "Total number of scoring cycles by result",
			},
			[]string{"result"},
		),

		TotalScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "macrointel_total_score",
				Help: "Latest composite regime score (0-100)",
			},
		),

		Classification: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "macrointel_regime_classification",
				Help: "Current regime classification (1 for the active band, 0 otherwise)",
			},
			[]string{"classification"},
		),

		ComponentScores: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "macrointel_component_score",
				Help: "Latest per-component regime score (0-100)",
			},
			[]string{"component"},
		),

		DegradedSubs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "macrointel_component_degraded",
				Help: "Whether a component is running on partial or no data (1) or fully fed (0)",
			},
			[]string{"component"},
		),

		ViableStrategies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "macrointel_viable_strategies",
				Help: "Number of viable strategies in the latest playbook report",
			},
		),

		Disqualifiers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "macrointel_disqualifiers",
				Help: "Number of market disqualifiers in effect",
			},
		),

		ConditionEvals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrointel_condition_evaluations_total",
				Help: "Total condition evaluations by boolean result",
			},
			[]string{"result"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrointel_cache_hits_total",
				Help: "Total cache hits by cache type",
			},
			[]string{"cache_type"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrointel_cache_misses_total",
				Help: "Total cache misses by cache type",
			},
			[]string{"cache_type"},
		),

		CacheHitRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "macrointel_cache_hit_ratio",
				Help: "Current cache hit ratio (0.0 to 1.0)",
			},
		),

		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrointel_provider_errors_total",
				Help: "Total reading provider failures by provider and error type",
			},
			[]string{"provider", "error_type"},
		),
	}

	r.registry.MustRegister(
		r.ScoringDuration,
		r.ScoringCycles,
		r.TotalScore,
		r.Classification,
		r.ComponentScores,
		r.DegradedSubs,
		r.ViableStrategies,
		r.Disqualifiers,
		r.ConditionEvals,
		r.CacheHits,
		r.CacheMisses,
		r.CacheHitRatio,
		r.ProviderErrors,
	)

	return r
}

// Handler serves the registry in Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// StepTimer tracks execution time of one pipeline step.
type StepTimer struct {
	metrics *Registry
	step    string
	start   time.Time
}

// StartStepTimer begins timing a pipeline step.
func (r *Registry) StartStepTimer(step string) *StepTimer {
	return &StepTimer{
		metrics: r,
		step:    step,
		start:   time.Now(),
	}
}

// Stop completes the timing and records the observation.
func (st *StepTimer) Stop(result string) {
	duration := time.Since(st.start)
	st.metrics.ScoringDuration.WithLabelValues(st.step, result).Observe(duration.Seconds())

	log.Debug().
		Str("step", st.step).
		Str("result", result).
		Dur("duration", duration).
		Msg("pipeline step completed")
}

// SetClassification marks the active classification band and zeroes the
// rest, so dashboards can plot band transitions.
func (r *Registry) SetClassification(active string, all []string) {
	for _, c := range all {
		v := 0.0
		if c == active {
			v = 1.0
		}
		r.Classification.WithLabelValues(c).Set(v)
	}
}

// RecordCycle counts one scoring cycle outcome.
func (r *Registry) RecordCycle(result string) {
	r.ScoringCycles.WithLabelValues(result).Inc()
}

// RecordCondition counts one condition evaluation.
func (r *Registry) RecordCondition(result bool) {
	if result {
		r.ConditionEvals.WithLabelValues("true").Inc()
	} else {
		r.ConditionEvals.WithLabelValues("false").Inc()
	}
}

// RecordCacheHit records a cache hit for the given cache type.
func (r *Registry) RecordCacheHit(cacheType string) {
	r.CacheHits.WithLabelValues(cacheType).Inc()
	r.updateCacheHitRatio()
}

// RecordCacheMiss records a cache miss for the given cache type.
func (r *Registry) RecordCacheMiss(cacheType string) {
	r.CacheMisses.WithLabelValues(cacheType).Inc()
	r.updateCacheHitRatio()
}

// RecordProviderError counts a reading provider failure.
func (r *Registry) RecordProviderError(provider, errorType string) {
	r.ProviderErrors.WithLabelValues(provider, errorType).Inc()
	log.Warn().
		Str("provider", provider).
		Str("error_type", errorType).
		Msg("provider error recorded")
}

// cacheTypes tracked for the aggregate hit ratio.
var cacheTypes = []string{"snapshot_latest"}

func (r *Registry) updateCacheHitRatio() {
	hitMetric := &dto.Metric{}
	missMetric := &dto.Metric{}

	totalHits := 0.0
	totalMisses := 0.0

	for _, cacheType := range cacheTypes {
		if hits, err := r.CacheHits.GetMetricWithLabelValues(cacheType); err == nil {
			if err := hits.Write(hitMetric); err == nil {
				totalHits += hitMetric.GetCounter().GetValue()
			}
		}
		if misses, err := r.CacheMisses.GetMetricWithLabelValues(cacheType); err == nil {
			if err := misses.Write(missMetric); err == nil {
				totalMisses += missMetric.GetCounter().GetValue()
			}
		}
	}

	if total := totalHits + totalMisses; total > 0 {
		r.CacheHitRatio.Set(totalHits / total)
	}
}
