// Package pipeline wires providers, scoring, playbook evaluation and
// persistence into the run loop the CLI, scheduler and HTTP API share.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/macrointel/macrointel/internal/conditions"
	"github.com/macrointel/macrointel/internal/metrics"
	"github.com/macrointel/macrointel/internal/persistence"
	"github.com/macrointel/macrointel/internal/playbook"
	"github.com/macrointel/macrointel/internal/provider"
	"github.com/macrointel/macrointel/internal/regime"
)

const latestCacheType = "snapshot_latest"

// Pipeline owns one scoring cycle end to end.
type Pipeline struct {
	providers  *provider.Registry
	aggregator *regime.Aggregator
	table      *playbook.Table
	evaluator  *playbook.Evaluator
	gate       *conditions.Evaluator
	repo       persistence.SnapshotRepo
	cache      persistence.LatestCache
	metrics    *metrics.Registry
	logger     zerolog.Logger
}

// Options carries the pipeline's collaborators. Repo and Cache may be
// nil when persistence is disabled.
type Options struct {
	Providers  *provider.Registry
	Aggregator *regime.Aggregator
	Table      *playbook.Table
	Metrics    *metrics.Registry
	Repo       persistence.SnapshotRepo
	Cache      persistence.LatestCache
	Logger     zerolog.Logger
}

// New assembles a pipeline. The rule table is injected once, already
// validated; evaluators never re-load it.
func New(opts Options) *Pipeline {
	return &Pipeline{
		providers:  opts.Providers,
		aggregator: opts.Aggregator,
		table:      opts.Table,
		evaluator:  playbook.NewEvaluator(opts.Table, opts.Logger),
		gate:       conditions.New(opts.Table.Tiers(), opts.Logger),
		repo:       opts.Repo,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		logger:     opts.Logger.With().Str("component", "pipeline").Logger(),
	}
}

// RunCycle executes one scoring cycle: collect readings, aggregate,
// evaluate the playbook and persist the snapshot. Persistence failures
// are logged but do not void the cycle; the snapshot is still returned.
func (p *Pipeline) RunCycle(ctx context.Context) (*regime.Snapshot, *playbook.Report, error) {
	timer := p.metrics.StartStepTimer("collect")
	readings := p.providers.Collect(ctx)
	timer.Stop("success")

	timer = p.metrics.StartStepTimer("aggregate")
	snapshot, err := p.aggregator.Aggregate(regime.AggregateInput{
		Readings: readings,
		Tiers:    p.table.Tiers(),
		HighBeta: p.table.Defaults.HighBetaInstruments,
	})
	if err != nil {
		timer.Stop("error")
		p.metrics.RecordCycle("error")
		return nil, nil, fmt.Errorf("scoring cycle failed: %w", err)
	}
	timer.Stop("success")

	p.observeSnapshot(snapshot)

	report := p.evaluator.Evaluate(playbook.FromReadings(readings))
	p.metrics.ViableStrategies.Set(float64(len(report.Selected)))
	p.metrics.Disqualifiers.Set(float64(len(report.Disqualifiers)))

	p.persist(ctx, snapshot)
	p.metrics.RecordCycle("success")

	return snapshot, report, nil
}

// Latest returns the most recent snapshot, preferring the cache.
func (p *Pipeline) Latest(ctx context.Context) (*regime.Snapshot, error) {
	if p.cache != nil {
		snapshot, err := p.cache.Get(ctx)
		if err != nil {
			p.logger.Warn().Err(err).Msg("cache read failed, falling back to store")
		} else if snapshot != nil {
			p.metrics.RecordCacheHit(latestCacheType)
			return snapshot, nil
		} else {
			p.metrics.RecordCacheMiss(latestCacheType)
		}
	}

	if p.repo == nil {
		return nil, nil
	}

	snapshot, err := p.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if snapshot != nil && p.cache != nil {
		if err := p.cache.Set(ctx, snapshot); err != nil {
			p.logger.Warn().Err(err).Msg("cache backfill failed")
		}
	}
	return snapshot, nil
}

// History returns stored snapshots within the window, newest first.
func (p *Pipeline) History(ctx context.Context, tr persistence.TimeRange) ([]regime.Snapshot, error) {
	if p.repo == nil {
		return nil, nil
	}
	return p.repo.ListRange(ctx, tr)
}

// CheckCondition gates an action on the latest snapshot. The boolean is
// always definite; with no snapshot available the gate is closed.
func (p *Pipeline) CheckCondition(ctx context.Context, condition string) bool {
	snapshot, err := p.Latest(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Str("condition", condition).Msg("latest snapshot unavailable, gate closed")
		p.metrics.RecordCondition(false)
		return false
	}

	result := p.gate.Evaluate(condition, snapshot)
	p.metrics.RecordCondition(result)
	p.logger.Debug().Str("condition", condition).Bool("result", result).Msg("condition gate evaluated")
	return result
}

// Table returns the injected rule table.
func (p *Pipeline) Table() *playbook.Table {
	return p.table
}

func (p *Pipeline) observeSnapshot(snapshot *regime.Snapshot) {
	p.metrics.TotalScore.Set(snapshot.TotalScore)

	bands := make([]string, len(regime.Classifications))
	for i, c := range regime.Classifications {
		bands[i] = string(c)
	}
	p.metrics.SetClassification(string(snapshot.Classification), bands)

	for name, doc := range snapshot.ComponentScores {
		p.metrics.ComponentScores.WithLabelValues(name).Set(doc.Score)

		// The breakdown interpretation carries the degradation marker.
		degraded := 0.0
		if entry, ok := snapshot.ComponentBreakdown[name]; ok && strings.Contains(entry.Interpretation, "degraded") {
			degraded = 1.0
		}
		p.metrics.DegradedSubs.WithLabelValues(name).Set(degraded)
	}
}

func (p *Pipeline) persist(ctx context.Context, snapshot *regime.Snapshot) {
	if p.repo != nil {
		if err := p.repo.Save(ctx, snapshot); err != nil {
			p.logger.Error().Err(err).Msg("snapshot save failed")
		}
	}
	if p.cache != nil {
		if err := p.cache.Set(ctx, snapshot); err != nil {
			p.logger.Warn().Err(err).Msg("snapshot cache update failed")
		}
	}
}
