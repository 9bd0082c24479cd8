package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/macrointel/macrointel/internal/config"
	"github.com/macrointel/macrointel/internal/metrics"
	"github.com/macrointel/macrointel/internal/persistence"
	"github.com/macrointel/macrointel/internal/pipeline"
	"github.com/macrointel/macrointel/internal/playbook"
	"github.com/macrointel/macrointel/internal/provider"
	"github.com/macrointel/macrointel/internal/regime"
)

// buildPipeline assembles the scoring pipeline from configured paths.
// Missing config files fall back to the built-in defaults; a missing
// readings file is an error because there is nothing to score.
func buildPipeline(cfg config.AppConfig, m *metrics.Registry, repos persistence.Repository, logger zerolog.Logger) (*pipeline.Pipeline, error) {
	weights := regime.NewWeightsLoader()
	if fileExists(cfg.WeightsPath) {
		if err := weights.LoadFromFile(cfg.WeightsPath); err != nil {
			return nil, fmt.Errorf("failed to load component weights: %w", err)
		}
	} else {
		if err := weights.LoadDefault(); err != nil {
			return nil, fmt.Errorf("failed to load default weights: %w", err)
		}
	}

	table, err := loadTable(cfg.PlaybookPath)
	if err != nil {
		return nil, err
	}

	source, err := provider.FromFile("readings-file", cfg.ReadingsPath)
	if err != nil {
		return nil, err
	}
	guarded := provider.NewGuard(source, provider.DefaultGuardConfig(), m, logger)

	return pipeline.New(pipeline.Options{
		Providers:  provider.NewRegistry(logger, guarded),
		Aggregator: regime.NewAggregator(weights, logger),
		Table:      table,
		Metrics:    m,
		Repo:       repos.Snapshots,
		Cache:      repos.Cache,
		Logger:     logger,
	}), nil
}

func loadTable(path string) (*playbook.Table, error) {
	if fileExists(path) {
		table, err := playbook.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load playbook: %w", err)
		}
		return table, nil
	}
	return playbook.DefaultTable(), nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
