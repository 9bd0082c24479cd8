package provider

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/macrointel/macrointel/internal/regime"
)

// Registry holds the configured providers in precedence order: a
// reading published by a later provider overrides the same name from an
// earlier one.
type Registry struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewRegistry builds a registry over the given providers.
func NewRegistry(logger zerolog.Logger, providers ...Provider) *Registry {
	return &Registry{
		providers: providers,
		logger:    logger.With().Str("component", "providers").Logger(),
	}
}

// Collect gathers one cycle's readings across every provider. A failed
// provider contributes nothing; the merged set may therefore be partial
// or even empty, which the caller handles as degradation.
func (r *Registry) Collect(ctx context.Context) regime.ReadingSet {
	merged := regime.ReadingSet{}

	for _, p := range r.providers {
		readings, err := p.Fetch(ctx)
		if err != nil {
			r.logger.Warn().Str("provider", p.Name()).Err(err).Msg("provider skipped this cycle")
			continue
		}
		merged.Merge(readings)
		r.logger.Debug().
			Str("provider", p.Name()).
			Int("readings", len(readings)).
			Msg("provider readings merged")
	}

	return merged
}
