package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrointel/macrointel/internal/regime"
)

type countingReporter struct {
	errors map[string]int
}

func (c *countingReporter) RecordProviderError(provider, errorType string) {
	if c.errors == nil {
		c.errors = map[string]int{}
	}
	c.errors[provider+"/"+errorType]++
}

func fastGuardConfig() GuardConfig {
	cfg := DefaultGuardConfig()
	cfg.RPS = 1000
	cfg.Burst = 1000
	cfg.MaxRetries = 1
	cfg.InitialBackoff = time.Millisecond
	return cfg
}

func TestRegistryMergePrecedence(t *testing.T) {
	first := NewStatic("primary", regime.ReadingSet{
		regime.ReadingVIXLevel:  {Name: regime.ReadingVIXLevel, Value: 20},
		regime.ReadingFearGreed: {Name: regime.ReadingFearGreed, Value: 55},
	})
	second := NewStatic("override", regime.ReadingSet{
		regime.ReadingVIXLevel: {Name: regime.ReadingVIXLevel, Value: 28},
	})

	r := NewRegistry(zerolog.Nop(), first, second)
	readings := r.Collect(context.Background())

	require.Len(t, readings, 2)
	assert.Equal(t, 28.0, readings[regime.ReadingVIXLevel].Value, "later provider wins")
	assert.Equal(t, 55.0, readings[regime.ReadingFearGreed].Value)
}

func TestRegistryToleratesFailure(t *testing.T) {
	healthy := NewStatic("healthy", regime.ReadingSet{
		regime.ReadingATR: {Name: regime.ReadingATR, Value: 2.8},
	})
	broken := NewFailing("broken", errors.New("upstream down"))

	r := NewRegistry(zerolog.Nop(), broken, healthy)
	readings := r.Collect(context.Background())

	require.Len(t, readings, 1)
	assert.Equal(t, 2.8, readings[regime.ReadingATR].Value)
}

func TestGuardPassesThrough(t *testing.T) {
	inner := NewStatic("ok", regime.ReadingSet{
		regime.ReadingADX: {Name: regime.ReadingADX, Value: 31},
	})
	g := NewGuard(inner, fastGuardConfig(), nil, zerolog.Nop())

	readings, err := g.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 31.0, readings[regime.ReadingADX].Value)
}

func TestGuardReportsFailure(t *testing.T) {
	reporter := &countingReporter{}
	g := NewGuard(NewFailing("flaky", errors.New("boom")), fastGuardConfig(), reporter, zerolog.Nop())

	_, err := g.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, reporter.errors["flaky/fetch_error"])
}

func TestGuardOpensCircuit(t *testing.T) {
	cfg := fastGuardConfig()
	cfg.ConsecutiveFailures = 2
	cfg.MaxRetries = 0
	g := NewGuard(NewFailing("down", errors.New("boom")), cfg, nil, zerolog.Nop())

	ctx := context.Background()
	_, _ = g.Fetch(ctx)
	_, _ = g.Fetch(ctx)

	// Breaker is now open; failures become fast rejections.
	_, err := g.Fetch(ctx)
	require.Error(t, err)
}

func TestFromFile(t *testing.T) {
	content := `[
		{"name": "vix_level", "value": 24.5},
		{"name": "fear_greed", "value": 38, "as_of": "2026-08-25T09:00:00Z"}
	]`
	path := filepath.Join(t.TempDir(), "readings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := FromFile("fixture", path)
	require.NoError(t, err)

	readings, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 24.5, readings[regime.ReadingVIXLevel].Value)
	assert.False(t, readings[regime.ReadingVIXLevel].AsOf.IsZero())
	assert.Equal(t, time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC), readings[regime.ReadingFearGreed].AsOf.UTC())
}

func TestFromFileErrors(t *testing.T) {
	_, err := FromFile("fixture", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = FromFile("fixture", path)
	assert.Error(t, err)
}
