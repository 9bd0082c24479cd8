package regime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotJSONRoundTrip(t *testing.T) {
	wl := NewWeightsLoader()
	require.NoError(t, wl.LoadDefault())
	a := NewAggregator(wl, zerolog.Nop())

	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	original, err := a.Aggregate(AggregateInput{
		Readings: nominalReadings(now),
		Tiers:    testTiers(),
		HighBeta: []string{"MNQ"},
		Now:      now,
	})
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	// The wire format is the canonical document shape.
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{
		"total_score", "regime_classification", "strategy_recommendation",
		"instrument", "risk_allocation", "component_breakdown",
		"component_scores", "timestamp",
	} {
		assert.Contains(t, doc, key)
	}

	var restored Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, original.TotalScore, restored.TotalScore)
	assert.Equal(t, original.Classification, restored.Classification)
	assert.Equal(t, original.ComponentBreakdown, restored.ComponentBreakdown)
	assert.Equal(t, original.ComponentScores, restored.ComponentScores)
	assert.True(t, original.Timestamp.Equal(restored.Timestamp))
}

func TestSnapshotFieldResolution(t *testing.T) {
	s := &Snapshot{
		TotalScore: 72,
		ComponentScores: map[string]ComponentDocument{
			ComponentVolatility: {
				Score: 65,
				Components: map[string]SubDocument{
					ReadingVIXLevel: {Value: 24.5, Score: 60, Weight: 0.4},
				},
			},
		},
	}

	score, ok := s.ComponentScoreValue(ComponentVolatility)
	require.True(t, ok)
	assert.Equal(t, 65.0, score)

	_, ok = s.ComponentScoreValue("no_such_component")
	assert.False(t, ok)

	raw, ok := s.SubComponentRaw(ReadingVIXLevel)
	require.True(t, ok)
	assert.Equal(t, 24.5, raw)

	_, ok = s.SubComponentRaw("no_such_indicator")
	assert.False(t, ok)
}

func TestSnapshotRender(t *testing.T) {
	s := &Snapshot{
		TotalScore:             49.7,
		Classification:         Neutral,
		StrategyRecommendation: "Tier 3",
		Instrument:             "MES",
		RiskAllocation:         "15%",
		ComponentBreakdown: map[string]BreakdownEntry{
			ComponentVolatility: {RawScore: 54, Weight: 0.25, Interpretation: "Normal volatility conditions"},
		},
		Timestamp: time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC),
	}

	out := s.Render()
	assert.Contains(t, out, "49.7/100")
	assert.Contains(t, out, "Neutral")
	assert.Contains(t, out, "Tier 3")
	assert.Contains(t, out, "volatility")
	assert.Contains(t, out, "Normal volatility conditions")
}
