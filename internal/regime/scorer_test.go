package regime

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAggregator(t *testing.T) *Aggregator {
	t.Helper()
	wl := NewWeightsLoader()
	require.NoError(t, wl.LoadDefault())
	return NewAggregator(wl, zerolog.Nop())
}

func testTiers() []Tier {
	return []Tier{
		{Name: "Tier 1", ScoreThreshold: 80, RiskAllocation: "5%", Instruments: []string{"MES", "MNQ"}},
		{Name: "Tier 2", ScoreThreshold: 60, RiskAllocation: "10%", Instruments: []string{"MES", "MNQ"}},
		{Name: "Tier 3", ScoreThreshold: 40, RiskAllocation: "15%", Instruments: []string{"MES", "MYM"}},
		{Name: "Tier 4", ScoreThreshold: 20, RiskAllocation: "10%", Instruments: []string{"MYM"}},
		{Name: "Tier 5", ScoreThreshold: 0, RiskAllocation: "5%", Instruments: []string{"MYM"}},
	}
}

func nominalReadings(now time.Time) ReadingSet {
	rs := ReadingSet{}
	for name, value := range map[string]float64{
		ReadingVIXLevel:        22,
		ReadingTermStructure:   0,
		ReadingATR:             3.0,
		ReadingADX:             27,
		ReadingBBSqueeze:       0.5,
		ReadingFailedBreakouts: 2.5,
		ReadingVolumeSpikes:    1.4,
		ReadingADDivergence:    0,
		ReadingMcClellan:       0,
		ReadingPutCallRatio:    1.0,
		ReadingRSIDivergence:   0,
		ReadingMACDHistogram:   0,
		ReadingOscillator:      0.5,
		ReadingSmartMoneyFlow:  0,
		ReadingOptionsFlow:     0,
		ReadingInstSentiment:   0.5,
	} {
		rs.Put(Reading{Name: name, Value: value, AsOf: now})
	}
	return rs
}

func TestAggregateNominal(t *testing.T) {
	a := testAggregator(t)
	now := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)

	snapshot, err := a.Aggregate(AggregateInput{
		Readings: nominalReadings(now),
		Tiers:    testTiers(),
		HighBeta: []string{"MNQ", "M2K"},
		Now:      now,
	})
	require.NoError(t, err)

	// Mid-band readings across the board land the composite near 50.
	assert.InDelta(t, 49.7, snapshot.TotalScore, 0.01)
	assert.Equal(t, Neutral, snapshot.Classification)
	assert.Equal(t, "Tier 3", snapshot.StrategyRecommendation)
	assert.Equal(t, "MES", snapshot.Instrument)
	assert.Equal(t, "15%", snapshot.RiskAllocation)
	assert.Equal(t, now, snapshot.Timestamp)
	assert.NotEmpty(t, snapshot.ID)

	assert.Len(t, snapshot.ComponentBreakdown, 5)
	assert.Len(t, snapshot.ComponentScores, 5)
	for _, name := range ComponentNames {
		entry, ok := snapshot.ComponentBreakdown[name]
		require.True(t, ok, "missing breakdown for %s", name)
		assert.NotEmpty(t, entry.Interpretation)
		assert.Greater(t, entry.Weight, 0.0)
	}
}

func TestAggregateNoReadings(t *testing.T) {
	a := testAggregator(t)

	_, err := a.Aggregate(AggregateInput{Readings: ReadingSet{}, Tiers: testTiers()})
	assert.ErrorIs(t, err, ErrNoReadings)
}

func TestAggregateSingleReading(t *testing.T) {
	a := testAggregator(t)
	rs := ReadingSet{}
	rs.Put(Reading{Name: ReadingVIXLevel, Value: 32})

	snapshot, err := a.Aggregate(AggregateInput{Readings: rs, Tiers: testTiers()})
	require.NoError(t, err)

	// Four components are fully degraded (score 50); volatility rides
	// entirely on the VIX reading after renormalization.
	assert.InDelta(t, 100.0, snapshot.ComponentScores[ComponentVolatility].Score, 0.001)
	for _, name := range []string{ComponentStructure, ComponentVolumeBreadth, ComponentMomentum, ComponentInstitutional} {
		assert.InDelta(t, 50.0, snapshot.ComponentScores[name].Score, 0.001)
		assert.Contains(t, snapshot.ComponentBreakdown[name].Interpretation, "degraded")
	}
}

func TestScoreSubComponentAbsent(t *testing.T) {
	a := testAggregator(t)
	def := SubIndicatorDef{Name: ReadingATR, Weight: 0.3, Bands: BandTable{
		Cuts: []float64{1.5}, Scores: []float64{20, 80},
	}}

	sub := a.ScoreSubComponent(ReadingSet{}, def)
	assert.True(t, sub.Degraded)
	assert.Equal(t, 50.0, sub.Score)
	assert.Equal(t, 0.3, sub.Weight)
}

func TestScoreComponentPartialDegradation(t *testing.T) {
	a := testAggregator(t)
	def := DefaultComponents()[0] // volatility

	rs := ReadingSet{}
	rs.Put(Reading{Name: ReadingVIXLevel, Value: 22}) // 60
	rs.Put(Reading{Name: ReadingATR, Value: 3.0})     // 60

	cs := a.ScoreComponent(def, rs)
	assert.False(t, cs.Degraded)
	// term_structure weight (0.3) redistributed over vix (0.4) and atr (0.3).
	assert.InDelta(t, 60.0, cs.Score, 0.001)
	assert.Contains(t, cs.Interpretation, "partially degraded")
	assert.Contains(t, cs.Interpretation, ReadingTermStructure)
}

func TestScoreComponentAllMissing(t *testing.T) {
	a := testAggregator(t)
	def := DefaultComponents()[3] // momentum

	cs := a.ScoreComponent(def, ReadingSet{})
	assert.True(t, cs.Degraded)
	assert.Equal(t, 50.0, cs.Score)
	assert.Contains(t, cs.Interpretation, "degraded")
	assert.Len(t, cs.SubComponents, 3)
}

func TestSelectStrategy(t *testing.T) {
	tiers := testTiers()

	tests := []struct {
		name     string
		total    float64
		expected string
	}{
		{"top of scale", 95, "Tier 1"},
		{"threshold is inclusive", 80, "Tier 1"},
		{"just below threshold", 79.99, "Tier 2"},
		{"mid scale", 50, "Tier 3"},
		{"floor", 0, "Tier 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, ok := SelectStrategy(tt.total, tiers)
			require.True(t, ok)
			assert.Equal(t, tt.expected, tier.Name)
		})
	}
}

func TestSelectStrategyDeclarationOrderTieBreak(t *testing.T) {
	tiers := []Tier{
		{Name: "first", ScoreThreshold: 40},
		{Name: "second", ScoreThreshold: 40},
	}
	tier, ok := SelectStrategy(55, tiers)
	require.True(t, ok)
	assert.Equal(t, "first", tier.Name)
}

func TestSelectStrategyNoQualifyingThreshold(t *testing.T) {
	tiers := []Tier{
		{Name: "high", ScoreThreshold: 60},
		{Name: "low", ScoreThreshold: 30},
	}
	tier, ok := SelectStrategy(10, tiers)
	require.True(t, ok)
	assert.Equal(t, "low", tier.Name)

	_, ok = SelectStrategy(10, nil)
	assert.False(t, ok)
}

func TestSelectInstrument(t *testing.T) {
	tier := Tier{Name: "Tier 2", Instruments: []string{"MES", "MNQ"}}
	highBeta := []string{"MNQ", "M2K"}

	assert.Equal(t, "MNQ", SelectInstrument(75, tier, highBeta))
	assert.Equal(t, "MES", SelectInstrument(50, tier, highBeta))
	assert.Equal(t, "MES", SelectInstrument(70, tier, highBeta), "rule is strictly above 70")

	noBeta := Tier{Name: "Tier 4", Instruments: []string{"MYM"}}
	assert.Equal(t, "MYM", SelectInstrument(90, noBeta, highBeta))

	assert.Equal(t, "", SelectInstrument(90, Tier{}, highBeta))
}
