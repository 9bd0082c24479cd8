package regime

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoReadings is returned when a scoring cycle has no data at all.
// With zero readings there is nothing to anchor a snapshot to, so the
// cycle is skipped rather than producing an all-degraded document.
var ErrNoReadings = fmt.Errorf("no readings available for scoring cycle")

// Aggregator turns a set of raw indicator readings into a scored
// snapshot. It is stateless between calls; every Aggregate invocation
// produces a fresh snapshot.
type Aggregator struct {
	components []ComponentDef
	weights    *WeightsLoader
	logger     zerolog.Logger
}

// NewAggregator builds an aggregator over the built-in component
// definitions and the supplied weight table.
func NewAggregator(weights *WeightsLoader, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		components: DefaultComponents(),
		weights:    weights,
		logger:     logger.With().Str("component", "aggregator").Logger(),
	}
}

// ScoreSubComponent scores one sub-indicator from the reading set. An
// absent reading scores a neutral 50 and is flagged degraded; scoring
// never fails on missing data.
func (a *Aggregator) ScoreSubComponent(rs ReadingSet, def SubIndicatorDef) SubComponentScore {
	reading, ok := rs.Get(def.Name)
	if !ok {
		return SubComponentScore{
			Name:     def.Name,
			Score:    50,
			Weight:   def.Weight,
			Degraded: true,
		}
	}

	return SubComponentScore{
		Name:     def.Name,
		RawValue: reading.Value,
		Score:    def.Bands.Score(reading.Value),
		Weight:   def.Weight,
	}
}

// ScoreComponent rolls a component's sub-indicators into one weighted
// score. When some sub-indicators are missing their weight is
// redistributed across the ones present; when all are missing the
// component defaults to a neutral 50 and is flagged degraded.
func (a *Aggregator) ScoreComponent(def ComponentDef, rs ReadingSet) ComponentScore {
	weight, err := a.weights.Weight(def.Name)
	if err != nil {
		a.logger.Warn().Str("component", def.Name).Err(err).Msg("no weight configured, using 0")
	}

	subs := make([]SubComponentScore, 0, len(def.SubIndicators))
	presentWeight := 0.0
	weightedSum := 0.0
	var missing []string

	for _, subDef := range def.SubIndicators {
		sub := a.ScoreSubComponent(rs, subDef)
		subs = append(subs, sub)
		if sub.Degraded {
			missing = append(missing, sub.Name)
			continue
		}
		presentWeight += sub.Weight
		weightedSum += sub.Score * sub.Weight
	}

	if presentWeight == 0 {
		a.logger.Warn().Str("component", def.Name).Msg("all sub-indicators missing, defaulting to neutral")
		return ComponentScore{
			Name:           def.Name,
			Score:          50,
			Weight:         weight,
			Interpretation: fmt.Sprintf("%s (degraded: no %s data available)", def.Interpretation.For(50), def.Name),
			SubComponents:  subs,
			Degraded:       true,
		}
	}

	// Renormalize over the sub-indicators that actually reported.
	score := Clamp(weightedSum / presentWeight)
	interpretation := def.Interpretation.For(score)
	if len(missing) > 0 {
		interpretation = fmt.Sprintf("%s (partially degraded: missing %s)",
			interpretation, strings.Join(missing, ", "))
	}

	return ComponentScore{
		Name:           def.Name,
		Score:          score,
		Weight:         weight,
		Interpretation: interpretation,
		SubComponents:  subs,
	}
}

// AggregateInput carries everything one scoring cycle needs.
type AggregateInput struct {
	Readings ReadingSet
	Tiers    []Tier
	HighBeta []string
	Now      time.Time
}

// Aggregate runs a full scoring cycle: score every component, combine
// them with the configured top-level weights, classify the total and
// attach the strategy recommendation. The composite score stays within
// [0, 100] whenever weights validate, but is clamped regardless.
func (a *Aggregator) Aggregate(in AggregateInput) (*Snapshot, error) {
	if len(in.Readings) == 0 {
		return nil, ErrNoReadings
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	total := 0.0
	breakdown := make(map[string]BreakdownEntry, len(a.components))
	docs := make(map[string]ComponentDocument, len(a.components))

	for _, def := range a.components {
		cs := a.ScoreComponent(def, in.Readings)
		total += cs.Score * cs.Weight

		breakdown[cs.Name] = BreakdownEntry{
			RawScore:       cs.Score,
			Weight:         cs.Weight,
			Interpretation: cs.Interpretation,
		}

		subDocs := make(map[string]SubDocument, len(cs.SubComponents))
		for _, sub := range cs.SubComponents {
			subDocs[sub.Name] = SubDocument{
				Value:  sub.RawValue,
				Score:  sub.Score,
				Weight: sub.Weight,
			}
		}
		docs[cs.Name] = ComponentDocument{Score: cs.Score, Components: subDocs}

		a.logger.Debug().
			Str("component", cs.Name).
			Float64("score", cs.Score).
			Bool("degraded", cs.Degraded).
			Msg("component scored")
	}

	total = Clamp(total)

	snapshot := &Snapshot{
		ID:                 uuid.NewString(),
		TotalScore:         total,
		Classification:     Classify(total),
		ComponentBreakdown: breakdown,
		ComponentScores:    docs,
		Timestamp:          now,
	}

	if tier, ok := SelectStrategy(total, in.Tiers); ok {
		snapshot.StrategyRecommendation = tier.Name
		snapshot.StrategyDescription = tier.Description
		snapshot.RiskAllocation = tier.RiskAllocation
		snapshot.Instrument = SelectInstrument(total, tier, in.HighBeta)
	}

	a.logger.Info().
		Float64("total_score", total).
		Str("classification", string(snapshot.Classification)).
		Str("strategy", snapshot.StrategyRecommendation).
		Msg("regime snapshot produced")

	return snapshot, nil
}
