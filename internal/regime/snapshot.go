package regime

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SubComponentScore is one scored sub-indicator inside a component.
type SubComponentScore struct {
	Name     string  `json:"name"`
	RawValue float64 `json:"value"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Degraded bool    `json:"degraded,omitempty"`
}

// ComponentScore is the weighted roll-up of a component's sub-indicators.
type ComponentScore struct {
	Name           string              `json:"name"`
	Score          float64             `json:"score"`
	Weight         float64             `json:"weight"`
	Interpretation string              `json:"interpretation"`
	SubComponents  []SubComponentScore `json:"sub_components"`
	Degraded       bool                `json:"degraded,omitempty"`
}

// BreakdownEntry is the per-component slice of the snapshot document.
type BreakdownEntry struct {
	RawScore       float64 `json:"raw_score"`
	Weight         float64 `json:"weight"`
	Interpretation string  `json:"interpretation"`
}

// SubDocument is a sub-indicator entry inside the snapshot document.
type SubDocument struct {
	Value  float64 `json:"value"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// ComponentDocument is a component entry inside the snapshot document.
type ComponentDocument struct {
	Score      float64                `json:"score"`
	Components map[string]SubDocument `json:"components"`
}

// Snapshot is the immutable record of one scoring run. Its JSON form is
// the canonical persisted document; every scoring cycle produces a brand
// new snapshot and never mutates the previous one.
type Snapshot struct {
	ID                     string                       `json:"id"`
	TotalScore             float64                      `json:"total_score"`
	Classification         Classification               `json:"regime_classification"`
	StrategyRecommendation string                       `json:"strategy_recommendation"`
	StrategyDescription    string                       `json:"strategy_description,omitempty"`
	Instrument             string                       `json:"instrument"`
	RiskAllocation         string                       `json:"risk_allocation"`
	ComponentBreakdown     map[string]BreakdownEntry    `json:"component_breakdown"`
	ComponentScores        map[string]ComponentDocument `json:"component_scores"`
	Timestamp              time.Time                    `json:"timestamp"`
}

// ComponentScoreValue resolves a component name to its score.
func (s *Snapshot) ComponentScoreValue(name string) (float64, bool) {
	if doc, ok := s.ComponentScores[name]; ok {
		return doc.Score, true
	}
	return 0, false
}

// SubComponentRaw resolves a sub-indicator name to its raw reading value,
// searching every component. Sub-indicator names are unique by
// convention; the first match wins.
func (s *Snapshot) SubComponentRaw(name string) (float64, bool) {
	for _, component := range ComponentNames {
		doc, ok := s.ComponentScores[component]
		if !ok {
			continue
		}
		if sub, ok := doc.Components[name]; ok {
			return sub.Value, true
		}
	}
	return 0, false
}

// Render produces the plain-text regime report for CLI output.
func (s *Snapshot) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "MARKET REGIME SCORE REPORT  %s\n\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total regime score: %.1f/100\n", s.TotalScore)
	fmt.Fprintf(&b, "Classification:     %s\n\n", s.Classification)
	fmt.Fprintf(&b, "Strategy:        %s\n", s.StrategyRecommendation)
	if s.StrategyDescription != "" {
		fmt.Fprintf(&b, "Description:     %s\n", s.StrategyDescription)
	}
	fmt.Fprintf(&b, "Instrument:      %s\n", s.Instrument)
	fmt.Fprintf(&b, "Risk allocation: %s\n\n", s.RiskAllocation)

	b.WriteString("Component breakdown:\n")
	names := make([]string, 0, len(s.ComponentBreakdown))
	for name := range s.ComponentBreakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := s.ComponentBreakdown[name]
		fmt.Fprintf(&b, "  %-15s %5.1f/100 x %.2f  %s\n",
			name, entry.RawScore, entry.Weight, entry.Interpretation)
	}

	return b.String()
}

// Tier is one strategy rule as the aggregator sees it: enough to pick a
// recommendation without pulling in the full playbook machinery.
type Tier struct {
	Name           string
	Description    string
	ScoreThreshold float64
	RiskAllocation string
	Instruments    []string
}

// SelectStrategy picks the tier whose threshold is the highest one not
// exceeding the total score. Ties break on declaration order (first
// wins). When no threshold qualifies the lowest-threshold tier is used
// so that a recommendation is always produced.
func SelectStrategy(total float64, tiers []Tier) (Tier, bool) {
	if len(tiers) == 0 {
		return Tier{}, false
	}

	best := -1
	lowest := 0
	for i, tier := range tiers {
		if tier.ScoreThreshold < tiers[lowest].ScoreThreshold {
			lowest = i
		}
		if tier.ScoreThreshold > total {
			continue
		}
		if best == -1 || tier.ScoreThreshold > tiers[best].ScoreThreshold {
			best = i
		}
	}

	if best == -1 {
		return tiers[lowest], true
	}
	return tiers[best], true
}

// SelectInstrument picks the recommended instrument for a tier. Above a
// total score of 70 the first configured high-beta instrument declared
// by the tier is preferred; otherwise the tier's first instrument is
// used. The rule is driven entirely by declared configuration, never by
// iteration order.
func SelectInstrument(total float64, tier Tier, highBeta []string) string {
	if len(tier.Instruments) == 0 {
		return ""
	}

	if total > 70 {
		for _, candidate := range highBeta {
			for _, instrument := range tier.Instruments {
				if strings.EqualFold(instrument, candidate) {
					return instrument
				}
			}
		}
	}

	return tier.Instruments[0]
}
