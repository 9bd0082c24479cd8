package playbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/macrointel/macrointel/internal/regime"
)

// ConfigError reports an invalid playbook configuration. It is the only
// error class allowed to abort process startup; runtime evaluation
// faults are contained per strategy instead.
type ConfigError struct {
	Strategy string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Strategy != "" {
		return fmt.Sprintf("playbook config: strategy %q: %s", e.Strategy, e.Reason)
	}
	return "playbook config: " + e.Reason
}

// Condition categories a strategy may declare. The set is closed; an
// unknown category is a load-time error rather than a silent no-op.
var allowedCategories = map[string]bool{
	"volatility_environment":    true,
	"market_structure":          true,
	"volume_breadth":            true,
	"momentum_indicators":       true,
	"institutional_positioning": true,
}

// Conditions is the viability rule block of one strategy. Pointer fields
// distinguish "bound not declared" from "bound is zero".
type Conditions struct {
	VIXMax             *float64                     `yaml:"vix_max"`
	VIXMin             *float64                     `yaml:"vix_min"`
	FearGreedMin       *float64                     `yaml:"fear_greed_min"`
	FearGreedMax       *float64                     `yaml:"fear_greed_max"`
	VolatilityRequired bool                         `yaml:"volatility_required"`
	MomentumRequired   bool                         `yaml:"momentum_required"`
	Categories         map[string]map[string]string `yaml:"categories"`
}

// Strategy is one validated rule-table entry.
type Strategy struct {
	Name           string     `yaml:"-"`
	Description    string     `yaml:"description"`
	ScoreThreshold *float64   `yaml:"regime_score_threshold"`
	RiskAllocation string     `yaml:"risk_allocation"`
	Instruments    []string   `yaml:"instruments"`
	Conditions     Conditions `yaml:"conditions"`
}

// Defaults carries table-wide settings.
type Defaults struct {
	HighBetaInstruments []string `yaml:"high_beta_instruments"`
	RiskAllocation      string   `yaml:"risk_allocation"`
}

// Table is the validated, immutable rule table. It is built once at
// process start and injected into every consumer; a reload constructs a
// whole new table rather than mutating this one.
type Table struct {
	Version     string
	LastUpdated string
	Strategies  []Strategy
	Defaults    Defaults
	Metadata    map[string]string
}

// Load reads and validates a playbook file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("cannot read %s: %v", path, err)}
	}
	return Parse(data)
}

// Parse validates a playbook document. Strategy declaration order is
// preserved; it is the tie-break order for threshold selection.
func Parse(data []byte) (*Table, error) {
	var doc struct {
		Version     string            `yaml:"version"`
		LastUpdated string            `yaml:"last_updated"`
		Strategies  yaml.Node         `yaml:"strategies"`
		Defaults    *Defaults         `yaml:"defaults"`
		Metadata    map[string]string `yaml:"metadata"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}

	if doc.Version == "" {
		return nil, &ConfigError{Reason: "missing required key: version"}
	}
	if doc.Defaults == nil {
		return nil, &ConfigError{Reason: "missing required key: defaults"}
	}
	if doc.Strategies.Kind != yaml.MappingNode || len(doc.Strategies.Content) == 0 {
		return nil, &ConfigError{Reason: "strategies section must be a non-empty mapping"}
	}

	table := &Table{
		Version:     doc.Version,
		LastUpdated: doc.LastUpdated,
		Defaults:    *doc.Defaults,
		Metadata:    doc.Metadata,
	}

	// Mapping nodes store alternating key/value children.
	for i := 0; i+1 < len(doc.Strategies.Content); i += 2 {
		name := doc.Strategies.Content[i].Value
		var s Strategy
		if err := doc.Strategies.Content[i+1].Decode(&s); err != nil {
			return nil, &ConfigError{Strategy: name, Reason: fmt.Sprintf("invalid entry: %v", err)}
		}
		s.Name = name
		if err := validateStrategy(&s); err != nil {
			return nil, err
		}
		table.Strategies = append(table.Strategies, s)
	}

	return table, nil
}

func validateStrategy(s *Strategy) error {
	if s.Description == "" {
		return &ConfigError{Strategy: s.Name, Reason: "missing required field: description"}
	}
	if s.ScoreThreshold == nil {
		return &ConfigError{Strategy: s.Name, Reason: "missing required field: regime_score_threshold"}
	}
	if *s.ScoreThreshold < 0 || *s.ScoreThreshold > 100 {
		return &ConfigError{Strategy: s.Name, Reason: fmt.Sprintf("regime_score_threshold must be 0-100, got %.1f", *s.ScoreThreshold)}
	}
	if s.RiskAllocation == "" {
		return &ConfigError{Strategy: s.Name, Reason: "missing required field: risk_allocation"}
	}
	if len(s.Instruments) == 0 {
		return &ConfigError{Strategy: s.Name, Reason: "missing required field: instruments"}
	}
	for category := range s.Conditions.Categories {
		if !allowedCategories[category] {
			return &ConfigError{Strategy: s.Name, Reason: fmt.Sprintf("unknown condition category: %s", category)}
		}
	}
	return nil
}

// Strategy returns the named entry. The error lists what is available so
// a typo in a caller is immediately diagnosable.
func (t *Table) Strategy(name string) (Strategy, error) {
	for _, s := range t.Strategies {
		if s.Name == name {
			return s, nil
		}
	}
	return Strategy{}, &ConfigError{
		Strategy: name,
		Reason:   fmt.Sprintf("not found, available: %s", strings.Join(t.Names(), ", ")),
	}
}

// Names lists strategy names in declaration order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Strategies))
	for i, s := range t.Strategies {
		names[i] = s.Name
	}
	return names
}

// Has reports whether a strategy is declared.
func (t *Table) Has(name string) bool {
	_, err := t.Strategy(name)
	return err == nil
}

// Tiers converts the table into the aggregator's strategy view,
// preserving declaration order.
func (t *Table) Tiers() []regime.Tier {
	tiers := make([]regime.Tier, len(t.Strategies))
	for i, s := range t.Strategies {
		tiers[i] = regime.Tier{
			Name:           s.Name,
			Description:    s.Description,
			ScoreThreshold: *s.ScoreThreshold,
			RiskAllocation: s.RiskAllocation,
			Instruments:    s.Instruments,
		}
	}
	return tiers
}

// DefaultPath returns the default playbook file location.
func DefaultPath() string {
	return filepath.Join("config", "playbook.yaml")
}

func threshold(v float64) *float64 { return &v }

// DefaultTable returns the built-in Playbook v7.1 rule table, used when
// no playbook file is configured.
func DefaultTable() *Table {
	return &Table{
		Version:     "7.1",
		LastUpdated: "2026-08-01",
		Defaults: Defaults{
			HighBetaInstruments: []string{"MNQ", "M2K"},
			RiskAllocation:      "5%",
		},
		Strategies: []Strategy{
			{
				Name:           "Tier 1 Reversal Ignition",
				Description:    "High-probability reversal setups in volatile conditions",
				ScoreThreshold: threshold(80),
				RiskAllocation: "5%",
				Instruments:    []string{"MES", "MNQ"},
				Conditions: Conditions{
					VIXMax:             threshold(25),
					FearGreedMin:       threshold(20),
					FearGreedMax:       threshold(80),
					VolatilityRequired: true,
				},
			},
			{
				Name:           "Tier 2 Momentum Reload",
				Description:    "Momentum continuation in stable market conditions",
				ScoreThreshold: threshold(60),
				RiskAllocation: "10%",
				Instruments:    []string{"MES", "MNQ"},
				Conditions: Conditions{
					VIXMax:           threshold(20),
					FearGreedMin:     threshold(30),
					FearGreedMax:     threshold(70),
					MomentumRequired: true,
				},
			},
			{
				Name:           "Tier 3 Breakout Acceleration",
				Description:    "Breakout plays in low volatility, trending markets",
				ScoreThreshold: threshold(40),
				RiskAllocation: "15%",
				Instruments:    []string{"MES", "MNQ", "MYM"},
				Conditions: Conditions{
					VIXMax:           threshold(18),
					FearGreedMin:     threshold(40),
					FearGreedMax:     threshold(60),
					MomentumRequired: true,
				},
			},
			{
				Name:           "Tier 4 Mean Reversion",
				Description:    "Mean reversion plays in extreme conditions",
				ScoreThreshold: threshold(20),
				RiskAllocation: "10%",
				Instruments:    []string{"MES", "MYM"},
				Conditions: Conditions{
					VIXMax:             threshold(30),
					FearGreedMin:       threshold(10),
					FearGreedMax:       threshold(90),
					VolatilityRequired: true,
				},
			},
			{
				Name:           "Tier 5 Defensive Hedge",
				Description:    "Defensive strategies in high fear/volatility",
				ScoreThreshold: threshold(0),
				RiskAllocation: "5%",
				Instruments:    []string{"MYM", "M2K"},
				Conditions: Conditions{
					VIXMin:             threshold(25),
					FearGreedMax:       threshold(30),
					VolatilityRequired: true,
				},
			},
		},
	}
}
