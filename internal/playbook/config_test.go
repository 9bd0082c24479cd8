package playbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlaybook = `version: "7.1"
last_updated: "2026-08-01"
defaults:
  high_beta_instruments: [MNQ, M2K]
  risk_allocation: "5%"
strategies:
  Tier 1 Reversal Ignition:
    description: High-probability reversal setups in volatile conditions
    regime_score_threshold: 80
    risk_allocation: "5%"
    instruments: [MES, MNQ]
    conditions:
      vix_max: 25
      fear_greed_min: 20
      fear_greed_max: 80
      volatility_required: true
  Tier 5 Defensive Hedge:
    description: Defensive strategies in high fear/volatility
    regime_score_threshold: 0
    risk_allocation: "5%"
    instruments: [MYM]
    conditions:
      vix_min: 25
      fear_greed_max: 30
      volatility_required: true
`

func TestParseValid(t *testing.T) {
	table, err := Parse([]byte(validPlaybook))
	require.NoError(t, err)

	assert.Equal(t, "7.1", table.Version)
	assert.Equal(t, []string{"MNQ", "M2K"}, table.Defaults.HighBetaInstruments)

	// Declaration order is preserved.
	require.Len(t, table.Strategies, 2)
	assert.Equal(t, "Tier 1 Reversal Ignition", table.Strategies[0].Name)
	assert.Equal(t, "Tier 5 Defensive Hedge", table.Strategies[1].Name)

	s := table.Strategies[0]
	require.NotNil(t, s.ScoreThreshold)
	assert.Equal(t, 80.0, *s.ScoreThreshold)
	require.NotNil(t, s.Conditions.VIXMax)
	assert.Equal(t, 25.0, *s.Conditions.VIXMax)
	assert.Nil(t, s.Conditions.VIXMin)
	assert.True(t, s.Conditions.VolatilityRequired)
	assert.False(t, s.Conditions.MomentumRequired)
}

func TestParseMissingInstruments(t *testing.T) {
	doc := `version: "7.1"
defaults:
  risk_allocation: "5%"
strategies:
  Tier 2 Momentum Reload:
    description: Momentum continuation
    regime_score_threshold: 60
    risk_allocation: "10%"
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Tier 2 Momentum Reload", cfgErr.Strategy)
	assert.Contains(t, err.Error(), "instruments")
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		errMsg string
	}{
		{
			name:   "missing version",
			doc:    "defaults: {}\nstrategies:\n  A:\n    description: x\n",
			errMsg: "version",
		},
		{
			name:   "missing defaults",
			doc:    "version: \"1\"\nstrategies:\n  A:\n    description: x\n",
			errMsg: "defaults",
		},
		{
			name:   "empty strategies",
			doc:    "version: \"1\"\ndefaults: {}\nstrategies: {}\n",
			errMsg: "non-empty",
		},
		{
			name: "threshold out of range",
			doc: `version: "1"
defaults: {}
strategies:
  A:
    description: x
    regime_score_threshold: 120
    risk_allocation: "5%"
    instruments: [MES]
`,
			errMsg: "regime_score_threshold",
		},
		{
			name: "unknown condition category",
			doc: `version: "1"
defaults: {}
strategies:
  A:
    description: x
    regime_score_threshold: 50
    risk_allocation: "5%"
    instruments: [MES]
    conditions:
      categories:
        astrology: {}
`,
			errMsg: "unknown condition category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validPlaybook), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, table.Strategies, 2)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestTableAccessors(t *testing.T) {
	table, err := Parse([]byte(validPlaybook))
	require.NoError(t, err)

	s, err := table.Strategy("Tier 1 Reversal Ignition")
	require.NoError(t, err)
	assert.Equal(t, []string{"MES", "MNQ"}, s.Instruments)

	_, err = table.Strategy("Tier 9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: Tier 1 Reversal Ignition, Tier 5 Defensive Hedge")

	assert.True(t, table.Has("Tier 5 Defensive Hedge"))
	assert.False(t, table.Has("Tier 9"))
}

func TestTableTiers(t *testing.T) {
	table, err := Parse([]byte(validPlaybook))
	require.NoError(t, err)

	tiers := table.Tiers()
	require.Len(t, tiers, 2)
	assert.Equal(t, "Tier 1 Reversal Ignition", tiers[0].Name)
	assert.Equal(t, 80.0, tiers[0].ScoreThreshold)
	assert.Equal(t, []string{"MYM"}, tiers[1].Instruments)
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	assert.Len(t, table.Strategies, 5)

	for _, s := range table.Strategies {
		assert.NoError(t, validateStrategy(&s), "built-in strategy %s must validate", s.Name)
	}
}
