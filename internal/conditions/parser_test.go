package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComparisons(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		field     FieldKind
		op        Operator
		number    float64
	}{
		{"regime greater", "regime > 70", FieldRegime, OpGT, 70},
		{"regime gte not mistokenized", "regime >= 80", FieldRegime, OpGE, 80},
		{"regime lte", "regime <= 20", FieldRegime, OpLE, 20},
		{"component score", "volatility > 60", FieldComponent, OpGT, 60},
		{"sub component", "vix_level >= 25", FieldSubComponent, OpGE, 25},
		{"risk with percent literal", "risk > 20%", FieldRisk, OpGT, 20},
		{"no spaces", "regime>70", FieldRegime, OpGT, 70},
		{"not equal", "regime != 50", FieldRegime, OpNE, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, err := Parse(tt.condition)
			require.NoError(t, err)
			assert.Equal(t, tt.field, clause.Field)
			assert.Equal(t, tt.op, clause.Op)
			require.True(t, clause.IsNumeric)
			assert.Equal(t, tt.number, clause.Number)
		})
	}
}

func TestParseStringLiteral(t *testing.T) {
	clause, err := Parse("strategy == 'Tier 1'")
	require.NoError(t, err)
	assert.Equal(t, FieldStrategy, clause.Field)
	assert.Equal(t, OpEQ, clause.Op)
	assert.Equal(t, "Tier 1", clause.Text)

	clause, err = Parse(`classification == "Extreme Fear"`)
	require.NoError(t, err)
	assert.Equal(t, FieldClassification, clause.Field)
	assert.Equal(t, "Extreme Fear", clause.Text)
	assert.False(t, clause.IsNumeric)
}

func TestParseList(t *testing.T) {
	clause, err := Parse("strategy in ['Tier 1', 'Tier 2']")
	require.NoError(t, err)
	assert.Equal(t, OpIn, clause.Op)
	assert.Equal(t, []string{"Tier 1", "Tier 2"}, clause.List)

	clause, err = Parse(`asset in [MYM, "MES"]`)
	require.NoError(t, err)
	assert.Equal(t, FieldAsset, clause.Field)
	assert.Equal(t, []string{"MYM", "MES"}, clause.List)
}

func TestParseMalformed(t *testing.T) {
	for _, condition := range []string{
		"",
		"regime",
		"regime ~ 70",
		"regime > ",
		"asset in MYM",
		"asset in [",
		"asset in []",
	} {
		t.Run(condition, func(t *testing.T) {
			_, err := Parse(condition)
			assert.Error(t, err)
		})
	}
}

func TestParseUnknownFieldIsSubComponent(t *testing.T) {
	// Unknown names are resolved as sub-indicators at evaluation time;
	// the parser does not reject them.
	clause, err := Parse("regimee > 5")
	require.NoError(t, err)
	assert.Equal(t, FieldSubComponent, clause.Field)
}
