package regime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsLoaderDefault(t *testing.T) {
	wl := NewWeightsLoader()
	require.NoError(t, wl.LoadDefault())

	w, err := wl.Weight(ComponentVolatility)
	require.NoError(t, err)
	assert.Equal(t, 0.25, w)

	weights := wl.Weights()
	sum := 0.0
	for _, v := range weights {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 0.001)
}

func TestWeightsLoaderNotLoaded(t *testing.T) {
	wl := NewWeightsLoader()
	_, err := wl.Weight(ComponentMomentum)
	assert.Error(t, err)
	assert.Nil(t, wl.Weights())
}

func TestWeightsLoaderFromFile(t *testing.T) {
	content := `components:
  volatility: 0.30
  structure: 0.20
  volume_breadth: 0.20
  momentum: 0.15
  institutional: 0.15
validation:
  weight_sum_tolerance: 0.001
  min_weight: 0.05
  max_weight: 0.60
`
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	wl := NewWeightsLoader()
	require.NoError(t, wl.LoadFromFile(path))

	w, err := wl.Weight(ComponentVolatility)
	require.NoError(t, err)
	assert.Equal(t, 0.30, w)
}

func TestWeightsLoaderValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name: "sum off by too much",
			content: `components:
  volatility: 0.40
  structure: 0.20
  volume_breadth: 0.20
  momentum: 0.20
  institutional: 0.15
`,
			errMsg: "sum",
		},
		{
			name: "missing component",
			content: `components:
  volatility: 0.40
  structure: 0.20
  volume_breadth: 0.20
  momentum: 0.20
`,
			errMsg: "missing required component weight",
		},
		{
			name: "weight above maximum",
			content: `components:
  volatility: 0.70
  structure: 0.10
  volume_breadth: 0.08
  momentum: 0.06
  institutional: 0.06
`,
			errMsg: "above maximum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "weights.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			wl := NewWeightsLoader()
			err := wl.LoadFromFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWeightsLoaderMissingFile(t *testing.T) {
	wl := NewWeightsLoader()
	err := wl.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
