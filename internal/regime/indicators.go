package regime

// Component names used across the snapshot document, the weights config
// and the condition query resolver.
const (
	ComponentVolatility    = "volatility"
	ComponentStructure     = "structure"
	ComponentVolumeBreadth = "volume_breadth"
	ComponentMomentum      = "momentum"
	ComponentInstitutional = "institutional"
)

// ComponentNames lists the five components in document order.
var ComponentNames = []string{
	ComponentVolatility,
	ComponentStructure,
	ComponentVolumeBreadth,
	ComponentMomentum,
	ComponentInstitutional,
}

// SubIndicatorDef binds one sub-indicator to its reading name, its weight
// inside the parent component, and the band table that maps raw values
// onto 0-100 scores.
type SubIndicatorDef struct {
	Name   string
	Weight float64
	Bands  BandTable
}

// ComponentDef describes one of the five top-level components.
type ComponentDef struct {
	Name           string
	SubIndicators  []SubIndicatorDef
	Interpretation InterpretationTable
}

// InterpretationTable produces the human-readable reading of a component
// score. Phrases are banded at 20/40/60/80, lower-inclusive like the
// classification bands.
type InterpretationTable [5]string

// For returns the phrase for a component score.
func (it InterpretationTable) For(score float64) string {
	switch {
	case score < 20:
		return it[0]
	case score < 40:
		return it[1]
	case score < 60:
		return it[2]
	case score < 80:
		return it[3]
	default:
		return it[4]
	}
}

// DefaultComponents returns the built-in component and sub-indicator
// definitions. Band tables follow the Playbook v7.1 threshold grids:
// higher scores always mean more fear / stress, so bearish readings map
// to the top of the scale.
func DefaultComponents() []ComponentDef {
	return []ComponentDef{
		{
			Name: ComponentVolatility,
			SubIndicators: []SubIndicatorDef{
				{Name: ReadingVIXLevel, Weight: 0.4, Bands: BandTable{
					Cuts:   []float64{15, 20, 25, 30},
					Scores: []float64{20, 40, 60, 80, 100},
				}},
				{Name: ReadingTermStructure, Weight: 0.3, Bands: BandTable{
					Cuts:   []float64{-0.10, -0.05, 0.05, 0.10},
					Scores: []float64{0, 20, 40, 60, 80},
				}},
				{Name: ReadingATR, Weight: 0.3, Bands: BandTable{
					Cuts:   []float64{1.5, 2.5, 3.5, 4.5},
					Scores: []float64{20, 40, 60, 80, 100},
				}},
			},
			Interpretation: InterpretationTable{
				"Low volatility, complacent market",
				"Normal volatility conditions",
				"Elevated volatility, increased uncertainty",
				"High volatility, fear-driven market",
				"Extreme volatility, panic conditions",
			},
		},
		{
			Name: ComponentStructure,
			SubIndicators: []SubIndicatorDef{
				{Name: ReadingADX, Weight: 0.4, Bands: BandTable{
					Cuts:   []float64{20, 25, 30, 35},
					Scores: []float64{20, 40, 60, 80, 100},
				}},
				{Name: ReadingBBSqueeze, Weight: 0.3, Bands: BandTable{
					Cuts:   []float64{0.2, 0.4, 0.6, 0.8},
					Scores: []float64{100, 80, 60, 40, 20},
				}},
				{Name: ReadingFailedBreakouts, Weight: 0.3, Bands: BandTable{
					Cuts:   []float64{1, 2, 3, 4},
					Scores: []float64{20, 40, 60, 80, 100},
				}},
			},
			Interpretation: InterpretationTable{
				"Weak market structure, choppy conditions",
				"Developing structure, mixed signals",
				"Moderate structure, some clarity",
				"Strong structure, clear trends",
				"Extreme structure, powerful trends",
			},
		},
		{
			Name: ComponentVolumeBreadth,
			SubIndicators: []SubIndicatorDef{
				{Name: ReadingVolumeSpikes, Weight: 0.25, Bands: BandTable{
					Cuts:   []float64{1.0, 1.3, 1.6, 1.9},
					Scores: []float64{20, 40, 60, 80, 100},
				}},
				{Name: ReadingADDivergence, Weight: 0.25, Bands: BandTable{
					Cuts:   []float64{-0.2, -0.1, 0.1, 0.2},
					Scores: []float64{100, 80, 40, 20, 0},
				}},
				{Name: ReadingMcClellan, Weight: 0.25, Bands: BandTable{
					Cuts:   []float64{-50, -25, 25, 50},
					Scores: []float64{100, 80, 40, 20, 0},
				}},
				{Name: ReadingPutCallRatio, Weight: 0.25, Bands: BandTable{
					Cuts:   []float64{0.7, 0.9, 1.2, 1.5},
					Scores: []float64{0, 20, 40, 80, 100},
				}},
			},
			Interpretation: InterpretationTable{
				"Low volume/breadth, weak participation",
				"Normal volume/breadth conditions",
				"Elevated volume/breadth, increased activity",
				"High volume/breadth, strong participation",
				"Extreme volume/breadth, panic selling/buying",
			},
		},
		{
			Name: ComponentMomentum,
			SubIndicators: []SubIndicatorDef{
				{Name: ReadingRSIDivergence, Weight: 0.4, Bands: BandTable{
					Cuts:   []float64{-0.5, -0.2, 0.2, 0.5},
					Scores: []float64{100, 80, 40, 20, 0},
				}},
				{Name: ReadingMACDHistogram, Weight: 0.3, Bands: BandTable{
					Cuts:   []float64{-1.5, -0.5, 0.5, 1.5},
					Scores: []float64{100, 80, 40, 20, 0},
				}},
				{Name: ReadingOscillator, Weight: 0.3, Bands: BandTable{
					Cuts:   []float64{0.2, 0.4, 0.6, 0.8},
					Scores: []float64{20, 40, 60, 80, 100},
				}},
			},
			Interpretation: InterpretationTable{
				"Strong bullish momentum",
				"Moderate bullish momentum",
				"Neutral momentum conditions",
				"Moderate bearish momentum",
				"Strong bearish momentum",
			},
		},
		{
			Name: ComponentInstitutional,
			SubIndicators: []SubIndicatorDef{
				{Name: ReadingSmartMoneyFlow, Weight: 0.4, Bands: BandTable{
					Cuts:   []float64{-0.5, -0.2, 0.2, 0.5},
					Scores: []float64{100, 80, 40, 20, 0},
				}},
				{Name: ReadingOptionsFlow, Weight: 0.3, Bands: BandTable{
					Cuts:   []float64{-1.5, -0.5, 0.5, 1.5},
					Scores: []float64{100, 80, 40, 20, 0},
				}},
				{Name: ReadingInstSentiment, Weight: 0.3, Bands: BandTable{
					Cuts:   []float64{0.2, 0.4, 0.6, 0.8},
					Scores: []float64{100, 80, 40, 20, 0},
				}},
			},
			Interpretation: InterpretationTable{
				"Strong institutional buying",
				"Moderate institutional buying",
				"Neutral institutional positioning",
				"Moderate institutional selling",
				"Strong institutional selling",
			},
		},
	}
}
