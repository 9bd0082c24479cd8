package regime

// Classification labels the composite regime score.
type Classification string

const (
	ExtremeFear  Classification = "Extreme Fear"
	Fear         Classification = "Fear"
	Neutral      Classification = "Neutral"
	Greed        Classification = "Greed"
	ExtremeGreed Classification = "Extreme Greed"
)

// Classifications lists the bands in ascending score order.
var Classifications = []Classification{ExtremeFear, Fear, Neutral, Greed, ExtremeGreed}

// classificationBands is the canonical band table shared by every consumer
// of a classification. Bands are lower-inclusive and upper-exclusive; the
// final band is closed at 100. Strategy tier thresholds in the shipped
// playbook are aligned to these boundaries.
var classificationBands = []struct {
	upper float64
	class Classification
}{
	{20, ExtremeFear},
	{40, Fear},
	{60, Neutral},
	{80, Greed},
}

// Classify maps a composite score onto its regime classification.
func Classify(total float64) Classification {
	total = Clamp(total)
	for _, band := range classificationBands {
		if total < band.upper {
			return band.class
		}
	}
	return ExtremeGreed
}

// Clamp bounds a score to [0, 100].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// BandTable maps a raw indicator value onto a 0-100 score through an
// ordered step function. Scores[i] applies to values below Cuts[i] (first
// match wins); the final score applies to everything at or above the last
// cut. len(Scores) must equal len(Cuts)+1.
type BandTable struct {
	Cuts   []float64
	Scores []float64
}

// Score resolves a raw value against the band table.
func (bt BandTable) Score(value float64) float64 {
	for i, cut := range bt.Cuts {
		if value < cut {
			return bt.Scores[i]
		}
	}
	return bt.Scores[len(bt.Scores)-1]
}
