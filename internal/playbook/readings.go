package playbook

import "github.com/macrointel/macrointel/internal/regime"

// FromReadings assembles MarketData from a scoring cycle's reading set.
// Missing readings fall back to neutral defaults so the evaluator always
// has something to work with; the momentum block is only present when a
// momentum reading arrived.
func FromReadings(rs regime.ReadingSet) MarketData {
	md := MarketData{SentimentScore: 50, SentimentRating: "Neutral"}

	if r, ok := rs.Get(regime.ReadingFearGreed); ok {
		md.SentimentScore = r.Value
	}
	if r, ok := rs.Get(regime.ReadingVIXLevel); ok {
		md.VIXCurrent = r.Value
	} else {
		md.VIXCurrent = 20
	}
	if r, ok := rs.Get(regime.ReadingVIXAverage); ok {
		md.VIXAverage = r.Value
	} else {
		md.VIXAverage = md.VIXCurrent
	}
	if md.VIXAverage > 0 {
		md.VIXChange = (md.VIXCurrent - md.VIXAverage) / md.VIXAverage * 100
	}
	if r, ok := rs.Get(regime.ReadingMomentum20); ok {
		md.Momentum = &MomentumData{
			Momentum20: r.Value,
			Trend:      trendForMomentum(r.Value),
		}
	}

	return md
}

func trendForMomentum(momentum20 float64) string {
	switch {
	case momentum20 > 2:
		return TrendStrongUptrend
	case momentum20 > 0:
		return TrendWeakUptrend
	case momentum20 < -2:
		return TrendStrongDowntrend
	case momentum20 < 0:
		return TrendWeakDowntrend
	default:
		return TrendSideways
	}
}
