package playbook

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Trend labels produced by the momentum provider.
const (
	TrendStrongUptrend   = "Strong Uptrend"
	TrendWeakUptrend     = "Weak Uptrend"
	TrendStrongDowntrend = "Strong Downtrend"
	TrendWeakDowntrend   = "Weak Downtrend"
	TrendSideways        = "Sideways"

	TrendBullish = "Bullish"
	TrendBearish = "Bearish"
	TrendNeutral = "Neutral"
)

// Macro asset names tracked for macro notes.
const (
	AssetGold   = "GOLD"
	AssetBTC    = "BTC"
	AssetDollar = "DOLLAR"
	AssetOil    = "OIL"
)

// Market regime labels.
const (
	RegimeRiskOn  = "Risk-On"
	RegimeRiskOff = "Risk-Off"
	RegimeNeutral = "Neutral"
)

// MomentumData summarizes equity-index momentum for one cycle.
type MomentumData struct {
	CurrentPrice float64 `json:"current_price"`
	SMA20        float64 `json:"sma_20"`
	SMA50        float64 `json:"sma_50"`
	Momentum20   float64 `json:"momentum_20"`
	Momentum50   float64 `json:"momentum_50"`
	Trend        string  `json:"trend"`
}

// Uptrend reports whether the trend label is any uptrend variant.
func (m *MomentumData) Uptrend() bool {
	return m != nil && (m.Trend == TrendStrongUptrend || m.Trend == TrendWeakUptrend)
}

// Downtrend reports whether the trend label is any downtrend variant.
func (m *MomentumData) Downtrend() bool {
	return m != nil && (m.Trend == TrendStrongDowntrend || m.Trend == TrendWeakDowntrend)
}

// AssetReading is one macro asset's short-horizon state.
type AssetReading struct {
	Current  float64 `json:"current"`
	Change5D float64 `json:"change_5d"`
	Trend    string  `json:"trend"`
}

// MarketData is the evaluator's input for one cycle: the sentiment
// score, volatility readings, momentum summary and macro asset state.
type MarketData struct {
	SentimentScore  float64                 `json:"sentiment_score"`
	SentimentRating string                  `json:"sentiment_rating"`
	VIXCurrent      float64                 `json:"vix_current"`
	VIXAverage      float64                 `json:"vix_average"`
	VIXChange       float64                 `json:"vix_change"`
	Momentum        *MomentumData           `json:"momentum,omitempty"`
	Assets          map[string]AssetReading `json:"assets,omitempty"`
}

// StrategySelection is one viable strategy in the report.
type StrategySelection struct {
	Name        string   `json:"name"`
	Confidence  float64  `json:"confidence"`
	Threshold   float64  `json:"threshold"`
	Instruments []string `json:"instruments"`
}

// Report is the evaluator's output contract.
type Report struct {
	MarketRegime  string              `json:"market_regime"`
	Selected      []StrategySelection `json:"selected_strategies"`
	AvoidList     []string            `json:"avoid_list"`
	Disqualifiers []string            `json:"disqualifiers"`
	MacroNotes    []string            `json:"macro_notes"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

// Disqualifier thresholds. These are market conventions, not tunables.
const (
	vixExtremeHigh        = 35.0
	vixExtremeLow         = 12.0
	sentimentExtremeFear  = 15.0
	sentimentExtremeGreed = 85.0
	volatilityRatioFloor  = 1.2
)

// Evaluator matches market data against the rule table.
type Evaluator struct {
	table  *Table
	logger zerolog.Logger
}

// NewEvaluator builds an evaluator over a validated rule table.
func NewEvaluator(table *Table, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		table:  table,
		logger: logger.With().Str("component", "playbook").Logger(),
	}
}

// EvaluateViability checks one strategy's conditions against the market.
// Every check runs even after one fails so the reason list is complete,
// and each reason cites the numbers involved.
func (e *Evaluator) EvaluateViability(s Strategy, md MarketData) (bool, []string) {
	c := s.Conditions
	var reasons []string

	if c.VIXMax != nil && md.VIXCurrent > *c.VIXMax {
		reasons = append(reasons, fmt.Sprintf("VIX too high (%.1f > %.1f)", md.VIXCurrent, *c.VIXMax))
	}
	if c.VIXMin != nil && md.VIXCurrent < *c.VIXMin {
		reasons = append(reasons, fmt.Sprintf("VIX too low (%.1f < %.1f)", md.VIXCurrent, *c.VIXMin))
	}
	if c.FearGreedMin != nil && md.SentimentScore < *c.FearGreedMin {
		reasons = append(reasons, fmt.Sprintf("Fear too high (%.0f < %.0f)", md.SentimentScore, *c.FearGreedMin))
	}
	if c.FearGreedMax != nil && md.SentimentScore > *c.FearGreedMax {
		reasons = append(reasons, fmt.Sprintf("Greed too high (%.0f > %.0f)", md.SentimentScore, *c.FearGreedMax))
	}
	if c.VolatilityRequired {
		ratio := 1.0
		if md.VIXAverage > 0 {
			ratio = md.VIXCurrent / md.VIXAverage
		}
		if ratio < volatilityRatioFloor {
			reasons = append(reasons, fmt.Sprintf("Insufficient volatility (VIX %.1f vs %.1f average)", md.VIXCurrent, md.VIXAverage))
		}
	}
	if c.MomentumRequired && md.Momentum != nil && md.Momentum.Momentum20 <= 0 {
		reasons = append(reasons, fmt.Sprintf("Insufficient momentum (20-day %.2f%%)", md.Momentum.Momentum20))
	}

	return len(reasons) == 0, reasons
}

// CheckDisqualifiers applies the fixed market-wide disqualifier rules.
func (e *Evaluator) CheckDisqualifiers(md MarketData) []string {
	var out []string

	if md.VIXCurrent > vixExtremeHigh {
		out = append(out, fmt.Sprintf("VIX extremely high (%.1f)", md.VIXCurrent))
	}
	if md.VIXCurrent < vixExtremeLow {
		out = append(out, fmt.Sprintf("VIX extremely low (%.1f)", md.VIXCurrent))
	}
	if md.SentimentScore < sentimentExtremeFear {
		out = append(out, fmt.Sprintf("Extreme fear (%.0f)", md.SentimentScore))
	}
	if md.SentimentScore > sentimentExtremeGreed {
		out = append(out, fmt.Sprintf("Extreme greed (%.0f)", md.SentimentScore))
	}
	if md.Momentum.Uptrend() && md.SentimentScore < 30 {
		out = append(out, "Conflicting signals: bullish trend with high fear")
	}
	if md.Momentum.Downtrend() && md.SentimentScore > 70 {
		out = append(out, "Conflicting signals: bearish trend with high greed")
	}

	return out
}

// noteRule is one entry of the macro note lookup table: asset trend
// crossed with a sentiment band yields a canned note.
type noteRule struct {
	asset        string
	trend        string
	maxSentiment float64 // note applies when sentiment is below this
	minSentiment float64 // or above this; 0 disables the bound
	note         string
}

var macroNoteTable = []noteRule{
	{AssetGold, TrendBullish, 40, 0, "Gold surging as safe haven during market stress"},
	{AssetGold, TrendBullish, 0, 60, "Gold rising alongside risk assets - inflation hedge"},
	{AssetBTC, TrendBullish, 0, 60, "Bitcoin showing risk-on characteristics"},
	{AssetBTC, TrendBullish, 40, 0, "Bitcoin acting as digital gold during stress"},
	{AssetDollar, TrendBullish, 40, 0, "Dollar strengthening as flight-to-quality asset"},
	{AssetDollar, TrendBearish, 0, 60, "Dollar weakening as risk appetite increases"},
	{AssetOil, TrendBullish, 0, 60, "Oil rising with economic optimism"},
	{AssetOil, TrendBearish, 40, 0, "Oil declining on growth concerns"},
}

// BuildMacroNotes walks the macro note table against the current asset
// readings and appends a regime summary line.
func (e *Evaluator) BuildMacroNotes(md MarketData) []string {
	var notes []string

	for _, rule := range macroNoteTable {
		asset, ok := md.Assets[rule.asset]
		if !ok || asset.Trend != rule.trend {
			continue
		}
		if rule.maxSentiment > 0 && md.SentimentScore >= rule.maxSentiment {
			continue
		}
		if rule.minSentiment > 0 && md.SentimentScore <= rule.minSentiment {
			continue
		}
		notes = append(notes, rule.note)
	}

	switch e.DetermineRegime(md) {
	case RegimeRiskOn:
		notes = append(notes, "Risk-on environment favors high beta assets and momentum strategies")
	case RegimeRiskOff:
		notes = append(notes, "Risk-off environment favors defensive assets and reversal strategies")
	default:
		notes = append(notes, "Neutral environment - mixed signals suggest selective positioning")
	}

	return notes
}

// DetermineRegime labels the broad market regime from sentiment,
// volatility and trend together.
func (e *Evaluator) DetermineRegime(md MarketData) string {
	switch {
	case md.SentimentScore > 60 && md.VIXCurrent < 20 && md.Momentum.Uptrend():
		return RegimeRiskOn
	case md.SentimentScore < 30 && md.VIXCurrent > 25 && md.Momentum.Downtrend():
		return RegimeRiskOff
	default:
		return RegimeNeutral
	}
}

// Evaluate runs the full playbook pass: viability for every strategy,
// disqualifiers and macro notes. A fault in one strategy's evaluation
// marks only that strategy non-viable; the rest of the batch proceeds.
func (e *Evaluator) Evaluate(md MarketData) *Report {
	report := &Report{
		MarketRegime: e.DetermineRegime(md),
		GeneratedAt:  time.Now().UTC(),
	}

	report.Disqualifiers = e.CheckDisqualifiers(md)

	for _, s := range e.table.Strategies {
		viable, reasons := e.evaluateSafely(s, md)
		if !viable {
			report.AvoidList = append(report.AvoidList, formatAvoid(s.Name, reasons))
			continue
		}
		threshold := 0.0
		if s.ScoreThreshold != nil {
			threshold = *s.ScoreThreshold
		}
		report.Selected = append(report.Selected, StrategySelection{
			Name:        s.Name,
			Confidence:  e.confidence(len(report.Disqualifiers)),
			Threshold:   threshold,
			Instruments: s.Instruments,
		})
	}

	report.MacroNotes = e.BuildMacroNotes(md)

	e.logger.Info().
		Str("regime", report.MarketRegime).
		Int("viable", len(report.Selected)).
		Int("avoid", len(report.AvoidList)).
		Int("disqualifiers", len(report.Disqualifiers)).
		Msg("playbook evaluated")

	return report
}

// evaluateSafely contains a panic inside one strategy's evaluation.
func (e *Evaluator) evaluateSafely(s Strategy, md MarketData) (viable bool, reasons []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("strategy", s.Name).Interface("panic", r).Msg("strategy evaluation failed")
			viable = false
			reasons = []string{"evaluation error"}
		}
	}()
	return e.EvaluateViability(s, md)
}

// confidence discounts a viable strategy for every market-wide
// disqualifier in effect.
func (e *Evaluator) confidence(disqualifiers int) float64 {
	c := 0.9 - 0.15*float64(disqualifiers)
	if c < 0.3 {
		c = 0.3
	}
	return c
}

func formatAvoid(name string, reasons []string) string {
	if len(reasons) == 0 {
		return name
	}
	out := name + " ("
	for i, r := range reasons {
		if i > 0 {
			out += ", "
		}
		out += r
	}
	return out + ")"
}
