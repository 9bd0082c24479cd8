package regime

import "time"

// Reading is a single scalar observation handed in by an external data
// provider. Readings live for one scoring cycle and are never persisted.
type Reading struct {
	Name  string    `json:"name"`
	Value float64   `json:"value"`
	AsOf  time.Time `json:"as_of"`
}

// ReadingSet holds the readings available for one scoring cycle, keyed by
// indicator name. A missing key is the normal representation of a data
// gap; callers must tolerate absence.
type ReadingSet map[string]Reading

// Get returns the named reading and whether it is present.
func (rs ReadingSet) Get(name string) (Reading, bool) {
	r, ok := rs[name]
	return r, ok
}

// Put records a reading under its name.
func (rs ReadingSet) Put(r Reading) {
	rs[r.Name] = r
}

// Merge folds another set into this one. Later sets win on name clashes,
// matching provider precedence order.
func (rs ReadingSet) Merge(other ReadingSet) {
	for name, r := range other {
		rs[name] = r
	}
}

// Canonical reading names consumed by the aggregator and the playbook
// evaluator. Providers are expected to publish under these names.
const (
	ReadingVIXLevel        = "vix_level"
	ReadingTermStructure   = "term_structure"
	ReadingATR             = "atr"
	ReadingADX             = "adx"
	ReadingBBSqueeze       = "bb_squeeze"
	ReadingFailedBreakouts = "failed_breakouts"
	ReadingVolumeSpikes    = "volume_spikes"
	ReadingADDivergence    = "ad_divergence"
	ReadingMcClellan       = "mcclellan"
	ReadingPutCallRatio    = "put_call_ratio"
	ReadingRSIDivergence   = "rsi_divergence"
	ReadingMACDHistogram   = "macd_histogram"
	ReadingOscillator      = "oscillator_confluence"
	ReadingSmartMoneyFlow  = "smart_money_flow"
	ReadingOptionsFlow     = "options_flow"
	ReadingInstSentiment   = "institutional_sentiment"

	// Readings consumed by the playbook evaluator rather than the
	// aggregator's band tables.
	ReadingVIXAverage = "vix_average"
	ReadingFearGreed  = "fear_greed"
	ReadingMomentum20 = "momentum_20"
)
