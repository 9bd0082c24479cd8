package conditions

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/macrointel/macrointel/internal/regime"
)

// Evaluator evaluates condition strings against regime snapshots. It is
// a pure function of (condition, snapshot) and holds no mutable state;
// the optional tier list only enables the asset cross-check.
type Evaluator struct {
	tiers  []regime.Tier
	logger zerolog.Logger
}

// New builds an evaluator. tiers may be nil; when present, asset
// membership is cross-checked against the selected strategy's
// instrument list.
func New(tiers []regime.Tier, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		tiers:  tiers,
		logger: logger.With().Str("component", "conditions").Logger(),
	}
}

// Evaluate resolves one condition against a snapshot. It always returns
// a definite boolean: a malformed condition, an unknown field or an
// unsupported field/operator combination evaluates false with a
// diagnostic, never an error.
func (e *Evaluator) Evaluate(condition string, snap *regime.Snapshot) bool {
	if snap == nil {
		e.diag(condition, "no snapshot available")
		return false
	}

	clause, err := Parse(condition)
	if err != nil {
		e.diag(condition, err.Error())
		return false
	}

	switch clause.Field {
	case FieldRegime:
		return e.compareNumeric(clause, snap.TotalScore)

	case FieldComponent:
		score, ok := snap.ComponentScoreValue(strings.ToLower(clause.Name))
		if !ok {
			e.diag(condition, "component not present in snapshot")
			return false
		}
		return e.compareNumeric(clause, score)

	case FieldSubComponent:
		raw, ok := snap.SubComponentRaw(strings.ToLower(clause.Name))
		if !ok {
			e.diag(condition, "unknown field")
			return false
		}
		return e.compareNumeric(clause, raw)

	case FieldStrategy:
		return e.matchStrategy(clause, snap.StrategyRecommendation)

	case FieldAsset:
		return e.matchAsset(clause, snap)

	case FieldClassification:
		return e.matchClassification(clause, string(snap.Classification))

	case FieldRisk:
		return e.compareRisk(clause, snap.RiskAllocation)

	default:
		e.diag(condition, "unknown field")
		return false
	}
}

func (e *Evaluator) compareNumeric(clause *Clause, value float64) bool {
	if clause.Op == OpIn || !clause.IsNumeric {
		e.diag(clause.Raw, "numeric field needs a numeric comparison")
		return false
	}

	switch clause.Op {
	case OpGT:
		return value > clause.Number
	case OpLT:
		return value < clause.Number
	case OpGE:
		return value >= clause.Number
	case OpLE:
		return value <= clause.Number
	case OpEQ:
		return value == clause.Number
	case OpNE:
		return value != clause.Number
	default:
		e.diag(clause.Raw, "unsupported operator "+clause.Op.String())
		return false
	}
}

// matchStrategy implements the containment convention: "Tier 4" matches
// a recommendation of "Tier 4 Mean Reversion". This is deliberately not
// exact equality; callers rely on it.
func (e *Evaluator) matchStrategy(clause *Clause, recommendation string) bool {
	rec := strings.ToLower(recommendation)

	switch clause.Op {
	case OpEQ:
		return strings.Contains(rec, strings.ToLower(clause.Text))
	case OpNE:
		return !strings.Contains(rec, strings.ToLower(clause.Text))
	case OpIn:
		for _, entry := range clause.List {
			if strings.Contains(rec, strings.ToLower(entry)) {
				return true
			}
		}
		return false
	default:
		e.diag(clause.Raw, "strategy supports ==, != and in")
		return false
	}
}

func (e *Evaluator) matchAsset(clause *Clause, snap *regime.Snapshot) bool {
	candidates := clause.List
	if clause.Op == OpEQ {
		candidates = []string{clause.Text}
	} else if clause.Op != OpIn {
		e.diag(clause.Raw, "asset supports == and in")
		return false
	}

	matched := false
	for _, entry := range candidates {
		if strings.EqualFold(entry, snap.Instrument) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	// Cross-check against the selected tier's instrument list when the
	// table is available.
	for _, tier := range e.tiers {
		if tier.Name != snap.StrategyRecommendation {
			continue
		}
		for _, instrument := range tier.Instruments {
			if strings.EqualFold(instrument, snap.Instrument) {
				return true
			}
		}
		e.diag(clause.Raw, "instrument not declared by selected strategy")
		return false
	}
	return true
}

func (e *Evaluator) matchClassification(clause *Clause, classification string) bool {
	switch clause.Op {
	case OpEQ:
		return strings.EqualFold(clause.Text, classification)
	case OpNE:
		return !strings.EqualFold(clause.Text, classification)
	case OpIn:
		for _, entry := range clause.List {
			if strings.EqualFold(entry, classification) {
				return true
			}
		}
		return false
	default:
		e.diag(clause.Raw, "classification supports ==, != and in")
		return false
	}
}

func (e *Evaluator) compareRisk(clause *Clause, allocation string) bool {
	if !clause.IsNumeric {
		e.diag(clause.Raw, "risk needs a numeric literal")
		return false
	}

	value, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(allocation), "%"), 64)
	if err != nil {
		e.diag(clause.Raw, "snapshot risk allocation is not numeric: "+allocation)
		return false
	}
	return e.compareNumeric(clause, value)
}

func (e *Evaluator) diag(condition, reason string) {
	e.logger.Warn().
		Str("condition", condition).
		Str("reason", reason).
		Msg("condition evaluated false")
}
