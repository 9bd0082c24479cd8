// Package conditions implements the restricted condition grammar used to
// gate downstream actions against the latest regime snapshot, e.g.
// "regime > 70" or "strategy == 'Tier 1'". Evaluation always yields a
// definite boolean: malformed input logs a diagnostic and evaluates
// false rather than failing, because callers use the result to decide
// whether to run something at all.
package conditions

// FieldKind tags what a clause's field token resolves to.
type FieldKind int

const (
	FieldUnknown FieldKind = iota
	// FieldRegime is the composite total score.
	FieldRegime
	// FieldComponent is one of the five component scores.
	FieldComponent
	// FieldSubComponent is a sub-indicator raw value, resolved by name
	// across all components at evaluation time.
	FieldSubComponent
	// FieldStrategy compares against the strategy recommendation by
	// case-insensitive substring containment.
	FieldStrategy
	// FieldAsset is a membership test against the recommended instrument.
	FieldAsset
	// FieldClassification is an exact, case-insensitive label match.
	FieldClassification
	// FieldRisk compares risk allocations numerically, trailing % stripped.
	FieldRisk
)

// Operator is a comparison operator in a clause.
type Operator int

const (
	OpInvalid Operator = iota
	OpGT
	OpLT
	OpGE
	OpLE
	OpEQ
	OpNE
	OpIn
)

func (op Operator) String() string {
	switch op {
	case OpGT:
		return ">"
	case OpLT:
		return "<"
	case OpGE:
		return ">="
	case OpLE:
		return "<="
	case OpEQ:
		return "=="
	case OpNE:
		return "!="
	case OpIn:
		return "in"
	default:
		return "?"
	}
}

// Clause is the parsed form of one condition string.
type Clause struct {
	Raw   string
	Field FieldKind
	Name  string // the field token as written

	Op Operator

	Number    float64 // numeric literal, % stripped
	IsNumeric bool
	Text      string   // quote-stripped string literal
	List      []string // list literal for "in"
}
