package conditions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/macrointel/macrointel/internal/regime"
)

// componentFields maps the component names accepted as field tokens.
var componentFields = map[string]bool{
	regime.ComponentVolatility:    true,
	regime.ComponentStructure:     true,
	regime.ComponentVolumeBreadth: true,
	regime.ComponentMomentum:      true,
	regime.ComponentInstitutional: true,
}

// Parse turns one condition string into a clause. The grammar is
//
//	clause := field comparator literal | field "in" "[" literal, ... "]"
//
// Two-character operators are tested before one-character ones so that
// ">=" is never read as ">" followed by a stray "=".
func Parse(condition string) (*Clause, error) {
	s := strings.TrimSpace(condition)
	if s == "" {
		return nil, fmt.Errorf("empty condition")
	}

	clause := &Clause{Raw: condition}

	// The field token runs up to the first space or operator character.
	end := strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '>' || r == '<' || r == '=' || r == '!'
	})
	if end <= 0 {
		return nil, fmt.Errorf("missing operator in %q", condition)
	}
	clause.Name = s[:end]
	clause.Field = fieldKind(clause.Name)
	rest := strings.TrimSpace(s[end:])

	if strings.HasPrefix(rest, "in ") || strings.HasPrefix(rest, "in[") {
		clause.Op = OpIn
		list, err := parseList(rest)
		if err != nil {
			return nil, err
		}
		clause.List = list
		return clause, nil
	}

	// Two-character operators first.
	for _, candidate := range []struct {
		token string
		op    Operator
	}{
		{">=", OpGE}, {"<=", OpLE}, {"==", OpEQ}, {"!=", OpNE},
		{">", OpGT}, {"<", OpLT},
	} {
		if strings.HasPrefix(rest, candidate.token) {
			clause.Op = candidate.op
			return parseLiteral(clause, rest[len(candidate.token):])
		}
	}

	return nil, fmt.Errorf("unrecognized operator in %q", condition)
}

func parseLiteral(clause *Clause, raw string) (*Clause, error) {
	literal := stripQuotes(strings.TrimSpace(raw))
	if literal == "" {
		return nil, fmt.Errorf("missing literal in %q", clause.Raw)
	}
	clause.Text = literal

	if n, err := strconv.ParseFloat(strings.TrimSuffix(literal, "%"), 64); err == nil {
		clause.Number = n
		clause.IsNumeric = true
	}
	return clause, nil
}

// parseList extracts the first [...] span, splits on commas and trims
// and quote-strips each entry.
func parseList(rest string) ([]string, error) {
	open := strings.Index(rest, "[")
	if open < 0 {
		return nil, fmt.Errorf("list literal missing [")
	}
	closing := strings.Index(rest[open:], "]")
	if closing < 0 {
		return nil, fmt.Errorf("list literal missing ]")
	}

	span := rest[open+1 : open+closing]
	parts := strings.Split(span, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		entry := stripQuotes(strings.TrimSpace(p))
		if entry != "" {
			list = append(list, entry)
		}
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("empty list literal")
	}
	return list, nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func fieldKind(name string) FieldKind {
	switch strings.ToLower(name) {
	case "regime":
		return FieldRegime
	case "strategy":
		return FieldStrategy
	case "asset":
		return FieldAsset
	case "classification":
		return FieldClassification
	case "risk":
		return FieldRisk
	}
	if componentFields[strings.ToLower(name)] {
		return FieldComponent
	}
	// Anything else is tried as a sub-indicator name at evaluation time.
	return FieldSubComponent
}
