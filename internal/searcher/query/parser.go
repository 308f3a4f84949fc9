// Package query implements the inventory advanced-query language: splitting a
// query into clauses, parsing clauses into conditions, evaluating conditions
// against items, and rendering queries back to text.
//
// Surface syntax:
//
//	field:value             contains
//	field:"value"           equals (exact)
//	field:=value            equals
//	field:!=value           notEquals
//	field:^value            startsWith
//	field:value$            endsWith
//	field:>value            greaterThan
//	field:<value            lessThan
//	field:[v1 TO v2]        between, inclusive
//	field:(v1 OR v2)        in
//	!field:(v1 OR v2)       notIn
//	field:*                 exists
//	!field:*                notExists
//	!field:value            negates any other operator
//	value                   bare text, name contains value
//	clause AND clause       all conditions must match
//	clause OR clause        any condition must match
//
// The logical operator is global to a query. If " OR " appears anywhere the
// whole query is an OR, otherwise an AND. Malformed clauses are dropped
// rather than reported.
package query

import "strings"

// Parser turns raw query text into a ParsedQuery. Parsing never fails: bad
// clauses are dropped.
type Parser interface {
	Parse(raw string) *ParsedQuery
}

// FlatParser is the single-level grammar: one global AND/OR over flat
// conditions, with parentheses only for membership lists.
type FlatParser struct{}

// DefaultParser is used by the package-level Parse.
var DefaultParser Parser = FlatParser{}

// Parse parses raw with DefaultParser.
func Parse(raw string) *ParsedQuery {
	return DefaultParser.Parse(raw)
}

func (FlatParser) Parse(raw string) *ParsedQuery {
	q := &ParsedQuery{
		Conditions:      make([]Condition, 0),
		LogicalOperator: LogicalAnd,
	}
	if strings.TrimSpace(raw) == "" {
		return q
	}
	parts, op := clauses(raw)
	q.LogicalOperator = op
	for _, part := range parts {
		if part == "" {
			continue
		}
		if cond, ok := ParseCondition(part); ok {
			q.Conditions = append(q.Conditions, cond)
		}
	}
	return q
}

// ParseCondition parses one clause. It reports false only for an empty
// clause or one with nothing after the colon, such as "field:". An empty
// field name is kept; it never resolves, so the condition never matches.
func ParseCondition(clause string) (Condition, bool) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return Condition{}, false
	}
	negated := false
	if strings.HasPrefix(clause, "!") && !strings.HasPrefix(clause, "!(") {
		negated = true
		clause = strings.TrimSpace(clause[1:])
	}

	field, rawValue, found := strings.Cut(clause, ":")
	if !found {
		return Condition{Field: "name", Operator: OpContains, Value: clause}, true
	}
	field = strings.TrimSpace(field)
	rawValue = strings.TrimSpace(rawValue)
	if rawValue == "" {
		return Condition{}, false
	}

	cond := Condition{Field: field, Negated: negated}
	switch {
	case len(rawValue) >= 2 && strings.HasPrefix(rawValue, `"`) && strings.HasSuffix(rawValue, `"`):
		cond.Operator = OpEquals
		cond.Value = rawValue[1 : len(rawValue)-1]
	case strings.HasPrefix(rawValue, "="):
		cond.Operator = OpEquals
		cond.Value = rawValue[1:]
	case strings.HasPrefix(rawValue, "!="):
		cond.Operator = OpNotEquals
		cond.Value = rawValue[2:]
	case strings.HasPrefix(rawValue, ">"):
		cond.Operator = OpGreaterThan
		cond.Value = rawValue[1:]
	case strings.HasPrefix(rawValue, "<"):
		cond.Operator = OpLessThan
		cond.Value = rawValue[1:]
	case strings.HasPrefix(rawValue, "^"):
		cond.Operator = OpStartsWith
		cond.Value = rawValue[1:]
	case strings.HasSuffix(rawValue, "$"):
		cond.Operator = OpEndsWith
		cond.Value = rawValue[:len(rawValue)-1]
	case rawValue == "*":
		cond.Operator = OpExists
		if negated {
			cond.Operator = OpNotExists
		}
	case strings.HasPrefix(rawValue, "[") && strings.HasSuffix(rawValue, "]"):
		lo, hi, _ := strings.Cut(rawValue[1:len(rawValue)-1], " TO ")
		cond.Operator = OpBetween
		cond.Value = strings.TrimSpace(lo)
		cond.ValueEnd = strings.TrimSpace(hi)
	case strings.HasPrefix(rawValue, "(") && strings.HasSuffix(rawValue, ")"):
		cond.Operator = OpIn
		if negated {
			cond.Operator = OpNotIn
		}
		cond.Value = strings.Join(splitMembers(rawValue[1:len(rawValue)-1]), ", ")
	default:
		cond.Operator = OpContains
		cond.Value = rawValue
	}
	return cond, true
}

func splitMembers(inner string) []string {
	raw := strings.Split(inner, sepOr)
	members := make([]string, 0, len(raw))
	for _, m := range raw {
		m = unquote(strings.TrimSpace(m))
		if m != "" {
			members = append(members, m)
		}
	}
	return members
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
