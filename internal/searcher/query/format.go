package query

import "strings"

// Format renders cond in surface syntax. Parsing the result yields the same
// field, operator and values, except for contains values that themselves
// look like operator markers.
func Format(cond Condition) string {
	var b strings.Builder
	if cond.Operator == OpNotExists || cond.Operator == OpNotIn || (cond.Negated && !cond.Operator.foldsNegation()) {
		b.WriteByte('!')
	}
	b.WriteString(cond.Field)
	b.WriteByte(':')
	switch cond.Operator {
	case OpEquals:
		b.WriteString(`"` + cond.Value + `"`)
	case OpNotEquals:
		b.WriteString("!=" + cond.Value)
	case OpGreaterThan:
		b.WriteString(">" + cond.Value)
	case OpLessThan:
		b.WriteString("<" + cond.Value)
	case OpStartsWith:
		b.WriteString("^" + cond.Value)
	case OpEndsWith:
		b.WriteString(cond.Value + "$")
	case OpExists, OpNotExists:
		b.WriteByte('*')
	case OpBetween:
		b.WriteString("[" + cond.Value + " TO " + cond.ValueEnd + "]")
	case OpIn, OpNotIn:
		members := strings.Split(cond.Value, ",")
		for i := range members {
			members[i] = strings.TrimSpace(members[i])
		}
		b.WriteString("(" + strings.Join(members, sepOr) + ")")
	default:
		b.WriteString(cond.Value)
	}
	return b.String()
}

// FormatQuery renders q in surface syntax. The output is the canonical form
// of a query: equal queries format identically.
func FormatQuery(q *ParsedQuery) string {
	if q.Empty() {
		return ""
	}
	sep := sepAnd
	if q.LogicalOperator == LogicalOr && len(q.Conditions) > 1 {
		sep = sepOr
	}
	parts := make([]string, 0, len(q.Conditions))
	for _, cond := range q.Conditions {
		parts = append(parts, Format(cond))
	}
	return strings.Join(parts, sep)
}
