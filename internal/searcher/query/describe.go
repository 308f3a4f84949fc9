package query

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const noCriteria = "No search criteria"

// Describe renders q as an English sentence, for example
// `Category equals "Electronics" and Price is greater than 100`.
func Describe(q *ParsedQuery) string {
	if q.Empty() {
		return noCriteria
	}
	title := cases.Title(language.English, cases.NoLower)
	fragments := make([]string, 0, len(q.Conditions))
	for _, cond := range q.Conditions {
		fragments = append(fragments, describeCondition(title, cond))
	}
	joiner := "and"
	if q.LogicalOperator == LogicalOr {
		joiner = "or"
	}
	switch len(fragments) {
	case 1:
		return fragments[0]
	case 2:
		return fragments[0] + " " + joiner + " " + fragments[1]
	default:
		last := len(fragments) - 1
		return strings.Join(fragments[:last], ", ") + " " + joiner + " " + fragments[last]
	}
}

// DescribeCondition renders a single condition.
func DescribeCondition(cond Condition) string {
	return describeCondition(cases.Title(language.English, cases.NoLower), cond)
}

func describeCondition(title cases.Caser, cond Condition) string {
	label := title.String(cond.Field)
	neg := cond.Negated && !cond.Operator.foldsNegation()
	pick := func(yes, no string) string {
		if neg {
			return no
		}
		return yes
	}
	switch cond.Operator {
	case OpContains:
		return fmt.Sprintf("%s %s %q", label, pick("contains", "does not contain"), cond.Value)
	case OpEquals:
		return fmt.Sprintf("%s %s %q", label, pick("equals", "does not equal"), cond.Value)
	case OpNotEquals:
		return fmt.Sprintf("%s %s %q", label, pick("does not equal", "equals"), cond.Value)
	case OpStartsWith:
		return fmt.Sprintf("%s %s %q", label, pick("starts with", "does not start with"), cond.Value)
	case OpEndsWith:
		return fmt.Sprintf("%s %s %q", label, pick("ends with", "does not end with"), cond.Value)
	case OpGreaterThan:
		return fmt.Sprintf("%s %s %s", label, pick("is greater than", "is not greater than"), cond.Value)
	case OpLessThan:
		return fmt.Sprintf("%s %s %s", label, pick("is less than", "is not less than"), cond.Value)
	case OpBetween:
		return fmt.Sprintf("%s %s %s and %s", label, pick("is between", "is not between"), cond.Value, cond.ValueEnd)
	case OpIn:
		return fmt.Sprintf("%s is one of: %s", label, cond.Value)
	case OpNotIn:
		return fmt.Sprintf("%s is not one of: %s", label, cond.Value)
	case OpExists:
		return label + " exists"
	case OpNotExists:
		return label + " does not exist"
	default:
		return fmt.Sprintf("%s %s %q", label, cond.Operator, cond.Value)
	}
}
