package query

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
)

// Matches reports whether item satisfies cond. It never fails: operators
// without meaning for the field's type, missing fields, and values that
// cannot be compared numerically all evaluate to a non-match.
func Matches(item *inventory.Item, cond Condition) bool {
	matched := evaluate(item.Lookup(cond.Field), cond)
	if cond.Negated && !cond.Operator.foldsNegation() {
		return !matched
	}
	return matched
}

func evaluate(v inventory.Value, cond Condition) bool {
	if v.IsList() {
		return evaluateList(v.List, cond)
	}
	if v.Missing() {
		return cond.Operator == OpNotExists
	}

	switch cond.Operator {
	case OpExists:
		return true
	case OpNotExists:
		return false
	}

	if cond.Operator.numeric() {
		return compareNumeric(v, cond)
	}

	field := inventory.ToComparableString(v)
	want := strings.ToLower(cond.Value)
	switch cond.Operator {
	case OpContains:
		return strings.Contains(field, want)
	case OpEquals:
		return field == want
	case OpNotEquals:
		return field != want
	case OpStartsWith:
		return strings.HasPrefix(field, want)
	case OpEndsWith:
		return strings.HasSuffix(field, want)
	case OpIn:
		_, ok := memberSet(cond.Value)[field]
		return ok
	case OpNotIn:
		_, ok := memberSet(cond.Value)[field]
		return !ok
	default:
		return false
	}
}

func evaluateList(list []string, cond Condition) bool {
	switch cond.Operator {
	case OpContains:
		want := strings.ToLower(cond.Value)
		for _, elem := range list {
			if strings.Contains(strings.ToLower(elem), want) {
				return true
			}
		}
		return false
	case OpEquals:
		return listHasEqual(list, cond.Value)
	case OpNotEquals:
		return !listHasEqual(list, cond.Value)
	case OpIn:
		return listHasMember(list, memberSet(cond.Value))
	case OpNotIn:
		return !listHasMember(list, memberSet(cond.Value))
	case OpExists:
		return len(list) > 0
	case OpNotExists:
		return len(list) == 0
	default:
		return false
	}
}

func listHasEqual(list []string, value string) bool {
	for _, elem := range list {
		if strings.EqualFold(elem, value) {
			return true
		}
	}
	return false
}

func listHasMember(list []string, set map[string]struct{}) bool {
	for _, elem := range list {
		if _, ok := set[strings.ToLower(elem)]; ok {
			return true
		}
	}
	return false
}

// compareNumeric handles greaterThan, lessThan and between. Either side
// failing to coerce makes the condition a non-match.
func compareNumeric(v inventory.Value, cond Condition) bool {
	n, ok := inventory.ToComparableNumber(v)
	if !ok {
		return false
	}
	lo, ok := inventory.ParseNumber(cond.Value)
	if !ok {
		return false
	}
	switch cond.Operator {
	case OpGreaterThan:
		return n > lo
	case OpLessThan:
		return n < lo
	case OpBetween:
		hi, ok := inventory.ParseNumber(cond.ValueEnd)
		if !ok {
			return false
		}
		return lo <= n && n <= hi
	default:
		return false
	}
}

// memberSet splits a stored membership value on commas.
func memberSet(value string) map[string]struct{} {
	parts := strings.Split(value, ",")
	set := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		set[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}
	return set
}
