package query

import "strings"

// Terms returns the text values a query looks for, in order and without
// case-insensitive duplicates. Negated and numeric conditions contribute
// nothing. The result drives highlighting and free-text relevance.
func Terms(q *ParsedQuery) []string {
	if q.Empty() {
		return nil
	}
	seen := make(map[string]struct{})
	var terms []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		terms = append(terms, t)
	}
	for _, cond := range q.Conditions {
		if cond.Negated {
			continue
		}
		switch cond.Operator {
		case OpContains, OpEquals, OpStartsWith, OpEndsWith:
			add(cond.Value)
		case OpIn:
			for _, m := range strings.Split(cond.Value, ",") {
				add(m)
			}
		}
	}
	return terms
}

// RelevanceText is the free-text form of raw used for relevance scoring.
// Plain text without field syntax is used verbatim; otherwise the query's
// terms are joined with spaces.
func RelevanceText(raw string, q *ParsedQuery) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, ":") && !strings.Contains(raw, sepAnd) && !strings.Contains(raw, sepOr) {
		return raw
	}
	return strings.Join(Terms(q), " ")
}
