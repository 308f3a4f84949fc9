package query

import "strings"

const (
	sepAnd = " AND "
	sepOr  = " OR "
)

// Split cuts query into clauses on sep, ignoring separators that appear
// inside double quotes or parentheses. A quote preceded by a backslash does
// not toggle quoting. Unbalanced quotes or parentheses are not an error: the
// scan finishes and whatever parts it produced are returned.
func Split(query, sep string) []string {
	if sep == "" {
		return []string{strings.TrimSpace(query)}
	}
	var parts []string
	var current strings.Builder
	inQuotes := false
	depth := 0
	for i := 0; i < len(query); {
		if !inQuotes && depth == 0 && strings.HasPrefix(query[i:], sep) {
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
			i += len(sep)
			continue
		}
		c := query[i]
		switch {
		case c == '"' && (i == 0 || query[i-1] != '\\'):
			inQuotes = !inQuotes
		case c == '(' && !inQuotes:
			depth++
		case c == ')' && !inQuotes:
			depth--
		}
		current.WriteByte(c)
		i++
	}
	if last := strings.TrimSpace(current.String()); last != "" {
		parts = append(parts, last)
	}
	return parts
}

// clauses picks the query-wide logical operator and splits accordingly.
// " OR " anywhere in the text wins over " AND ".
func clauses(raw string) ([]string, LogicalOperator) {
	switch {
	case strings.Contains(raw, sepOr):
		return Split(raw, sepOr), LogicalOr
	case strings.Contains(raw, sepAnd):
		return Split(raw, sepAnd), LogicalAnd
	default:
		return []string{strings.TrimSpace(raw)}, LogicalAnd
	}
}
