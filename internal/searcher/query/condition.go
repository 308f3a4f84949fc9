package query

// Operator is the comparison a condition applies to a field.
type Operator string

const (
	OpContains    Operator = "contains"
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpStartsWith  Operator = "startsWith"
	OpEndsWith    Operator = "endsWith"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
	OpBetween     Operator = "between"
	OpIn          Operator = "in"
	OpNotIn       Operator = "notIn"
	OpExists      Operator = "exists"
	OpNotExists   Operator = "notExists"
)

// foldsNegation reports whether a leading "!" was already turned into the
// operator itself by the parser, so Negated must not invert the result again.
func (op Operator) foldsNegation() bool {
	switch op {
	case OpExists, OpNotExists, OpIn, OpNotIn:
		return true
	}
	return false
}

func (op Operator) numeric() bool {
	return op == OpGreaterThan || op == OpLessThan || op == OpBetween
}

// LogicalOperator combines all conditions of a query.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Condition is a single field predicate. Value is kept as text; numeric and
// date coercion happens at evaluation time. ValueEnd is set only for between.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
	ValueEnd string   `json:"valueEnd,omitempty"`
	Negated  bool     `json:"negated"`
}

// ParsedQuery is an ordered condition list joined by one logical operator.
type ParsedQuery struct {
	Conditions      []Condition     `json:"conditions"`
	LogicalOperator LogicalOperator `json:"logicalOperator"`
}

// Empty reports whether the query has no conditions.
func (q *ParsedQuery) Empty() bool {
	return q == nil || len(q.Conditions) == 0
}
