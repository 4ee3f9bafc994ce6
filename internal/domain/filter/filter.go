package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Operator selects how a condition's values are compared with stored data.
type Operator string

const (
	// OpTag is a case-insensitive exact match (name, school).
	OpTag Operator = "tag"
	// OpNumeric is numeric-set membership (level, challenge_rating).
	OpNumeric Operator = "numeric"
	// OpText is a case-insensitive substring match (desc).
	OpText Operator = "text"
	// OpScope is a case-sensitive exact match on a reference slug.
	OpScope Operator = "scope"
)

// Condition is a (field, operator, value-set) triple. Values are OR-combined.
type Condition struct {
	field   string
	op      Operator
	values  []string
	numbers []float64
}

// NewMatch creates a case-insensitive tag condition. Values are lower-cased.
func NewMatch(field string, values ...string) (Condition, error) {
	return newStringCondition(field, OpTag, values, true)
}

// NewText creates a case-insensitive substring condition. Values are lower-cased.
func NewText(field string, values ...string) (Condition, error) {
	return newStringCondition(field, OpText, values, true)
}

// NewScope creates a case-sensitive slug condition used by nested resolution.
func NewScope(field string, values ...string) (Condition, error) {
	return newStringCondition(field, OpScope, values, false)
}

// NewNumericSet creates a numeric-set membership condition.
func NewNumericSet(field string, values ...float64) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for field %q", field)
	}
	nums := slices.Clone(values)
	slices.Sort(nums)
	nums = slices.Compact(nums)
	return Condition{field: field, op: OpNumeric, numbers: nums}, nil
}

func newStringCondition(field string, op Operator, values []string, fold bool) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	vals := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if fold {
			v = strings.ToLower(v)
		}
		if v != "" {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for field %q", field)
	}
	slices.Sort(vals)
	vals = slices.Compact(vals)
	return Condition{field: field, op: op, values: vals}, nil
}

// Field returns the index field name.
func (c Condition) Field() string { return c.field }

// Operator returns the comparison operator.
func (c Condition) Operator() Operator { return c.op }

// Values returns the sorted string values (tag, text, scope).
func (c Condition) Values() []string { return c.values }

// Numbers returns the sorted numeric values (numeric).
func (c Condition) Numbers() []float64 { return c.numbers }

func (c Condition) canonical() string {
	var b strings.Builder
	b.WriteString(c.field)
	b.WriteByte(':')
	b.WriteString(string(c.op))
	b.WriteByte('=')
	if c.op == OpNumeric {
		for i, n := range c.numbers {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(FormatNumber(n))
		}
		return b.String()
	}
	for i, v := range c.values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(v))
	}
	return b.String()
}

// Expression is a conjunction of conditions, one per field.
type Expression struct {
	conditions []Condition
}

// NewExpression builds an expression ordered by field name.
// A later condition on the same field replaces an earlier one.
func NewExpression(conds ...Condition) Expression {
	var e Expression
	for _, c := range conds {
		e = e.With(c)
	}
	return e
}

// With returns a copy of e with c added (or replacing the condition on c's field).
func (e Expression) With(c Condition) Expression {
	out := make([]Condition, 0, len(e.conditions)+1)
	for _, existing := range e.conditions {
		if existing.field != c.field {
			out = append(out, existing)
		}
	}
	out = append(out, c)
	slices.SortFunc(out, func(a, b Condition) int { return strings.Compare(a.field, b.field) })
	return Expression{conditions: out}
}

// Conditions returns the conditions sorted by field.
func (e Expression) Conditions() []Condition { return e.conditions }

// IsEmpty reports whether the expression selects every record.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

// Canonical returns a stable, order-independent representation suitable for
// hashing into a cache key. The empty expression canonicalizes to "".
func (e Expression) Canonical() string {
	parts := make([]string, len(e.conditions))
	for i, c := range e.conditions {
		parts[i] = c.canonical()
	}
	return strings.Join(parts, ";")
}

// FormatNumber renders a numeric filter value in its shortest exact form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
