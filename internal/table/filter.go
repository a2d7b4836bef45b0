package table

import (
	"strings"
)

// Operators accepted by Filter.
const (
	OpContains = "contains"
	OpEquals   = "equals"
	OpGTE      = "gte"
	OpLTE      = "lte"
)

// Condition is one row-selection predicate. Conditions come from an LLM
// filter plan, so they are validated and matched leniently rather than
// rejected on the first irregularity.
type Condition struct {
	// Column is the target column (normalized or original spelling).
	Column string `json:"column"`

	// Op is one of contains, equals, gte, lte.
	Op string `json:"op"`

	// Value is the comparison value.
	Value string `json:"value"`

	// Alternates are accepted alongside Value for contains/equals, covering
	// historical spellings (Odisha vs Orissa).
	Alternates []string `json:"alternates,omitempty"`
}

// Filter returns the rows matching all conditions (AND semantics), plus the
// names of conditions that were skipped because their column doesn't exist.
// Text matching is case-insensitive; gte/lte compare numerically and skip
// rows whose cell doesn't parse.
func (t *Table) Filter(conditions []Condition) (*Table, []string) {
	out := &Table{Columns: append([]string(nil), t.Columns...)}

	type compiled struct {
		idx  int
		cond Condition
		num  float64
	}

	var active []compiled
	var skipped []string
	for _, cond := range conditions {
		idx := t.ColumnIndex(cond.Column)
		if idx < 0 {
			idx = t.ColumnIndex(NormalizeName(cond.Column))
		}
		if idx < 0 {
			skipped = append(skipped, cond.Column)
			continue
		}

		c := compiled{idx: idx, cond: cond}
		if cond.Op == OpGTE || cond.Op == OpLTE {
			v, err := parseNumber(cond.Value)
			if err != nil {
				skipped = append(skipped, cond.Column)
				continue
			}
			c.num = v
		}
		active = append(active, c)
	}

	for _, row := range t.Rows {
		match := true
		for _, c := range active {
			if c.idx >= len(row) || !matchCell(row[c.idx], c.cond, c.num) {
				match = false
				break
			}
		}
		if match {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, skipped
}

func matchCell(cell string, cond Condition, num float64) bool {
	switch cond.Op {
	case OpContains:
		return textMatch(cell, cond, strings.Contains)
	case OpEquals:
		return textMatch(cell, cond, func(a, b string) bool { return a == b })
	case OpGTE:
		v, err := parseNumber(cell)
		return err == nil && v >= num
	case OpLTE:
		v, err := parseNumber(cell)
		return err == nil && v <= num
	default:
		return false
	}
}

func textMatch(cell string, cond Condition, pred func(cell, want string) bool) bool {
	got := strings.ToLower(strings.TrimSpace(cell))
	if pred(got, strings.ToLower(strings.TrimSpace(cond.Value))) {
		return true
	}
	for _, alt := range cond.Alternates {
		if pred(got, strings.ToLower(strings.TrimSpace(alt))) {
			return true
		}
	}
	return false
}
