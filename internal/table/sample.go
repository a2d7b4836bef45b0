package table

import (
	"math"
	"strconv"
	"strings"
)

// SmartSample reduces a table to at most max rows while keeping its shape
// visible: 40% from the head, 20% from the middle, 40% from the tail. Many
// government datasets are sorted by year or state, so a plain head() would
// hide everything after the first few states.
func (t *Table) SmartSample(max int) *Table {
	if max <= 0 || t.NumRows() <= max {
		return t
	}

	head := int(float64(max) * 0.4)
	middle := int(float64(max) * 0.2)
	tail := max - head - middle

	out := &Table{Columns: append([]string(nil), t.Columns...)}
	out.Rows = append(out.Rows, t.Rows[:head]...)

	midStart := (t.NumRows() - middle) / 2
	out.Rows = append(out.Rows, t.Rows[midStart:midStart+middle]...)

	out.Rows = append(out.Rows, t.Rows[t.NumRows()-tail:]...)
	return out
}

// ColumnStats summarizes one numeric-majority column.
type ColumnStats struct {
	Column string
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// NumericSummary computes statistics for every column where at least half the
// non-empty values parse as numbers. Thousands separators are tolerated.
func (t *Table) NumericSummary() []ColumnStats {
	var out []ColumnStats

	for ci, col := range t.Columns {
		var values []float64
		nonEmpty := 0
		for _, row := range t.Rows {
			if ci >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[ci])
			if cell == "" || strings.EqualFold(cell, "na") || strings.EqualFold(cell, "null") {
				continue
			}
			nonEmpty++
			if v, err := parseNumber(cell); err == nil {
				values = append(values, v)
			}
		}

		if nonEmpty == 0 || len(values)*2 < nonEmpty {
			continue
		}

		stats := ColumnStats{Column: col, Count: len(values), Min: values[0], Max: values[0]}
		sum := 0.0
		for _, v := range values {
			sum += v
			stats.Min = math.Min(stats.Min, v)
			stats.Max = math.Max(stats.Max, v)
		}
		stats.Mean = sum / float64(len(values))

		var sq float64
		for _, v := range values {
			d := v - stats.Mean
			sq += d * d
		}
		stats.StdDev = math.Sqrt(sq / float64(len(values)))

		out = append(out, stats)
	}
	return out
}

// parseNumber parses a cell as a float, tolerating thousands separators.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}

// NonNullCounts returns the count of non-empty cells per column.
func (t *Table) NonNullCounts() []int {
	counts := make([]int, len(t.Columns))
	for _, row := range t.Rows {
		for ci := range t.Columns {
			if ci < len(row) && strings.TrimSpace(row[ci]) != "" {
				counts[ci]++
			}
		}
	}
	return counts
}
