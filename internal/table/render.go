package table

import (
	"fmt"
	"strings"
)

// Meta carries dataset metadata into the rendered prompt block.
type Meta struct {
	Publisher string
	Category  string
	TotalRows int // row count before sampling; 0 means same as table
}

// RenderPrompt renders the table as an LLM-facing text block: header,
// column inventory with non-null counts, pipe-delimited sample rows, and a
// numeric summary. maxRows caps the rows shown (smart-sampled, not truncated).
func (t *Table) RenderPrompt(name string, meta Meta, maxRows int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### Dataset: %s\n", name)
	if meta.Publisher != "" {
		fmt.Fprintf(&b, "Publisher: %s\n", meta.Publisher)
	}
	if meta.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", meta.Category)
	}

	total := meta.TotalRows
	if total < t.NumRows() {
		total = t.NumRows()
	}

	sampled := t.SmartSample(maxRows)
	if sampled.NumRows() < total {
		fmt.Fprintf(&b, "Rows: %d total, %d shown (sampled from start, middle, end)\n", total, sampled.NumRows())
	} else {
		fmt.Fprintf(&b, "Rows: %d\n", total)
	}

	b.WriteString("Columns (non-null counts):\n")
	counts := t.NonNullCounts()
	for i, col := range t.Columns {
		fmt.Fprintf(&b, "  - %s: %d non-null\n", col, counts[i])
	}

	b.WriteString("Sample rows:\n```\n")
	b.WriteString(strings.Join(sampled.Columns, " | "))
	b.WriteString("\n")
	for _, row := range sampled.Rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	b.WriteString("```\n")

	if stats := t.NumericSummary(); len(stats) > 0 {
		b.WriteString("Numeric summary:\n")
		for _, s := range stats {
			fmt.Fprintf(&b, "  - %s: count=%d min=%.4g max=%.4g mean=%.4g std=%.4g\n",
				s.Column, s.Count, s.Min, s.Max, s.Mean, s.StdDev)
		}
	}

	return b.String()
}
