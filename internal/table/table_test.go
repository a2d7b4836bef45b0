package table

import (
	"strconv"
	"strings"
	"testing"
)

func TestFromRecords(t *testing.T) {
	t.Parallel()

	cols := []string{"state", "year", "rainfall_mm", "flag"}
	records := []map[string]any{
		{"state": " Odisha ", "year": float64(2020), "rainfall_mm": 120.5, "flag": true},
		{"state": "Kerala", "year": float64(2021)}, // missing cells
	}

	tbl := FromRecords(cols, records)

	if tbl.NumRows() != 2 || tbl.NumCols() != 4 {
		t.Fatalf("shape = %dx%d, want 2x4", tbl.NumRows(), tbl.NumCols())
	}

	want := []string{"Odisha", "2020", "120.5", "true"}
	for i, cell := range want {
		if tbl.Rows[0][i] != cell {
			t.Errorf("Rows[0][%d] = %q, want %q", i, tbl.Rows[0][i], cell)
		}
	}
	if tbl.Rows[1][2] != "" {
		t.Errorf("missing cell = %q, want empty", tbl.Rows[1][2])
	}
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	in := "State,Year,Value\nOdisha,2020,100\nKerala,2021\nPunjab,2022,300,extra\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if tbl.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", tbl.NumRows())
	}
	if tbl.Rows[1][2] != "" {
		t.Errorf("short row not padded: %v", tbl.Rows[1])
	}
	if len(tbl.Rows[2]) != 3 {
		t.Errorf("long row not truncated: %v", tbl.Rows[2])
	}
}

func TestNormalizeColumns(t *testing.T) {
	t.Parallel()

	tbl := &Table{Columns: []string{" State Name ", "Annual-Rainfall", "YEAR"}}
	tbl.NormalizeColumns()

	want := []string{"state_name", "annual_rainfall", "year"}
	for i, col := range want {
		if tbl.Columns[i] != col {
			t.Errorf("Columns[%d] = %q, want %q", i, tbl.Columns[i], col)
		}
	}
}

func TestExpandTabSeparated(t *testing.T) {
	t.Parallel()

	t.Run("header names recovered", func(t *testing.T) {
		t.Parallel()

		tbl := &Table{
			Columns: []string{"state_year_rainfall"},
			Rows: [][]string{
				{"Odisha\t2020\t1200"},
				{"Kerala\t2021\t3100"},
			},
		}

		if !tbl.ExpandTabSeparated() {
			t.Fatal("ExpandTabSeparated() = false, want true")
		}

		want := []string{"state", "year", "rainfall"}
		if tbl.NumCols() != 3 {
			t.Fatalf("Columns = %v, want %v", tbl.Columns, want)
		}
		for i, col := range want {
			if tbl.Columns[i] != col {
				t.Errorf("Columns[%d] = %q, want %q", i, tbl.Columns[i], col)
			}
		}
		if tbl.Rows[0][1] != "2020" {
			t.Errorf("Rows[0][1] = %q, want 2020", tbl.Rows[0][1])
		}
	})

	t.Run("positional fallback on name mismatch", func(t *testing.T) {
		t.Parallel()

		tbl := &Table{
			Columns: []string{"data"},
			Rows: [][]string{
				{"a\tb\tc"},
				{"d\te\tf"},
			},
		}

		if !tbl.ExpandTabSeparated() {
			t.Fatal("ExpandTabSeparated() = false, want true")
		}
		want := []string{"col_1", "col_2", "col_3"}
		for i, col := range want {
			if tbl.Columns[i] != col {
				t.Errorf("Columns[%d] = %q, want %q", i, tbl.Columns[i], col)
			}
		}
	})

	t.Run("duplicate names get suffixes", func(t *testing.T) {
		t.Parallel()

		tbl := &Table{
			Columns: []string{"state", "state_value"},
			Rows: [][]string{
				{"Odisha", "Odisha\t10"},
				{"Kerala", "Kerala\t20"},
			},
		}

		if !tbl.ExpandTabSeparated() {
			t.Fatal("ExpandTabSeparated() = false, want true")
		}
		want := []string{"state", "state_2", "value"}
		for i, col := range want {
			if tbl.Columns[i] != col {
				t.Errorf("Columns[%d] = %q, want %q", i, tbl.Columns[i], col)
			}
		}
	})

	t.Run("clean table untouched", func(t *testing.T) {
		t.Parallel()

		tbl := &Table{
			Columns: []string{"state", "year"},
			Rows:    [][]string{{"Odisha", "2020"}},
		}
		if tbl.ExpandTabSeparated() {
			t.Error("ExpandTabSeparated() = true on clean table")
		}
	})

	t.Run("ragged rows padded", func(t *testing.T) {
		t.Parallel()

		tbl := &Table{
			Columns: []string{"a_b_c"},
			Rows: [][]string{
				{"1\t2\t3"},
				{"4\t5"},
			},
		}
		if !tbl.ExpandTabSeparated() {
			t.Fatal("ExpandTabSeparated() = false, want true")
		}
		if got := tbl.Rows[1][2]; got != "" {
			t.Errorf("padded cell = %q, want empty", got)
		}
	})

	t.Run("rows missing the tab column", func(t *testing.T) {
		t.Parallel()

		// HTML exports drop trailing cells, leaving rows shorter than the
		// header. The short row must not derail the expansion.
		tbl := &Table{
			Columns: []string{"state", "season_area_yield"},
			Rows: [][]string{
				{"Odisha", "a\tb\tc"},
				{"Kerala", "d\te\tf"},
				{"Punjab"},
			},
		}

		if !tbl.ExpandTabSeparated() {
			t.Fatal("ExpandTabSeparated() = false, want true")
		}
		if tbl.NumCols() != 4 {
			t.Fatalf("Columns = %v, want 4 columns", tbl.Columns)
		}
		for _, row := range tbl.Rows {
			if len(row) != 4 {
				t.Fatalf("row %v has %d cells, want 4", row, len(row))
			}
		}
		if tbl.Rows[2][0] != "Punjab" || tbl.Rows[2][1] != "" {
			t.Errorf("short row expanded to %v, want Punjab with empty cells", tbl.Rows[2])
		}
	})
}

func TestSmartSample(t *testing.T) {
	t.Parallel()

	tbl := &Table{Columns: []string{"n"}}
	for i := range 100 {
		tbl.Rows = append(tbl.Rows, []string{strconv.Itoa(i)})
	}

	sampled := tbl.SmartSample(10)
	if sampled.NumRows() != 10 {
		t.Fatalf("rows = %d, want 10", sampled.NumRows())
	}

	// 40% head, 20% middle, 40% tail.
	if sampled.Rows[0][0] != "0" || sampled.Rows[3][0] != "3" {
		t.Errorf("head sample wrong: %v", sampled.Rows[:4])
	}
	if sampled.Rows[4][0] != "49" {
		t.Errorf("middle sample = %q, want 49", sampled.Rows[4][0])
	}
	if sampled.Rows[9][0] != "99" {
		t.Errorf("tail sample = %q, want 99", sampled.Rows[9][0])
	}

	// Under the cap: same table back.
	small := &Table{Columns: []string{"n"}, Rows: [][]string{{"1"}}}
	if got := small.SmartSample(10); got != small {
		t.Error("SmartSample on small table should return the table itself")
	}
}

func TestNumericSummary(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Columns: []string{"state", "rainfall", "notes"},
		Rows: [][]string{
			{"Odisha", "1,200", "wet"},
			{"Kerala", "3000", ""},
			{"Rajasthan", "NA", "dry"},
			{"Punjab", "600", "x"},
		},
	}

	stats := tbl.NumericSummary()
	if len(stats) != 1 {
		t.Fatalf("stats = %d columns, want 1 (rainfall only)", len(stats))
	}

	s := stats[0]
	if s.Column != "rainfall" {
		t.Errorf("Column = %q, want rainfall", s.Column)
	}
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.Min != 600 || s.Max != 3000 {
		t.Errorf("Min/Max = %g/%g, want 600/3000", s.Min, s.Max)
	}
	if s.Mean != 1600 {
		t.Errorf("Mean = %g, want 1600", s.Mean)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Columns: []string{"state", "year", "production"},
		Rows: [][]string{
			{"Odisha", "2019", "100"},
			{"Orissa", "2020", "150"},
			{"Kerala", "2020", "200"},
			{"Odisha", "2021", "no data"},
		},
	}

	tests := []struct {
		name        string
		conds       []Condition
		wantRows    int
		wantSkipped int
	}{
		{
			name:     "contains with historical alternate",
			conds:    []Condition{{Column: "state", Op: OpContains, Value: "odisha", Alternates: []string{"orissa"}}},
			wantRows: 3,
		},
		{
			name:     "equals case-insensitive",
			conds:    []Condition{{Column: "state", Op: OpEquals, Value: "KERALA"}},
			wantRows: 1,
		},
		{
			name: "and semantics",
			conds: []Condition{
				{Column: "year", Op: OpGTE, Value: "2020"},
				{Column: "state", Op: OpContains, Value: "odisha", Alternates: []string{"orissa"}},
			},
			wantRows: 2, // Orissa/2020 and Odisha/2021
		},
		{
			name:        "unknown column skipped",
			conds:       []Condition{{Column: "district", Op: OpContains, Value: "x"}},
			wantRows:    4,
			wantSkipped: 1,
		},
		{
			name:     "numeric lte skips unparseable cells",
			conds:    []Condition{{Column: "production", Op: OpLTE, Value: "150"}},
			wantRows: 2,
		},
		{
			name:        "bad numeric value skips condition",
			conds:       []Condition{{Column: "year", Op: OpGTE, Value: "recent"}},
			wantRows:    4,
			wantSkipped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, skipped := tbl.Filter(tt.conds)
			if len(skipped) != tt.wantSkipped {
				t.Errorf("skipped = %v, want %d", skipped, tt.wantSkipped)
			}
			if got.NumRows() != tt.wantRows {
				t.Errorf("rows = %d, want %d", got.NumRows(), tt.wantRows)
			}
		})
	}
}

func TestRenderPrompt(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Columns: []string{"state", "rainfall"},
		Rows: [][]string{
			{"Odisha", "1200"},
			{"Kerala", "3000"},
		},
	}

	out := tbl.RenderPrompt("Annual Rainfall", Meta{Publisher: "IMD", Category: "climate"}, 50)

	for _, want := range []string{
		"### Dataset: Annual Rainfall",
		"Publisher: IMD",
		"Category: climate",
		"state | rainfall",
		"Odisha | 1200",
		"rainfall: count=2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderPrompt() missing %q:\n%s", want, out)
		}
	}
}

func TestFromHTML(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<table>
			<tr><th>State</th><th>Value</th></tr>
			<tr><td>Odisha</td><td>10</td></tr>
			<tr><td>Kerala</td><td>20</td></tr>
		</table>
	</body></html>`

	tbl, err := FromHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("FromHTML() error = %v", err)
	}
	if tbl.NumRows() != 2 || tbl.NumCols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", tbl.NumRows(), tbl.NumCols())
	}
	if tbl.Columns[0] != "State" || tbl.Rows[1][1] != "20" {
		t.Errorf("unexpected content: cols=%v rows=%v", tbl.Columns, tbl.Rows)
	}

	if _, err := FromHTML(strings.NewReader("<p>no table</p>")); err == nil {
		t.Error("FromHTML() on table-less document: want error")
	}
}
