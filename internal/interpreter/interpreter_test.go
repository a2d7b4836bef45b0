package interpreter

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/samarthdata/samarth/internal/llm"
	"github.com/samarthdata/samarth/internal/log"
	"github.com/samarthdata/samarth/internal/table"
)

// fakeGen returns a fixed response and records requests.
type fakeGen struct {
	response string
	err      error
	requests []llm.Request
}

func (f *fakeGen) Generate(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// bigTable returns a table above the filter threshold with a state column.
func bigTable() *table.Table {
	t := &table.Table{Columns: []string{"state", "year", "rainfall"}}
	states := []string{"ORISSA", "KERALA", "PUNJAB"}
	for i := range 300 {
		t.Rows = append(t.Rows, []string{states[i%3], strconv.Itoa(1990 + i%30), strconv.Itoa(500 + i)})
	}
	return t
}

func TestFilterTableSmallTableUntouched(t *testing.T) {
	t.Parallel()

	gen := &fakeGen{}
	i := New(gen, log.NewNop())

	small := &table.Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}
	if got := i.FilterTable(context.Background(), "q", small, "ds"); got != small {
		t.Error("small table should pass through without a model call")
	}
	if len(gen.requests) != 0 {
		t.Error("model called for small table")
	}
}

func TestFilterTableAppliesPlan(t *testing.T) {
	t.Parallel()

	gen := &fakeGen{response: "```json\n" + `{"conditions": [{"column": "state", "op": "contains", "value": "Odisha", "alternates": ["Orissa"]}]}` + "\n```"}
	i := New(gen, log.NewNop())

	src := bigTable()
	got := i.FilterTable(context.Background(), "rainfall in Odisha", src, "Rainfall")

	if got.NumRows() != 100 {
		t.Fatalf("filtered rows = %d, want 100 (every third row is ORISSA)", got.NumRows())
	}
	for _, row := range got.Rows[:5] {
		if row[0] != "ORISSA" {
			t.Fatalf("row state = %q, want ORISSA", row[0])
		}
	}
}

func TestFilterTableBackfillsVariants(t *testing.T) {
	t.Parallel()

	// Model names the state but forgets the historical spelling.
	gen := &fakeGen{response: `{"conditions": [{"column": "state", "op": "contains", "value": "Odisha"}]}`}
	i := New(gen, log.NewNop())

	got := i.FilterTable(context.Background(), "rainfall in Odisha", bigTable(), "Rainfall")
	if got.NumRows() != 100 {
		t.Fatalf("filtered rows = %d, want 100 (ORISSA matched via backfilled variants)", got.NumRows())
	}
}

func TestFilterTableGracefulFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		err      error
	}{
		{name: "model error", err: errors.New("503 unavailable")},
		{name: "unparseable plan", response: "I think you should filter by state."},
		{name: "empty plan", response: `{"conditions": []}`},
		{name: "plan matches nothing", response: `{"conditions": [{"column": "state", "op": "equals", "value": "Atlantis"}]}`},
		{name: "unknown column only", response: `{"conditions": [{"column": "district", "op": "contains", "value": "Cuttack"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &fakeGen{response: tt.response, err: tt.err}
			i := New(gen, log.NewNop())

			src := bigTable()
			got := i.FilterTable(context.Background(), "question", src, "ds")
			if got.NumRows() != src.NumRows() {
				t.Errorf("rows = %d, want original %d", got.NumRows(), src.NumRows())
			}
		})
	}
}

func TestFilterTableUnknownColumnConditionSkipped(t *testing.T) {
	t.Parallel()

	// One bad condition is skipped; the good one still applies.
	gen := &fakeGen{response: `{"conditions": [
		{"column": "district", "op": "contains", "value": "Cuttack"},
		{"column": "state", "op": "contains", "value": "Kerala"}
	]}`}
	i := New(gen, log.NewNop())

	got := i.FilterTable(context.Background(), "q", bigTable(), "ds")
	if got.NumRows() != 100 {
		t.Fatalf("rows = %d, want 100 (Kerala rows)", got.NumRows())
	}
}

func TestAnswer(t *testing.T) {
	t.Parallel()

	gen := &fakeGen{response: "Looking at the data, Odisha received 1396.3mm in 1951."}
	i := New(gen, log.NewNop())

	datasets := []Input{
		{
			Name:  "Rainfall Statistics",
			Table: &table.Table{Columns: []string{"state", "annual"}, Rows: [][]string{{"ORISSA", "1396.3"}}},
			Meta:  table.Meta{Publisher: "IMD", Category: "climate"},
		},
		{
			Name:  "Crop Production",
			Table: &table.Table{Columns: []string{"crop", "production"}, Rows: [][]string{{"Rice", "5000"}}},
		},
	}

	res, err := i.Answer(context.Background(), "How much rain fell in Odisha in 1951?", datasets, 100)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if !strings.Contains(res.Answer, "1396.3mm") {
		t.Errorf("Answer = %q, want model text", res.Answer)
	}
	if len(res.Sources) != 2 || res.Sources[0] != "Rainfall Statistics" {
		t.Errorf("Sources = %v, want both dataset names", res.Sources)
	}

	req := gen.requests[0]
	if !strings.Contains(req.System, "professor of agricultural and climate sciences") {
		t.Error("system prompt missing persona")
	}
	if !strings.Contains(req.Prompt, "### Dataset: Rainfall Statistics") ||
		!strings.Contains(req.Prompt, "### Dataset: Crop Production") {
		t.Error("prompt missing dataset blocks")
	}
	if !strings.Contains(req.Prompt, "How much rain fell in Odisha in 1951?") {
		t.Error("prompt missing question")
	}
}

func TestAnswerNoDatasets(t *testing.T) {
	t.Parallel()

	i := New(&fakeGen{}, log.NewNop())
	if _, err := i.Answer(context.Background(), "q", nil, 100); err == nil {
		t.Error("Answer() with no datasets: want error")
	}
}

func TestAnswerModelError(t *testing.T) {
	t.Parallel()

	i := New(&fakeGen{err: errors.New("quota exceeded")}, log.NewNop())
	datasets := []Input{{Name: "ds", Table: &table.Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}}}

	if _, err := i.Answer(context.Background(), "q", datasets, 100); err == nil {
		t.Error("Answer() with model error: want error")
	}
}

func TestExtractRows(t *testing.T) {
	t.Parallel()

	gen := &fakeGen{response: "```json\n" + `[
		{"state": "Maharashtra", "year": 2020, "rainfall_mm": 850.5},
		{"state": "Punjab", "year": 2020, "rainfall_mm": 650.2}
	]` + "\n```"}
	i := New(gen, log.NewNop())

	src := &table.Table{Columns: []string{"raw"}, Rows: [][]string{{"blob"}}}
	got, err := i.ExtractRows(context.Background(), "Extract state, year, rainfall", src, "ds")
	if err != nil {
		t.Fatalf("ExtractRows() error = %v", err)
	}

	wantCols := []string{"state", "year", "rainfall_mm"}
	if got.NumCols() != 3 {
		t.Fatalf("Columns = %v, want %v", got.Columns, wantCols)
	}
	for idx, col := range wantCols {
		if got.Columns[idx] != col {
			t.Errorf("Columns[%d] = %q, want %q (model's field order)", idx, got.Columns[idx], col)
		}
	}
	if got.NumRows() != 2 || got.Rows[0][2] != "850.5" || got.Rows[1][0] != "Punjab" {
		t.Errorf("rows = %v", got.Rows)
	}
}

func TestExtractRowsBadJSON(t *testing.T) {
	t.Parallel()

	i := New(&fakeGen{response: "sorry, I cannot"}, log.NewNop())
	src := &table.Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}

	if _, err := i.ExtractRows(context.Background(), "task", src, "ds"); err == nil {
		t.Error("ExtractRows() with non-JSON output: want error")
	}
}

func TestVariantHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		question string
		contains []string
		empty    bool
	}{
		{
			name:     "current name mentioned",
			question: "rainfall in Odisha in 1951",
			contains: []string{"ORISSA", "ODISHA"},
		},
		{
			name:     "historical name mentioned",
			question: "what was rainfall in bombay",
			contains: []string{"BOMBAY", "MUMBAI"},
		},
		{
			name:     "no renamed places",
			question: "rainfall in Kerala",
			empty:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := variantHints(tt.question)
			if tt.empty {
				if got != "" {
					t.Errorf("variantHints() = %q, want empty", got)
				}
				return
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("variantHints() = %q, missing %q", got, want)
				}
			}
		})
	}
}
