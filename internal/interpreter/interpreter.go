// Package interpreter turns raw dataset tables into answers.
//
// It carries the three model-facing stages of the pipeline: reducing large
// tables to question-relevant rows, generating the narrative answer, and
// structured row extraction. Row filtering never executes model output; the
// model returns a declarative plan and the table package applies it.
package interpreter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samarthdata/samarth/internal/llm"
	"github.com/samarthdata/samarth/internal/log"
	"github.com/samarthdata/samarth/internal/table"
)

// FilterThreshold is the row count above which tables are LLM-filtered
// before interpretation.
const FilterThreshold = 100

// Input is one dataset handed to Answer.
type Input struct {
	Name  string
	Table *table.Table
	Meta  table.Meta
}

// Result is a generated answer with source attribution.
type Result struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Interpreter runs the model-facing pipeline stages.
type Interpreter struct {
	gen    llm.Generator
	logger log.Logger
}

// New creates an interpreter.
func New(gen llm.Generator, logger log.Logger) *Interpreter {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Interpreter{gen: gen, logger: logger}
}

// filterPlan is the JSON shape the filter prompt requests.
type filterPlan struct {
	Conditions []table.Condition `json:"conditions"`
}

// FilterTable reduces a large table to the rows relevant to the question.
// Every failure mode - model error, unparseable plan, plan that matches
// nothing - returns the original table: filtering is an optimization, never
// a gate.
func (i *Interpreter) FilterTable(ctx context.Context, question string, t *table.Table, name string) *table.Table {
	if t.NumRows() <= FilterThreshold {
		return t
	}

	i.logger.Debug("filtering table", "dataset", name, "rows", t.NumRows())

	out, err := i.gen.Generate(ctx, llm.Request{
		Prompt:      filterPrompt(question, t, name),
		Temperature: 0.1,
	})
	if err != nil {
		i.logger.Warn("filter plan generation failed, using full table", "dataset", name, "error", err)
		return t
	}

	var plan filterPlan
	if err := json.Unmarshal([]byte(llm.StripFences(out)), &plan); err != nil {
		i.logger.Warn("filter plan unparseable, using full table", "dataset", name, "error", err)
		return t
	}
	if len(plan.Conditions) == 0 {
		i.logger.Debug("no filtering needed per model", "dataset", name)
		return t
	}

	// Backfill historical spellings the model omitted.
	for ci, cond := range plan.Conditions {
		if len(cond.Alternates) == 0 {
			plan.Conditions[ci].Alternates = variantsFor(cond.Value)
		}
	}

	filtered, skipped := t.Filter(plan.Conditions)
	if len(skipped) > 0 {
		i.logger.Warn("filter conditions referenced unknown columns", "dataset", name, "skipped", skipped)
	}
	if filtered.NumRows() == 0 {
		i.logger.Warn("filter plan matched no rows, using full table", "dataset", name)
		return t
	}

	i.logger.Debug("filtered table", "dataset", name, "rows_before", t.NumRows(), "rows_after", filtered.NumRows())
	return filtered
}

// Answer generates the narrative answer over the given datasets.
// maxRows caps the sample rows rendered per dataset.
func (i *Interpreter) Answer(ctx context.Context, question string, datasets []Input, maxRows int) (Result, error) {
	if len(datasets) == 0 {
		return Result{}, fmt.Errorf("interpreter: no datasets to answer from")
	}
	if maxRows <= 0 {
		maxRows = 500
	}

	summaries := make([]string, len(datasets))
	sources := make([]string, len(datasets))
	for idx, ds := range datasets {
		summaries[idx] = ds.Table.RenderPrompt(ds.Name, ds.Meta, maxRows)
		sources[idx] = ds.Name
	}

	out, err := i.gen.Generate(ctx, llm.Request{
		System:      interpretSystem,
		Prompt:      interpretPrompt(question, summaries),
		Temperature: 0.7,
	})
	if err != nil {
		return Result{}, fmt.Errorf("interpreting datasets: %w", err)
	}

	return Result{Answer: out, Sources: sources}, nil
}

// ExtractRows asks the model to extract structured rows from a table.
// Useful when downstream processing needs specific fields rather than prose.
func (i *Interpreter) ExtractRows(ctx context.Context, task string, t *table.Table, name string) (*table.Table, error) {
	summary := t.RenderPrompt(name, table.Meta{}, 100)

	out, err := i.gen.Generate(ctx, llm.Request{
		Prompt:      extractPrompt(task, summary),
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("extracting rows from %s: %w", name, err)
	}

	cleaned := llm.StripFences(out)

	var rawRows []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &rawRows); err != nil {
		return nil, fmt.Errorf("decoding extracted rows from %s: %w", name, err)
	}
	if len(rawRows) == 0 {
		return &table.Table{}, nil
	}

	columns, err := table.KeyOrder(rawRows[0])
	if err != nil {
		return nil, fmt.Errorf("reading extracted column order: %w", err)
	}

	records := make([]map[string]any, 0, len(rawRows))
	for idx, raw := range rawRows {
		m := map[string]any{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decoding extracted row %d: %w", idx, err)
		}
		records = append(records, m)
	}

	i.logger.Debug("extracted structured rows", "dataset", name, "rows", len(records))
	return table.FromRecords(columns, records), nil
}
