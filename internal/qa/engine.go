// Package qa orchestrates the question-answering pipeline: discovery,
// fetching, row filtering, and interpretation.
package qa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/samarthdata/samarth/internal/catalog"
	"github.com/samarthdata/samarth/internal/datagov"
	"github.com/samarthdata/samarth/internal/interpreter"
	"github.com/samarthdata/samarth/internal/log"
	"github.com/samarthdata/samarth/internal/table"
)

var (
	// ErrEmptyQuestion indicates a blank question.
	ErrEmptyQuestion = errors.New("qa: question is empty")

	// ErrUnsupportedFormat indicates a catalog entry whose published format
	// the pipeline cannot parse.
	ErrUnsupportedFormat = errors.New("qa: unsupported dataset format")
)

// Canned answers for states where the pipeline has nothing to interpret.
// These are results, not errors: the user asked a fair question and gets a
// clear explanation of why there is no data behind the answer.
const (
	answerNoCatalog   = "No datasets available. Please add datasets to the catalog first."
	answerFetchFailed = "Failed to fetch data from any dataset. Please check dataset availability."
)

// fetchConcurrency bounds parallel dataset fetches. The data.gov.in client
// rate-limits globally anyway; this just keeps memory in check.
const fetchConcurrency = 4

// Fetcher is the record-fetching surface of the data.gov.in client.
type Fetcher interface {
	FetchAllRecords(ctx context.Context, resourceID string) (*datagov.ResourceData, error)
	FetchResourceRaw(ctx context.Context, resourceID, format string) ([]byte, error)
}

// Catalog is the subset of catalog.Store the engine needs.
type Catalog interface {
	Get(ctx context.Context, datasetID string) (catalog.Dataset, error)
	List(ctx context.Context, category string) ([]catalog.Dataset, error)
	Stats(ctx context.Context) (catalog.Stats, error)
}

// Discoverer finds and selects datasets for a question.
type Discoverer interface {
	DiscoverForQuestion(ctx context.Context, question string) (selected []string, added int, err error)
	SelectRelevant(ctx context.Context, question string) ([]string, error)
}

// Interpreting is the model-facing stage surface.
type Interpreting interface {
	FilterTable(ctx context.Context, question string, t *table.Table, name string) *table.Table
	Answer(ctx context.Context, question string, datasets []interpreter.Input, maxRows int) (interpreter.Result, error)
}

// TableCache caches fetched tables between runs.
type TableCache interface {
	Get(resourceID string) (*table.Table, bool)
	Put(resourceID string, t *table.Table) error
}

// Request is one question with its budgets.
type Request struct {
	Question string `json:"question"`

	// AutoDiscover searches data.gov.in for new datasets before answering.
	AutoDiscover bool `json:"auto_discover"`

	// MaxDatasets caps datasets sent to the model. 0 uses the engine default.
	MaxDatasets int `json:"max_datasets"`

	// MaxRows caps sample rows per dataset. 0 uses the engine default.
	MaxRows int `json:"max_rows"`
}

// Result is a pipeline answer.
type Result struct {
	Question      string   `json:"question"`
	Answer        string   `json:"answer"`
	DatasetsUsed  []string `json:"datasets_used"`
	Sources       []string `json:"sources"`
	DiscoveredNew int      `json:"discovered_new"`
}

// Config holds engine defaults.
type Config struct {
	MaxDatasets int // default 5
	MaxRows     int // default 500
}

// Engine runs the pipeline. Safe for concurrent use.
type Engine struct {
	fetch  Fetcher
	store  Catalog
	disc   Discoverer
	interp Interpreting
	cache  TableCache // may be nil
	cfg    Config
	logger log.Logger
}

// New creates an engine. cache may be nil to disable table caching.
func New(fetch Fetcher, store Catalog, disc Discoverer, interp Interpreting, cache TableCache, cfg Config, logger log.Logger) *Engine {
	if cfg.MaxDatasets <= 0 {
		cfg.MaxDatasets = 5
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 500
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Engine{fetch: fetch, store: store, disc: disc, interp: interp, cache: cache, cfg: cfg, logger: logger}
}

// Answer runs the full pipeline for one question.
func (e *Engine) Answer(ctx context.Context, req Request) (Result, error) {
	if req.Question == "" {
		return Result{}, ErrEmptyQuestion
	}
	if req.MaxDatasets <= 0 {
		req.MaxDatasets = e.cfg.MaxDatasets
	}
	if req.MaxRows <= 0 {
		req.MaxRows = e.cfg.MaxRows
	}

	result := Result{Question: req.Question}

	// Stage 1: pick datasets.
	var selected []string
	var err error
	if req.AutoDiscover {
		selected, result.DiscoveredNew, err = e.disc.DiscoverForQuestion(ctx, req.Question)
	} else {
		selected, err = e.disc.SelectRelevant(ctx, req.Question)
	}
	if err != nil {
		return Result{}, fmt.Errorf("selecting datasets: %w", err)
	}

	datasets, err := e.resolveDatasets(ctx, selected, req.MaxDatasets)
	if err != nil {
		return Result{}, err
	}
	if len(datasets) == 0 {
		result.Answer = answerNoCatalog
		return result, nil
	}

	// Stage 2: fetch tables concurrently. A single bad dataset must not sink
	// the question, so per-dataset failures are logged and dropped.
	loaded := e.fetchTables(ctx, datasets)
	if len(loaded) == 0 {
		result.Answer = answerFetchFailed
		return result, nil
	}

	// Stage 3: reduce large tables, then interpret.
	inputs := make([]interpreter.Input, len(loaded))
	for i, ld := range loaded {
		total := ld.table.NumRows()
		filtered := e.interp.FilterTable(ctx, req.Question, ld.table, ld.dataset.Name)
		inputs[i] = interpreter.Input{
			Name:  ld.dataset.Name,
			Table: filtered,
			Meta: table.Meta{
				Publisher: ld.dataset.Publisher,
				Category:  ld.dataset.Category,
				TotalRows: total,
			},
		}
	}

	answer, err := e.interp.Answer(ctx, req.Question, inputs, req.MaxRows)
	if err != nil {
		return Result{}, fmt.Errorf("interpreting: %w", err)
	}

	result.Answer = answer.Answer
	result.Sources = answer.Sources
	for _, in := range inputs {
		result.DatasetsUsed = append(result.DatasetsUsed, in.Name)
	}
	return result, nil
}

// resolveDatasets maps selected IDs to catalog entries, capped at max.
// With no selection the catalog order decides, so seed datasets still serve
// questions when discovery found nothing.
func (e *Engine) resolveDatasets(ctx context.Context, selected []string, max int) ([]catalog.Dataset, error) {
	if len(selected) > 0 {
		var out []catalog.Dataset
		for _, id := range selected {
			if len(out) >= max {
				break
			}
			d, err := e.store.Get(ctx, id)
			if errors.Is(err, catalog.ErrNotFound) {
				e.logger.Warn("selected dataset missing from catalog", "dataset_id", id)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("resolving dataset %s: %w", id, err)
			}
			out = append(out, d)
		}
		if len(out) > 0 {
			return out, nil
		}
	}

	all, err := e.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	if len(all) > max {
		all = all[:max]
	}
	return all, nil
}

type loadedDataset struct {
	dataset catalog.Dataset
	table   *table.Table
}

// fetchTables loads every dataset's table, from cache when possible.
func (e *Engine) fetchTables(ctx context.Context, datasets []catalog.Dataset) []loadedDataset {
	// Indexed writes keep input order without a lock.
	loaded := make([]*loadedDataset, len(datasets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, ds := range datasets {
		g.Go(func() error {
			t, err := e.loadTable(gctx, ds)
			if err != nil {
				e.logger.Error("fetching dataset failed", "dataset", ds.Name, "error", err)
				return nil // tolerated
			}
			if t.NumRows() == 0 {
				e.logger.Warn("dataset returned no rows", "dataset", ds.Name)
				return nil
			}

			loaded[i] = &loadedDataset{dataset: ds, table: t}
			e.logger.Debug("loaded dataset", "dataset", ds.Name, "rows", t.NumRows())
			return nil
		})
	}
	_ = g.Wait() // individual errors already handled

	var out []loadedDataset
	for _, ld := range loaded {
		if ld != nil {
			out = append(out, *ld)
		}
	}
	return out
}

// loadTable fetches and normalizes one dataset table.
func (e *Engine) loadTable(ctx context.Context, ds catalog.Dataset) (*table.Table, error) {
	if e.cache != nil {
		if t, ok := e.cache.Get(ds.ResourceID); ok {
			e.logger.Debug("cache hit", "dataset", ds.Name)
			return t, nil
		}
	}

	t, err := e.fetchTable(ctx, ds)
	if err != nil {
		return nil, err
	}

	t.NormalizeColumns()
	if t.ExpandTabSeparated() {
		e.logger.Debug("expanded tab-separated column", "dataset", ds.Name)
	}

	if e.cache != nil && t.NumRows() > 0 {
		if err := e.cache.Put(ds.ResourceID, t); err != nil {
			e.logger.Warn("caching table failed", "dataset", ds.Name, "error", err)
		}
	}
	return t, nil
}

// fetchTable retrieves a dataset in its published representation. Most
// resources come through the paginated JSON API; csv and html datasets are
// fetched raw and parsed.
func (e *Engine) fetchTable(ctx context.Context, ds catalog.Dataset) (*table.Table, error) {
	switch strings.ToLower(ds.Format) {
	case "csv":
		raw, err := e.fetch.FetchResourceRaw(ctx, ds.ResourceID, "csv")
		if err != nil {
			return nil, err
		}
		t, err := table.ReadCSV(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing csv of %s: %w", ds.Name, err)
		}
		return t, nil

	case "html":
		raw, err := e.fetch.FetchResourceRaw(ctx, ds.ResourceID, "html")
		if err != nil {
			return nil, err
		}
		t, err := table.FromHTML(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing html of %s: %w", ds.Name, err)
		}
		return t, nil

	case "xlsx", "xls":
		return nil, fmt.Errorf("dataset %s: %w: %s", ds.Name, ErrUnsupportedFormat, ds.Format)

	default:
		data, err := e.fetch.FetchAllRecords(ctx, ds.ResourceID)
		if err != nil {
			return nil, err
		}
		return table.FromRecords(data.Columns, data.Records), nil
	}
}

// CatalogStats exposes catalog counts for UIs and the stats endpoint.
func (e *Engine) CatalogStats(ctx context.Context) (catalog.Stats, error) {
	return e.store.Stats(ctx)
}
