// Package catalog maintains the registry of data.gov.in datasets the system
// knows how to answer from.
//
// The catalog is deliberately small: a handful of curated seed datasets plus
// whatever discovery finds for user questions. It lives in PostgreSQL so CLI
// runs and the server share one view.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samarthdata/samarth/internal/log"
)

// Dataset categories.
const (
	CategoryClimate     = "climate"
	CategoryAgriculture = "agriculture"
	CategoryOther       = "other"
)

var (
	// ErrNotFound indicates the dataset does not exist in the catalog.
	ErrNotFound = errors.New("catalog: dataset not found")

	// ErrInvalidCategory indicates an unknown category value.
	ErrInvalidCategory = errors.New("catalog: invalid category")
)

// Dataset is one catalog entry.
type Dataset struct {
	// DatasetID is the stable identifier used throughout the pipeline.
	DatasetID string `json:"dataset_id"`

	// ResourceID is the data.gov.in resource UUID used for record fetches.
	ResourceID string `json:"resource_id"`

	Name      string `json:"name"`
	Publisher string `json:"publisher"`
	Format    string `json:"format"`
	Category  string `json:"category"`

	// SampleColumns are the known column names, used in selection prompts.
	SampleColumns []string `json:"sample_columns"`

	LastUpdated time.Time `json:"last_updated,omitzero"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// Stats summarizes the catalog by category.
type Stats struct {
	Total       int `json:"total"`
	Climate     int `json:"climate"`
	Agriculture int `json:"agriculture"`
	Other       int `json:"other"`
}

// Querier is the subset of pgx operations the store needs.
// Interfaces are defined by the consumer: *pgxpool.Pool satisfies this, and
// tests substitute a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists catalog entries. Safe for concurrent use.
type Store struct {
	q      Querier
	logger log.Logger
}

// New creates a catalog store.
func New(q Querier, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{q: q, logger: logger}
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	return c == CategoryClimate || c == CategoryAgriculture || c == CategoryOther
}

// Upsert inserts or updates a dataset keyed by dataset_id.
func (s *Store) Upsert(ctx context.Context, d Dataset) error {
	if !ValidCategory(d.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, d.Category)
	}
	if d.DatasetID == "" || d.ResourceID == "" || d.Name == "" {
		return fmt.Errorf("catalog: dataset_id, resource_id, and name are required")
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO dataset_catalog
			(dataset_id, resource_id, name, publisher, format, category, sample_columns, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (dataset_id) DO UPDATE SET
			resource_id = EXCLUDED.resource_id,
			name = EXCLUDED.name,
			publisher = EXCLUDED.publisher,
			format = EXCLUDED.format,
			category = EXCLUDED.category,
			sample_columns = EXCLUDED.sample_columns,
			last_updated = now()`,
		d.DatasetID, d.ResourceID, d.Name, d.Publisher, d.Format, d.Category, d.SampleColumns)
	if err != nil {
		return fmt.Errorf("upserting dataset %s: %w", d.DatasetID, err)
	}

	s.logger.Debug("upserted dataset", "dataset_id", d.DatasetID, "category", d.Category)
	return nil
}

const datasetColumns = `dataset_id, resource_id, name, publisher, format, category,
	sample_columns, COALESCE(last_updated, 'epoch'::timestamptz), created_at`

func scanDataset(row pgx.Row) (Dataset, error) {
	var d Dataset
	err := row.Scan(&d.DatasetID, &d.ResourceID, &d.Name, &d.Publisher, &d.Format,
		&d.Category, &d.SampleColumns, &d.LastUpdated, &d.CreatedAt)
	return d, err
}

// Get returns one dataset by dataset_id.
func (s *Store) Get(ctx context.Context, datasetID string) (Dataset, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+datasetColumns+` FROM dataset_catalog WHERE dataset_id = $1`, datasetID)

	d, err := scanDataset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dataset{}, fmt.Errorf("%w: %s", ErrNotFound, datasetID)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("getting dataset %s: %w", datasetID, err)
	}
	return d, nil
}

// ResourceID resolves a dataset_id to its data.gov.in resource UUID.
func (s *Store) ResourceID(ctx context.Context, datasetID string) (string, error) {
	var id string
	err := s.q.QueryRow(ctx,
		`SELECT resource_id FROM dataset_catalog WHERE dataset_id = $1`, datasetID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, datasetID)
	}
	if err != nil {
		return "", fmt.Errorf("resolving resource id for %s: %w", datasetID, err)
	}
	return id, nil
}

// List returns all datasets, optionally restricted to one category.
// Category "" means all. Results are ordered by creation time so seed
// datasets come first.
func (s *Store) List(ctx context.Context, category string) ([]Dataset, error) {
	query := `SELECT ` + datasetColumns + ` FROM dataset_catalog ORDER BY created_at, dataset_id`
	args := []any{}
	if category != "" {
		if !ValidCategory(category) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
		}
		query = `SELECT ` + datasetColumns + ` FROM dataset_catalog WHERE category = $1 ORDER BY created_at, dataset_id`
		args = append(args, category)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating datasets: %w", err)
	}
	return out, nil
}

// HasResource reports whether any catalog entry already uses resourceID.
// Discovery uses this to skip datasets it has seen before.
func (s *Store) HasResource(ctx context.Context, resourceID string) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM dataset_catalog WHERE resource_id = $1)`, resourceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking resource %s: %w", resourceID, err)
	}
	return exists, nil
}

// Stats returns per-category dataset counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.q.Query(ctx,
		`SELECT category, count(*) FROM dataset_catalog GROUP BY category`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting datasets: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return Stats{}, fmt.Errorf("scanning counts: %w", err)
		}
		stats.Total += count
		switch category {
		case CategoryClimate:
			stats.Climate = count
		case CategoryAgriculture:
			stats.Agriculture = count
		case CategoryOther:
			stats.Other = count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterating counts: %w", err)
	}
	return stats, nil
}
