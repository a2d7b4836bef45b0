package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samarthdata/samarth/db"
	"github.com/samarthdata/samarth/internal/catalog"
	"github.com/samarthdata/samarth/internal/config"
)

// runCatalog lists the dataset catalog. It connects to PostgreSQL directly
// so no Gemini or data.gov.in credentials are needed.
func runCatalog() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	store := catalog.New(pool, nil)
	if err := store.Seed(ctx); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}

	datasets, err := store.List(ctx, "")
	if err != nil {
		return fmt.Errorf("listing catalog: %w", err)
	}

	fmt.Printf("%-28s %-12s %-30s %s\n", "DATASET", "CATEGORY", "PUBLISHER", "COLUMNS")
	for _, d := range datasets {
		fmt.Printf("%-28s %-12s %-30s %s\n",
			truncate(d.Name, 28),
			d.Category,
			truncate(d.Publisher, 30),
			strings.Join(d.SampleColumns, ", "),
		)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading catalog stats: %w", err)
	}
	fmt.Printf("\n%d datasets (%d climate, %d agriculture, %d other)\n",
		stats.Total, stats.Climate, stats.Agriculture, stats.Other)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
