package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/samarthdata/samarth/internal/app"
	"github.com/samarthdata/samarth/internal/config"
)

// runDiscover runs batch discovery and prints how many datasets each
// category search added to the catalog.
func runDiscover() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateOnline(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	fmt.Println("Searching data.gov.in for climate and agriculture datasets...")

	added, err := a.Discovery.DiscoverAll(ctx)
	if err != nil {
		return fmt.Errorf("discovering datasets: %w", err)
	}

	categories := make([]string, 0, len(added))
	for category := range added {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	total := 0
	for _, category := range categories {
		fmt.Printf("  %-12s +%d\n", category, added[category])
		total += added[category]
	}
	fmt.Printf("Added %d new datasets to the catalog.\n", total)
	return nil
}
