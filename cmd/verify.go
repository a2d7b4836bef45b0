package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samarthdata/samarth/internal/config"
	"github.com/samarthdata/samarth/internal/datagov"
)

// runVerify checks configuration, credentials, and database connectivity,
// printing a status line per check. It never prints secrets.
func runVerify() error {
	fmt.Println("Verifying Samarth configuration...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  [FAIL] config: %v\n", err)
		return fmt.Errorf("loading config: %w", err)
	}
	fmt.Println("  [OK]   config loaded")

	if err := cfg.Validate(); err != nil {
		fmt.Printf("  [FAIL] settings: %v\n", err)
		return fmt.Errorf("validating config: %w", err)
	}
	fmt.Println("  [OK]   settings valid")

	failed := false

	if err := cfg.ValidateOnline(); err != nil {
		fmt.Printf("  [FAIL] credentials: %v\n", err)
		failed = true
	} else {
		fmt.Println("  [OK]   API credentials present")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pingDatabase(ctx, cfg); err != nil {
		fmt.Printf("  [FAIL] database: %v\n", err)
		failed = true
	} else {
		fmt.Printf("  [OK]   PostgreSQL reachable at %s:%d\n", cfg.PostgresHost, cfg.PostgresPort)
	}

	if cfg.DataGovAPIKey != "" {
		if err := pingDataGov(ctx, cfg); err != nil {
			fmt.Printf("  [FAIL] data.gov.in: %v\n", err)
			failed = true
		} else {
			fmt.Printf("  [OK]   data.gov.in reachable at %s\n", cfg.DataGovBaseURL)
		}
	}

	fmt.Printf("\n%s\n", cfg)

	if failed {
		return fmt.Errorf("verification failed")
	}
	fmt.Println("All checks passed.")
	return nil
}

func pingDatabase(ctx context.Context, cfg *config.Config) error {
	pool, err := pgxpool.New(ctx, cfg.PostgresURL())
	if err != nil {
		return err
	}
	defer pool.Close()
	return pool.Ping(ctx)
}

// pingDataGov runs one tiny catalog search to confirm the platform and the
// API key both work.
func pingDataGov(ctx context.Context, cfg *config.Config) error {
	client, err := datagov.New(datagov.Config{
		BaseURL: cfg.DataGovBaseURL,
		APIKey:  cfg.DataGovAPIKey,
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return err
	}
	_, err = client.SearchCatalog(ctx, "rainfall", 1)
	return err
}
