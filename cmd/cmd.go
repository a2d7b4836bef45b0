// Package cmd provides the CLI commands.
//
// Commands:
//   - ask: answer one question from the terminal
//   - serve: HTTP server with the web UI and REST API
//   - discover: batch dataset discovery across categories
//   - catalog: list catalog datasets
//   - verify: check configuration and connectivity
//
// Signal handling and graceful shutdown are implemented for all long-running
// commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the CLI application.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "ask":
		return runAsk()
	case "serve":
		return runServe()
	case "discover":
		return runDiscover()
	case "catalog":
		return runCatalog()
	case "verify":
		return runVerify()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Samarth - conversational answers over India's open government data")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  samarth ask [question]     Answer one question")
	fmt.Println("  samarth serve [addr]       Start web UI and API server (default: 127.0.0.1:3500)")
	fmt.Println("  samarth discover           Search data.gov.in and grow the catalog")
	fmt.Println("  samarth catalog            List catalog datasets")
	fmt.Println("  samarth verify             Check configuration and connectivity")
	fmt.Println("  samarth --version          Show version information")
	fmt.Println("  samarth --help             Show this help")
	fmt.Println()
	fmt.Println("ask flags:")
	fmt.Println("  --discover                 Search for new datasets before answering")
	fmt.Println("  --datasets N               Cap datasets sent to the model (default 5)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY             Required: Gemini API key")
	fmt.Println("  DATA_GOV_API_KEY           Required: data.gov.in API key")
	fmt.Println("  DATABASE_URL               Optional: PostgreSQL connection URL")
	fmt.Println("  DEBUG                      Optional: enable debug logging")
}
