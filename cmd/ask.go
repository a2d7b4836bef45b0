package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samarthdata/samarth/internal/app"
	"github.com/samarthdata/samarth/internal/config"
	"github.com/samarthdata/samarth/internal/qa"
)

// runAsk answers one question and prints the rendered answer.
func runAsk() error {
	askFlags := flag.NewFlagSet("ask", flag.ContinueOnError)
	askFlags.SetOutput(os.Stderr)
	discover := askFlags.Bool("discover", false, "Search data.gov.in for new datasets before answering")
	maxDatasets := askFlags.Int("datasets", 0, "Cap datasets sent to the model")

	// Question words may come before or after flags.
	var words []string
	var flagArgs []string
	for _, arg := range os.Args[2:] {
		if strings.HasPrefix(arg, "-") {
			flagArgs = append(flagArgs, arg)
			continue
		}
		if len(flagArgs) > 0 && needsValue(flagArgs[len(flagArgs)-1]) {
			flagArgs = append(flagArgs, arg)
			continue
		}
		words = append(words, arg)
	}
	if err := askFlags.Parse(flagArgs); err != nil {
		return fmt.Errorf("parsing ask flags: %w", err)
	}

	question := strings.Join(words, " ")
	if question == "" {
		return fmt.Errorf("usage: samarth ask [--discover] [--datasets N] <question>")
	}

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

	result, err := a.Engine.Answer(ctx, qa.Request{
		Question:     question,
		AutoDiscover: *discover || cfg.AutoDiscover,
		MaxDatasets:  *maxDatasets,
	})
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if result.DiscoveredNew > 0 {
		fmt.Printf("Added %d new datasets to the catalog.\n\n", result.DiscoveredNew)
	}

	fmt.Println(renderMarkdown(result.Answer))

	if len(result.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(result.Sources, ", "))
	}
	return nil
}

// needsValue reports whether a flag takes a separate value argument.
func needsValue(flagArg string) bool {
	return (flagArg == "--datasets" || flagArg == "-datasets") && !strings.Contains(flagArg, "=")
}
