package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Validate checks the configuration for correctness.
// Called at load time so misconfiguration fails fast, before any component
// starts using partial settings.
//
// API key presence is NOT checked here: catalog-only commands (`samarth
// catalog`) work without keys. Use ValidateOnline before running the pipeline.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.ModelName == "" || strings.ContainsAny(c.ModelName, " /") {
		return fmt.Errorf("%w: %q", ErrInvalidModelName, c.ModelName)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %g (must be 0-2)", ErrInvalidTemperature, c.Temperature)
	}

	if c.MaxTokens < 1 || c.MaxTokens > 65536 {
		return fmt.Errorf("%w: %d (must be 1-65536)", ErrInvalidMaxTokens, c.MaxTokens)
	}

	u, err := url.Parse(c.DataGovBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.DataGovBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q (want http or https)", ErrInvalidBaseURL, u.Scheme)
	}

	if c.PageLimit < 1 || c.PageLimit > 5000 {
		return fmt.Errorf("%w: %d (must be 1-5000)", ErrInvalidPageLimit, c.PageLimit)
	}

	if c.MaxPages < 1 || c.MaxPages > 100 {
		return fmt.Errorf("%w: max_pages %d (must be 1-100)", ErrInvalidPageLimit, c.MaxPages)
	}

	if c.MaxDatasets < 1 || c.MaxDatasets > 20 {
		return fmt.Errorf("%w: max_datasets %d (must be 1-20)", ErrInvalidDatasetBudget, c.MaxDatasets)
	}

	if c.MaxRowsPerDataset < 1 || c.MaxRowsPerDataset > MaxAllowedRowsPerDataset {
		return fmt.Errorf("%w: max_rows_per_dataset %d (must be 1-%d)",
			ErrInvalidDatasetBudget, c.MaxRowsPerDataset, MaxAllowedRowsPerDataset)
	}

	return c.validateStorage()
}

// ValidateOnline checks the secrets required for live pipeline runs.
//
// GEMINI_API_KEY is read directly by the Genkit googlegenai plugin, so it is
// checked from the environment rather than from a Config field.
func (c *Config) ValidateOnline() error {
	if c == nil {
		return ErrConfigNil
	}

	var errs []error
	if c.DataGovAPIKey == "" {
		errs = append(errs, fmt.Errorf("%w: DATA_GOV_API_KEY (register at https://data.gov.in)", ErrMissingAPIKey))
	}
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		errs = append(errs, fmt.Errorf("%w: GEMINI_API_KEY (create at https://aistudio.google.com)", ErrMissingAPIKey))
	}
	return errors.Join(errs...)
}
