// Package llm wraps all Gemini calls behind one resilient client.
//
// Every pipeline stage that talks to the model (keyword extraction,
// categorization, dataset selection, row filtering, interpretation) goes
// through Client.Generate, which layers a proactive rate limiter, retry with
// exponential backoff, and a circuit breaker over Genkit.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/samarthdata/samarth/internal/log"
)

// Generator is the model surface pipeline stages depend on. Consumers define
// the interface; tests substitute a fake, production uses *Client.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one model call.
type Request struct {
	// System is the system instruction (may be empty).
	System string

	// Prompt is the user-turn content.
	Prompt string

	// Temperature is always sent; callers pick per-task values (low for
	// extraction and filtering, higher for interpretation).
	Temperature float32

	// MaxTokens caps the response. 0 means the model default.
	MaxTokens int
}

// Config holds client construction options.
type Config struct {
	// ModelName is the provider-qualified model, e.g.
	// "googleai/gemini-2.0-flash-lite".
	ModelName string

	// Retry overrides the default retry policy.
	Retry *RetryConfig

	// Breaker overrides the default circuit breaker settings.
	Breaker *CircuitBreakerConfig

	// RequestsPerSecond and Burst tune the rate limiter.
	// Defaults: 10 rps, burst 30.
	RequestsPerSecond float64
	Burst             int

	// Logger for retry and breaker diagnostics. Default: discard.
	Logger log.Logger
}

// Client is a resilient Gemini client. Safe for concurrent use.
type Client struct {
	g       *genkit.Genkit
	model   string
	limiter *rate.Limiter
	breaker *CircuitBreaker
	retry   RetryConfig
	logger  log.Logger
}

// New creates a client on an initialized Genkit instance.
func New(g *genkit.Genkit, cfg Config) *Client {
	retry := DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	var breakerCfg CircuitBreakerConfig
	if cfg.Breaker != nil {
		breakerCfg = *cfg.Breaker
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 30
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	return &Client{
		g:       g,
		model:   cfg.ModelName,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: NewCircuitBreaker(breakerCfg),
		retry:   retry,
		logger:  cfg.Logger,
	}
}

// Generate runs one model call and returns the response text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if err := c.breaker.Allow(); err != nil {
		return "", err
	}

	out, err := c.executeWithRetry(ctx, func(ctx context.Context) (string, error) {
		opts := []ai.GenerateOption{
			ai.WithModelName(c.model),
			ai.WithPrompt(req.Prompt),
			ai.WithConfig(c.generationConfig(req)),
		}
		if req.System != "" {
			opts = append(opts, ai.WithSystem(req.System))
		}

		resp, err := genkit.Generate(ctx, c.g, opts...)
		if err != nil {
			return "", fmt.Errorf("generating response: %w", err)
		}
		return resp.Text(), nil
	})
	if err != nil {
		c.breaker.Failure()
		return "", err
	}

	c.breaker.Success()
	return out, nil
}

func (c *Client) generationConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	return cfg
}

// BreakerState exposes the circuit state for health endpoints.
func (c *Client) BreakerState() CircuitState {
	return c.breaker.State()
}

// StripFences removes a surrounding markdown code fence from model output.
// Models routinely wrap JSON in ```json fences despite instructions not to.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}[]") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
