package observability

import (
	"context"
	"testing"

	"github.com/samarthdata/samarth/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown is nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestSetupCollectorUnavailable(t *testing.T) {
	// Exporter creation succeeds even when nothing listens; spans fail to
	// export silently. Setup must not fail the application either way.
	cfg := config.TracingConfig{
		Enabled:     true,
		Endpoint:    "localhost:1",
		ServiceName: "samarth-test",
		Environment: "test",
	}

	shutdown, err := Setup(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown is nil")
	}
	_ = shutdown(context.Background())
}
