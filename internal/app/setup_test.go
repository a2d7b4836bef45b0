package app

import (
	"testing"

	"github.com/samarthdata/samarth/internal/config"
	"github.com/samarthdata/samarth/internal/log"
)

func TestProvideCacheDisabled(t *testing.T) {
	t.Parallel()

	cache, err := provideCache(&config.Config{}, log.NewNop())
	if err != nil {
		t.Fatalf("provideCache() error = %v", err)
	}
	if cache != nil {
		t.Error("cache should be nil without a cache dir")
	}
}

func TestProvideCacheEnabled(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{CacheDir: t.TempDir(), CacheTTLMin: 30}
	cache, err := provideCache(cfg, log.NewNop())
	if err != nil {
		t.Fatalf("provideCache() error = %v", err)
	}
	if cache == nil {
		t.Fatal("cache is nil")
	}
}
