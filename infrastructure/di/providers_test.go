package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dailytens/infrastructure/config"
	"dailytens/infrastructure/messaging/eventbridge"
	"dailytens/infrastructure/persistence/cache"
	"dailytens/infrastructure/persistence/memory"
	"dailytens/infrastructure/persistence/resilient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Environment:        "test",
		AWSRegion:          "us-east-1",
		StoreDriver:        config.StoreMemory,
		PersistTimeout:     time.Second,
		BreakerMaxRequests: 5,
		BreakerInterval:    time.Minute,
		BreakerTimeout:     time.Minute,
		BreakerMinRequests: 5,
		BreakerThreshold:   0.8,
		GameTimezone:       "UTC",
		LogLevel:           "error",
		EnableMetrics:      true,
	}
}

func TestProvideGameRepository_DecoratorChain(t *testing.T) {
	tests := []struct {
		name     string
		breaker  bool
		cacheTTL time.Duration
		check    func(t *testing.T, repo interface{})
	}{
		{name: "bare", check: func(t *testing.T, repo interface{}) { assert.IsType(t, &memory.GameRepository{}, repo) }},
		{name: "breaker", breaker: true, check: func(t *testing.T, repo interface{}) { assert.IsType(t, &resilient.GameRepository{}, repo) }},
		{name: "cache outermost", breaker: true, cacheTTL: time.Minute, check: func(t *testing.T, repo interface{}) { assert.IsType(t, &cache.GameRepository{}, repo) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig()
			cfg.BreakerEnabled = tt.breaker
			cfg.ReadCacheTTL = tt.cacheTTL

			repo, cleanup, err := ProvideGameRepository(context.Background(), cfg, nil, nil, nil, zap.NewNop())
			require.NoError(t, err)
			defer cleanup()

			tt.check(t, repo)
		})
	}
}

func TestProvideGameRepository_SQLite(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreDriver = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "games.db")

	repo, cleanup, err := ProvideGameRepository(context.Background(), cfg, nil, nil, nil, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	_, found, err := repo.Get(context.Background(), "2024-06-01")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestProvideGameRepository_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreDriver = "postgres"

	_, _, err := ProvideGameRepository(context.Background(), cfg, nil, nil, nil, zap.NewNop())

	assert.Error(t, err)
}

func TestProvideProfileStore(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.SelectorsFile = filepath.Join(t.TempDir(), "absent.yaml")

		store, cleanup, err := ProvideProfileStore(cfg, zap.NewNop())
		require.NoError(t, err)
		defer cleanup()

		assert.Equal(t, config.DefaultSelectorProfile(), store.Current())
	})

	t.Run("file overrides defaults and is watched", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "selectors.yaml")
		require.NoError(t, os.WriteFile(path, []byte("source_url: https://mirror.example\n"), 0o644))
		cfg := memoryConfig()
		cfg.SelectorsFile = path
		cfg.WatchSelector = true

		store, cleanup, err := ProvideProfileStore(cfg, zap.NewNop())
		require.NoError(t, err)
		defer cleanup()

		assert.Equal(t, "https://mirror.example", store.Current().SourceURL)
	})

	t.Run("broken file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "selectors.yaml")
		require.NoError(t, os.WriteFile(path, []byte("title_selectors: [\n"), 0o644))
		cfg := memoryConfig()
		cfg.SelectorsFile = path

		_, _, err := ProvideProfileStore(cfg, zap.NewNop())

		assert.Error(t, err)
	})
}

func TestProvideEventPublisher_LogsWithoutBus(t *testing.T) {
	pub := ProvideEventPublisher(nil, memoryConfig(), zap.NewNop())

	assert.IsType(t, &eventbridge.LogPublisher{}, pub)
}

func TestProvideLogger_InvalidLevel(t *testing.T) {
	cfg := memoryConfig()
	cfg.LogLevel = "chatty"

	_, err := ProvideLogger(cfg)

	assert.Error(t, err)
}

func TestInitializeContainer_ServesHealth(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := memoryConfig()
	cfg.ReadCacheTTL = time.Minute

	// Act
	container, cleanup, err := InitializeContainer(ctx, cfg)
	require.NoError(t, err)
	defer cleanup()

	rec := httptest.NewRecorder()
	container.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, container.Metrics)
	assert.NotNil(t, container.Resolver)
}
