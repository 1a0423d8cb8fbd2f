package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, StoreDynamoDB, cfg.StoreDriver)
	assert.Equal(t, "DailyTensGames", cfg.DynamoDBTable)
	assert.Equal(t, "UTC", cfg.GameTimezone)
	assert.Equal(t, 10*time.Minute, cfg.ReadCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/games.db")
	t.Setenv("GAME_TIMEZONE", "Australia/Sydney")
	t.Setenv("READ_CACHE_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DYNAMODB_TABLE_NAME", "Alias")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/games.db", cfg.SQLitePath)
	assert.Equal(t, 90*time.Second, cfg.ReadCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "Alias", cfg.DynamoDBTable)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Australia/Sydney", loc.String())
}

func TestLoadConfig_TableNameWinsOverAlias(t *testing.T) {
	t.Setenv("TABLE_NAME", "Primary")
	t.Setenv("DYNAMODB_TABLE_NAME", "Alias")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "Primary", cfg.DynamoDBTable)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "bad timezone", env: map[string]string{"GAME_TIMEZONE": "Mars/Olympus"}},
		{name: "production without secret", env: map[string]string{"ENVIRONMENT": "production"}},
		{name: "bad threshold", env: map[string]string{"BREAKER_FAILURE_THRESHOLD": "1.5"}},
		{name: "negative max requests", env: map[string]string{"BREAKER_MAX_REQUESTS": "-1"}},
		{name: "negative min requests", env: map[string]string{"BREAKER_MIN_REQUESTS": "-3"}},
		{name: "negative breaker timeout", env: map[string]string{"BREAKER_TIMEOUT": "-5s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()

			assert.Error(t, err)
		})
	}
}
