package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_RecordsRouteAndDate(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := chi.NewRouter()
	r.Use(Logger(zap.New(core)))
	r.Get("/api/game/{date}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/game/2024-06-01", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, 2, logs.Len())
	game := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, game.Level)
	assert.Equal(t, "/api/game/{date}", game.ContextMap()["route"])
	assert.Equal(t, "2024-06-01", game.ContextMap()["date"])
	assert.Equal(t, int64(503), game.ContextMap()["status"])

	health := logs.All()[1]
	assert.Equal(t, zapcore.DebugLevel, health.Level)
	assert.Equal(t, int64(200), health.ContextMap()["status"])
}
