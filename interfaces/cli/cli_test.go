package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dailytens/application/commands"
	"dailytens/application/commands/bus"
	commandhandlers "dailytens/application/commands/handlers"
	"dailytens/application/services"
	"dailytens/domain/game"
	"dailytens/infrastructure/persistence/memory"
	"dailytens/pkg/common"
	pkgerrors "dailytens/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type extractorFunc func(ctx context.Context) (*game.Candidate, bool)

func (f extractorFunc) Extract(ctx context.Context) (*game.Candidate, bool) { return f(ctx) }

func answers(prefix string) []string {
	out := make([]string, game.AnswerCount)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i+1)
	}
	return out
}

type harness struct {
	repo    *memory.GameRepository
	loads   int
	cleaned int
	load    Loader
}

func newHarness(t *testing.T, extract extractorFunc) *harness {
	t.Helper()
	logger := zap.NewNop()
	repo := memory.NewGameRepository()
	require.NoError(t, repo.CreateIfAbsent(context.Background(), &game.Record{
		Date: "2024-06-01", Title: "Longest rivers", CorrectAnswers: answers("River"),
	}))

	clock := common.FixedClock{T: time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)}
	resolver := services.NewDailyResolver(repo, extract, nil, clock, services.ResolverConfig{}, nil, nil, logger)
	commandBus := bus.NewCommandBus()
	require.NoError(t, commandBus.Register(commands.CreateGameCommand{}, commandhandlers.NewCreateGameHandler(repo, nil, clock, logger)))

	h := &harness{repo: repo}
	h.load = func(ctx context.Context) (*Services, func(), error) {
		h.loads++
		return &Services{Resolver: resolver, Extractor: extract, CommandBus: commandBus}, func() { h.cleaned++ }, nil
	}
	return h
}

func run(load Loader, args ...string) (string, error) {
	cmd := NewRootCmd(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeGame(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func gameJSON(date string) string {
	raw, _ := json.Marshal(game.Record{Date: date, Title: "Tallest peaks", CorrectAnswers: answers("Peak")})
	return string(raw)
}

var noExtraction = extractorFunc(func(context.Context) (*game.Candidate, bool) { return nil, false })

func TestResolve_StoredDateAsJSON(t *testing.T) {
	// Arrange
	h := newHarness(t, noExtraction)

	// Act
	out, err := run(h.load, "resolve", "--date", "2024-06-01", "--format", "json")

	// Assert
	require.NoError(t, err)
	var res ResolveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "store", res.Source)
	assert.Equal(t, "Longest rivers", res.Game.Title)
	assert.Equal(t, 1, h.cleaned)
}

func TestResolve_TodayFallsBack(t *testing.T) {
	h := newHarness(t, noExtraction)

	out, err := run(h.load, "resolve")

	require.NoError(t, err)
	assert.Contains(t, out, "Requested: 2024-06-03")
	assert.Contains(t, out, "Resolved:  2024-06-01 (fallback)")
	assert.Contains(t, out, " 10. River 10")
}

func TestResolve_TodayExtracts(t *testing.T) {
	h := newHarness(t, extractorFunc(func(context.Context) (*game.Candidate, bool) {
		return &game.Candidate{Title: "Fresh", CorrectAnswers: answers("Fresh")}, true
	}))

	out, err := run(h.load, "resolve", "--format", "json")

	require.NoError(t, err)
	assert.Contains(t, out, `"source": "extracted"`)
	assert.Equal(t, 2, h.repo.Len())
}

func TestResolve_RejectsBadInputBeforeLoading(t *testing.T) {
	h := newHarness(t, noExtraction)

	_, err := run(h.load, "resolve", "--date", "June 1st")
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = run(h.load, "resolve", "--format", "yaml")
	assert.Error(t, err)

	assert.Zero(t, h.loads)
}

func TestResolve_NotFound(t *testing.T) {
	h := newHarness(t, noExtraction)

	_, err := run(h.load, "resolve", "--date", "2023-01-01")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestExtract(t *testing.T) {
	h := newHarness(t, extractorFunc(func(context.Context) (*game.Candidate, bool) {
		return &game.Candidate{Title: "Fresh", CorrectAnswers: answers("Fresh")}, true
	}))

	out, err := run(h.load, "extract")

	require.NoError(t, err)
	assert.Contains(t, out, "Title:     Fresh")
	assert.Equal(t, 1, h.repo.Len(), "extract is a dry run")
}

func TestExtract_Failure(t *testing.T) {
	h := newHarness(t, noExtraction)

	_, err := run(h.load, "extract")

	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestAdd(t *testing.T) {
	h := newHarness(t, noExtraction)

	out, err := run(h.load, "add", "--file", writeGame(t, gameJSON("2024-06-02")))
	require.NoError(t, err)
	assert.Equal(t, "Added 2024-06-02: Tallest peaks\n", out)

	_, err = run(h.load, "add", "--file", writeGame(t, gameJSON("2024-06-02")))
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, 2, h.repo.Len())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "valid", body: gameJSON("2024-06-02")},
		{name: "bad date", body: gameJSON("2024/06/02"), code: pkgerrors.CodeInvalidDate},
		{name: "missing answers", body: `{"date":"2024-06-02","title":"t"}`, code: pkgerrors.CodeInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(nil, "validate", "--file", writeGame(t, tt.body))

			if tt.code == "" {
				require.NoError(t, err)
				assert.Contains(t, out, "OK 2024-06-02")
				return
			}
			var appErr *pkgerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := run(nil, "validate", "--file", filepath.Join(t.TempDir(), "nope.json"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}
