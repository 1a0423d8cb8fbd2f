package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"dailytens/application/ports"
	"dailytens/domain/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(date, title string) *game.Record {
	answers := make([]string, game.AnswerCount)
	for i := range answers {
		answers[i] = fmt.Sprintf("%s-%d", title, i)
	}
	return &game.Record{Date: date, Title: title, CorrectAnswers: answers}
}

func TestCreateIfAbsent_SecondWriteNeverAltersFirst(t *testing.T) {
	repo := NewGameRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, record("2024-06-01", "first")))

	err := repo.CreateIfAbsent(ctx, record("2024-06-01", "second"))
	assert.ErrorIs(t, err, ports.ErrGameExists)

	got, found, err := repo.Get(ctx, "2024-06-01")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, "first-0", got.CorrectAnswers[0])
}

func TestCreateIfAbsent_ConcurrentWritersHaveOneWinner(t *testing.T) {
	repo := NewGameRepository()
	ctx := context.Background()

	const writers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := repo.CreateIfAbsent(ctx, record("2024-06-01", fmt.Sprintf("w%d", i))); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, repo.Len())
}

func TestGet_ReturnsCopy(t *testing.T) {
	repo := NewGameRepository()
	ctx := context.Background()
	require.NoError(t, repo.CreateIfAbsent(ctx, record("2024-06-01", "t")))

	got, _, _ := repo.Get(ctx, "2024-06-01")
	got.CorrectAnswers[0] = "mutated"

	again, _, _ := repo.Get(ctx, "2024-06-01")
	assert.Equal(t, "t-0", again.CorrectAnswers[0])
}

func TestGet_MissingIsNotAnError(t *testing.T) {
	repo := NewGameRepository()

	got, found, err := repo.Get(context.Background(), "2024-06-01")

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestScanDatesAtOrBefore(t *testing.T) {
	repo := NewGameRepository()
	ctx := context.Background()
	for _, d := range []string{"2024-06-03", "2024-05-30", "2024-06-01", "2024-06-02"} {
		require.NoError(t, repo.CreateIfAbsent(ctx, record(d, d)))
	}

	dates, err := repo.ScanDatesAtOrBefore(ctx, "2024-06-02")

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-30", "2024-06-01", "2024-06-02"}, dates)
}
