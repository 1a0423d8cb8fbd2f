package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFindMostRecentGame(t *testing.T) {
	tests := []struct {
		name     string
		stored   []string
		from     string
		wantDate string
		wantOK   bool
	}{
		{
			name:     "latest earlier date wins",
			stored:   []string{"2024-05-01", "2024-05-30", "2024-05-15"},
			from:     "2024-06-02",
			wantDate: "2024-05-30",
			wantOK:   true,
		},
		{
			name:     "from itself is excluded",
			stored:   []string{"2024-05-30", "2024-06-02"},
			from:     "2024-06-02",
			wantDate: "2024-05-30",
			wantOK:   true,
		},
		{
			name:     "later dates are ignored",
			stored:   []string{"2024-05-30", "2024-07-01"},
			from:     "2024-06-02",
			wantDate: "2024-05-30",
			wantOK:   true,
		},
		{
			name:   "nothing earlier",
			stored: []string{"2024-06-02", "2024-06-03"},
			from:   "2024-06-02",
			wantOK: false,
		},
		{
			name:   "empty store",
			from:   "2024-01-01",
			wantOK: false,
		},
		{
			name:     "year boundary orders lexicographically",
			stored:   []string{"2023-12-31", "2023-01-01"},
			from:     "2024-01-01",
			wantDate: "2023-12-31",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			repo := newStubRepo()
			for _, d := range tt.stored {
				require.NoError(t, repo.GameRepository.CreateIfAbsent(context.Background(), record(d, "t")))
			}
			scanner := NewFallbackScanner(repo, zap.NewNop())

			// Act
			date, ok, err := scanner.FindMostRecentGame(context.Background(), tt.from)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDate, date)
		})
	}
}

func TestFindMostRecentGame_ScanError(t *testing.T) {
	repo := newStubRepo()
	repo.scanErr = errors.New("throttled")
	scanner := NewFallbackScanner(repo, zap.NewNop())

	_, ok, err := scanner.FindMostRecentGame(context.Background(), "2024-06-02")

	assert.Error(t, err)
	assert.False(t, ok)
}
