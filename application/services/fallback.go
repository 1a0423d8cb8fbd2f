package services

import (
	"context"
	"fmt"
	"sort"

	"dailytens/application/ports"
	"go.uber.org/zap"
)

// FallbackScanner finds the nearest stored date before a given one
type FallbackScanner struct {
	repo   ports.GameRepository
	logger *zap.Logger
}

// NewFallbackScanner creates a new fallback scanner
func NewFallbackScanner(repo ports.GameRepository, logger *zap.Logger) *FallbackScanner {
	return &FallbackScanner{
		repo:   repo,
		logger: logger,
	}
}

// FindMostRecentGame returns the latest stored date strictly before from.
// ISO dates order lexicographically, so no parsing is involved.
func (s *FallbackScanner) FindMostRecentGame(ctx context.Context, from string) (string, bool, error) {
	dates, err := s.repo.ScanDatesAtOrBefore(ctx, from)
	if err != nil {
		return "", false, fmt.Errorf("failed to scan stored dates: %w", err)
	}

	sorted := make([]string, len(dates))
	copy(sorted, dates)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	for _, d := range sorted {
		if d < from {
			s.logger.Debug("Fallback date found",
				zap.String("from", from),
				zap.String("date", d),
				zap.Int("scanned", len(dates)),
			)
			return d, true, nil
		}
	}

	return "", false, nil
}
