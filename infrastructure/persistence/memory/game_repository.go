// Package memory provides an in-process game repository for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"dailytens/application/ports"
	"dailytens/domain/game"
)

// GameRepository keeps records in a map guarded by a mutex
type GameRepository struct {
	mu      sync.RWMutex
	records map[string]*game.Record
}

// NewGameRepository creates an empty repository
func NewGameRepository() *GameRepository {
	return &GameRepository{
		records: make(map[string]*game.Record),
	}
}

// Get returns a copy of the stored record
func (r *GameRepository) Get(ctx context.Context, date string) (*game.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[date]
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

// CreateIfAbsent stores a copy of rec unless the date is taken
func (r *GameRepository) CreateIfAbsent(ctx context.Context, rec *game.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.Date]; exists {
		return ports.ErrGameExists
	}
	r.records[rec.Date] = rec.Clone()
	return nil
}

// ScanDatesAtOrBefore lists stored dates <= date in ascending order
func (r *GameRepository) ScanDatesAtOrBefore(ctx context.Context, date string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	dates := make([]string, 0, len(r.records))
	for d := range r.records {
		if d <= date {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// Len returns the number of stored records
func (r *GameRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

var _ ports.GameRepository = (*GameRepository)(nil)
