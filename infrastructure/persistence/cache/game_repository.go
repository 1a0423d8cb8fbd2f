// Package cache fronts a game repository with a read cache. Records are
// never updated once created, so a found record can be served from memory;
// misses are never cached because today's game may appear at any moment.
package cache

import (
	"context"
	"errors"

	"dailytens/application/ports"
	"dailytens/domain/game"
	"dailytens/pkg/observability"

	"go.uber.org/zap"
)

// GameRepository is a read-through caching decorator
type GameRepository struct {
	next    ports.GameRepository
	cache   *RecordCache
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewGameRepository wraps next with cache
func NewGameRepository(next ports.GameRepository, cache *RecordCache, metrics *observability.Collector, logger *zap.Logger) *GameRepository {
	return &GameRepository{
		next:    next,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Get serves found records from the cache
func (r *GameRepository) Get(ctx context.Context, date string) (*game.Record, bool, error) {
	if rec, ok := r.cache.Get(date); ok {
		r.metrics.RecordStoreOperation("get", "cache_hit")
		return rec, true, nil
	}

	rec, found, err := r.next.Get(ctx, date)
	if err != nil || !found {
		return rec, found, err
	}

	r.cache.Set(rec)
	return rec, true, nil
}

// CreateIfAbsent writes through and caches the stored record on success
func (r *GameRepository) CreateIfAbsent(ctx context.Context, rec *game.Record) error {
	err := r.next.CreateIfAbsent(ctx, rec)
	if err == nil {
		r.cache.Set(rec)
		return nil
	}
	if errors.Is(err, ports.ErrGameExists) {
		r.logger.Debug("Create lost to an existing record", zap.String("date", rec.Date))
	}
	return err
}

// ScanDatesAtOrBefore is never cached
func (r *GameRepository) ScanDatesAtOrBefore(ctx context.Context, date string) ([]string, error) {
	return r.next.ScanDatesAtOrBefore(ctx, date)
}

var _ ports.GameRepository = (*GameRepository)(nil)
