// Package resilient wraps a game repository with a circuit breaker so a
// failing store is skipped quickly instead of stalling every request.
package resilient

import (
	"context"
	"errors"
	"time"

	"dailytens/application/ports"
	"dailytens/domain/game"
	pkgerrors "dailytens/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the store circuit breaker
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// GameRepository is a circuit-breaking decorator over another repository
type GameRepository struct {
	next    ports.GameRepository
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewGameRepository wraps next with a circuit breaker
func NewGameRepository(next ports.GameRepository, config BreakerConfig, logger *zap.Logger) *GameRepository {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A lost create-if-absent race is a healthy store answering.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ports.ErrGameExists)
		},
	})

	return &GameRepository{
		next:    next,
		breaker: breaker,
		logger:  logger,
	}
}

type getResult struct {
	rec   *game.Record
	found bool
}

// Get reads through the breaker
func (r *GameRepository) Get(ctx context.Context, date string) (*game.Record, bool, error) {
	out, err := r.breaker.Execute(func() (interface{}, error) {
		rec, found, err := r.next.Get(ctx, date)
		if err != nil {
			return nil, err
		}
		return getResult{rec: rec, found: found}, nil
	})
	if err != nil {
		return nil, false, r.translate(err)
	}
	res := out.(getResult)
	return res.rec, res.found, nil
}

// CreateIfAbsent writes through the breaker
func (r *GameRepository) CreateIfAbsent(ctx context.Context, rec *game.Record) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.next.CreateIfAbsent(ctx, rec)
	})
	return r.translate(err)
}

// ScanDatesAtOrBefore scans through the breaker
func (r *GameRepository) ScanDatesAtOrBefore(ctx context.Context, date string) ([]string, error) {
	out, err := r.breaker.Execute(func() (interface{}, error) {
		return r.next.ScanDatesAtOrBefore(ctx, date)
	})
	if err != nil {
		return nil, r.translate(err)
	}
	dates, _ := out.([]string)
	return dates, nil
}

// State exposes the breaker state for readiness reporting
func (r *GameRepository) State() gobreaker.State {
	return r.breaker.State()
}

func (r *GameRepository) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.StoreUnavailable("", err)
	}
	return err
}

var _ ports.GameRepository = (*GameRepository)(nil)
