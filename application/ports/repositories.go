package ports

import (
	"context"
	"errors"

	"dailytens/domain/events"
	"dailytens/domain/game"
)

// ErrGameExists is returned by CreateIfAbsent when a record for the date is
// already stored. The stored record is left untouched.
var ErrGameExists = errors.New("game already exists for date")

// GameRepository defines the interface for game content persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type GameRepository interface {
	// Get retrieves the record stored under date. A missing record is reported
	// through found=false, never through err.
	Get(ctx context.Context, date string) (rec *game.Record, found bool, err error)

	// CreateIfAbsent stores rec only if no record exists for rec.Date.
	// Returns ErrGameExists when another writer got there first.
	CreateIfAbsent(ctx context.Context, rec *game.Record) error

	// ScanDatesAtOrBefore returns every stored date <= date in ascending order.
	ScanDatesAtOrBefore(ctx context.Context, date string) ([]string, error)
}

// Extractor produces today's content from the live source page. Every failure
// is collapsed into ok=false.
type Extractor interface {
	Extract(ctx context.Context) (candidate *game.Candidate, ok bool)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}
