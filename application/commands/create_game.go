package commands

import (
	"dailytens/domain/events"
	"dailytens/domain/game"
)

// CreateGameCommand stores a complete record for a date that has none yet
type CreateGameCommand struct {
	Record *game.Record
	Origin string
}

// Validate validates the CreateGameCommand
func (c CreateGameCommand) Validate() error {
	return game.ValidateRecord(c.Record)
}

// NewCreateGameCommand creates an authoring command for rec
func NewCreateGameCommand(rec *game.Record) CreateGameCommand {
	return CreateGameCommand{Record: rec, Origin: events.OriginAuthoring}
}
