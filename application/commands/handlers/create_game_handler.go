package handlers

import (
	"context"
	"errors"
	"fmt"

	"dailytens/application/commands"
	"dailytens/application/commands/bus"
	"dailytens/application/ports"
	"dailytens/domain/events"
	"dailytens/pkg/common"
	pkgerrors "dailytens/pkg/errors"
	"go.uber.org/zap"
)

// MsgGameExists is returned when the date already has a game
const MsgGameExists = "A game for this date already exists"

// MsgStoreFailure is returned when the write itself failed
const MsgStoreFailure = "Failed to add game data"

// CreateGameHandler handles CreateGameCommand
type CreateGameHandler struct {
	repo      ports.GameRepository
	publisher ports.EventPublisher
	clock     common.Clock
	logger    *zap.Logger
}

// NewCreateGameHandler creates a new create game handler
func NewCreateGameHandler(
	repo ports.GameRepository,
	publisher ports.EventPublisher,
	clock common.Clock,
	logger *zap.Logger,
) *CreateGameHandler {
	if clock == nil {
		clock = common.SystemClock{}
	}
	return &CreateGameHandler{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Handle executes the create game command. Unlike the resolver's persist
// step, both a lost race and a store failure are surfaced to the caller.
func (h *CreateGameHandler) Handle(ctx context.Context, command bus.Command) error {
	cmd, ok := command.(commands.CreateGameCommand)
	if !ok {
		return fmt.Errorf("invalid command type: %T", command)
	}

	rec := cmd.Record
	if err := h.repo.CreateIfAbsent(ctx, rec); err != nil {
		if errors.Is(err, ports.ErrGameExists) {
			return pkgerrors.NewConflictError(MsgGameExists).
				WithCode(pkgerrors.CodeGameExists).
				WithDetails(map[string]interface{}{"date": rec.Date})
		}

		h.logger.Error("Failed to store game",
			zap.String("date", rec.Date),
			zap.Error(err),
		)
		appErr := pkgerrors.NewDatabaseError("create_game", err).WithCode(pkgerrors.CodeStoreFailure)
		appErr.Message = MsgStoreFailure
		return appErr
	}

	h.logger.Info("Game created",
		zap.String("date", rec.Date),
		zap.String("origin", cmd.Origin),
	)

	if h.publisher != nil {
		origin := cmd.Origin
		if origin == "" {
			origin = events.OriginAuthoring
		}
		event := events.NewGameCaptured(rec.Date, rec.Title, len(rec.CorrectAnswers), origin, h.clock.Now().UTC())
		if err := h.publisher.Publish(ctx, event); err != nil {
			// The record is stored; a lost event does not fail the write.
			h.logger.Warn("Failed to publish game captured event",
				zap.String("date", rec.Date),
				zap.Error(err),
			)
		}
	}

	return nil
}
