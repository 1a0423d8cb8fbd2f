package handlers

import (
	"net/http"

	"dailytens/application/commands"
	"dailytens/application/commands/bus"
	"dailytens/application/queries"
	querybus "dailytens/application/queries/bus"
	"dailytens/domain/game"
	"dailytens/interfaces/http/rest/middleware"
	"dailytens/pkg/common"
	pkgerrors "dailytens/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxPayloadBytes caps an authoring request body
const maxPayloadBytes = 64 << 10

// MsgGameCreated is the body of a successful authoring write
const MsgGameCreated = "Game data added successfully"

// GameResponse is the wire shape of a game record
type GameResponse struct {
	PK             string   `json:"pk"`
	Date           string   `json:"date"`
	Title          string   `json:"title"`
	CorrectAnswers []string `json:"correctAnswers"`
}

// ResolutionMeta tells the client which date was actually served
type ResolutionMeta struct {
	RequestedDate string `json:"requestedDate"`
	ResolvedDate  string `json:"resolvedDate"`
	Source        string `json:"source"`
}

// ConfigResponse carries the board constants the UI needs
type ConfigResponse struct {
	MaxLives    int `json:"maxLives"`
	AnswerCount int `json:"answerCount"`
}

// GameHandler handles game HTTP requests
type GameHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *GameHandler {
	return &GameHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// GetGame handles GET /api/game and GET /api/game/{date}. The date comes
// from the path, then the query string; neither means today.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "" {
		date = r.URL.Query().Get("date")
	}

	res, err := querybus.Ask[*queries.GetDailyGameResult](r.Context(), h.queryBus, queries.GetDailyGameQuery{Date: date})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondWithMeta(w, http.StatusOK, toGameResponse(res.Game), ResolutionMeta{
		RequestedDate: res.RequestedDate,
		ResolvedDate:  res.ResolvedDate,
		Source:        res.Source,
	})
}

// CreateGame handles POST /api/game. The payload shape is checked before
// the date format, and both before any store access.
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	raw, err := common.ReadBody(w, r, maxPayloadBytes)
	if err != nil {
		h.errorHandler.Handle(w, r, pkgerrors.NewValidationError(game.MsgInvalidPayload).
			WithCode(pkgerrors.CodeInvalidPayload))
		return
	}

	rec, err := game.ParsePayload(raw)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	author := middleware.AuthorFromContext(r.Context())
	if err := h.commandBus.Send(r.Context(), commands.NewCreateGameCommand(rec)); err != nil {
		h.logger.Warn("Authoring write rejected",
			zap.String("date", rec.Date),
			zap.String("author", author),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("Game authored",
		zap.String("date", rec.Date),
		zap.String("author", author),
	)

	common.RespondMessage(w, http.StatusCreated, MsgGameCreated)
}

// GetConfig handles GET /api/config
func (h *GameHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, ConfigResponse{
		MaxLives:    game.MaxLives,
		AnswerCount: game.AnswerCount,
	})
}

func toGameResponse(rec *game.Record) GameResponse {
	return GameResponse{
		PK:             rec.Date,
		Date:           rec.Date,
		Title:          rec.Title,
		CorrectAnswers: rec.CorrectAnswers,
	}
}
