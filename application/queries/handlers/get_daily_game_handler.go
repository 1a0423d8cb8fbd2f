package handlers

import (
	"context"
	"fmt"

	"dailytens/application/queries"
	"dailytens/application/queries/bus"
	"dailytens/application/services"
	"go.uber.org/zap"
)

// Resolver is the part of the daily resolver the query side needs
type Resolver interface {
	Resolve(ctx context.Context, date string) (*services.Resolution, error)
	Today() string
}

// GetDailyGameHandler handles GetDailyGameQuery
type GetDailyGameHandler struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewGetDailyGameHandler creates a new handler
func NewGetDailyGameHandler(resolver Resolver, logger *zap.Logger) *GetDailyGameHandler {
	return &GetDailyGameHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// Handle processes the query
func (h *GetDailyGameHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetDailyGameQuery)
	if !ok {
		return nil, fmt.Errorf("invalid query type: %T", query)
	}

	date := q.Date
	if date == "" {
		date = h.resolver.Today()
	}

	res, err := h.resolver.Resolve(ctx, date)
	if err != nil {
		return nil, err
	}

	return &queries.GetDailyGameResult{
		Game:          res.Record,
		RequestedDate: res.RequestedDate,
		ResolvedDate:  res.ResolvedDate(),
		Source:        string(res.Source),
	}, nil
}
