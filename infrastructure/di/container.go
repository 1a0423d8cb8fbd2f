package di

import (
	"net/http"

	"dailytens/application/commands/bus"
	"dailytens/application/ports"
	querybus "dailytens/application/queries/bus"
	"dailytens/application/services"
	"dailytens/infrastructure/config"
	"dailytens/interfaces/http/rest"
	"dailytens/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Repository ports.GameRepository
	Extractor  ports.Extractor
	Profiles   *config.ProfileStore
	Publisher  ports.EventPublisher
	Resolver   *services.DailyResolver
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Metrics    *observability.Collector
	Router     *rest.Router
}

// Handler builds the HTTP handler for the container's router
func (c *Container) Handler() http.Handler {
	return c.Router.Setup()
}
