package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"dailytens/application/commands"
	"dailytens/application/commands/bus"
	commandhandlers "dailytens/application/commands/handlers"
	"dailytens/application/ports"
	"dailytens/application/queries"
	querybus "dailytens/application/queries/bus"
	queryhandlers "dailytens/application/queries/handlers"
	"dailytens/application/services"
	"dailytens/infrastructure/config"
	"dailytens/infrastructure/messaging/eventbridge"
	"dailytens/infrastructure/persistence/cache"
	"dailytens/infrastructure/persistence/dynamodb"
	"dailytens/infrastructure/persistence/memory"
	"dailytens/infrastructure/persistence/resilient"
	"dailytens/infrastructure/persistence/sqlite"
	"dailytens/infrastructure/scraper"
	"dailytens/interfaces/http/rest"
	"dailytens/interfaces/http/rest/middleware"
	"dailytens/pkg/common"
	pkgerrors "dailytens/pkg/errors"
	"dailytens/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

const serviceName = "dailytens"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = level
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client, pointed at DYNAMODB_ENDPOINT
// when one is set (DynamoDB Local)
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the metrics collector, or nil when metrics are off
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(serviceName)
}

// ProvideTracer creates the X-Ray tracer, or nil when tracing is off
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer(serviceName)
}

// ProvideClock provides the wall clock
func ProvideClock() common.Clock {
	return common.SystemClock{}
}

// ProvideGameRepository builds the content store for STORE_DRIVER and wraps
// it in the circuit breaker and the read cache.
func ProvideGameRepository(
	ctx context.Context,
	cfg *config.Config,
	client *awsdynamodb.Client,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (ports.GameRepository, func(), error) {
	var (
		repo    ports.GameRepository
		cleanup = func() {}
	)

	switch cfg.StoreDriver {
	case config.StoreDynamoDB:
		repo = dynamodb.NewGameRepository(client, cfg.DynamoDBTable, metrics, tracer, logger)
	case config.StoreSQLite:
		sqliteRepo, err := sqlite.NewGameRepository(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		repo = sqliteRepo
		cleanup = func() {
			if err := sqliteRepo.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", zap.Error(err))
			}
		}
	case config.StoreMemory:
		repo = memory.NewGameRepository()
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	logger.Info("Content store configured",
		zap.String("driver", cfg.StoreDriver),
		zap.Bool("breaker", cfg.BreakerEnabled),
		zap.Duration("cacheTTL", cfg.ReadCacheTTL),
	)

	if cfg.BreakerEnabled {
		repo = resilient.NewGameRepository(repo, resilient.BreakerConfig{
			Name:             "game-store",
			MaxRequests:      uint32(cfg.BreakerMaxRequests),
			Interval:         cfg.BreakerInterval,
			Timeout:          cfg.BreakerTimeout,
			FailureThreshold: cfg.BreakerThreshold,
			MinRequests:      uint32(cfg.BreakerMinRequests),
		}, logger)
	}

	if cfg.ReadCacheTTL > 0 {
		cacheCtx, cancel := context.WithCancel(ctx)
		repo = cache.NewGameRepository(repo, cache.NewRecordCache(cacheCtx, cfg.ReadCacheTTL), metrics, logger)
		closeStore := cleanup
		cleanup = func() {
			cancel()
			closeStore()
		}
	}

	return repo, cleanup, nil
}

// ProvideProfileStore loads the selector profile. A missing file falls back
// to the built-in profile; with WATCH_SELECTORS the file is hot reloaded.
func ProvideProfileStore(cfg *config.Config, logger *zap.Logger) (*config.ProfileStore, func(), error) {
	profile, err := config.LoadSelectorProfile(cfg.SelectorsFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, err
		}
		logger.Warn("Selector file not found, using built-in selectors",
			zap.String("file", cfg.SelectorsFile),
		)
		return config.NewProfileStore(config.DefaultSelectorProfile()), func() {}, nil
	}

	store := config.NewProfileStore(profile)
	if !cfg.WatchSelector || cfg.SelectorsFile == "" {
		return store, func() {}, nil
	}

	watcher, err := config.NewSelectorWatcher(cfg.SelectorsFile, store, logger)
	if err != nil {
		return nil, nil, err
	}
	watcher.OnChange(func(p config.SelectorProfile) {
		logger.Info("Selector profile reloaded",
			zap.Int("titleSelectors", len(p.TitleSelectors)),
			zap.Int("answerSelectors", len(p.AnswerSelectors)),
		)
	})
	return store, watcher.Stop, nil
}

// ProvideExtractor creates the Playwright-backed extractor
func ProvideExtractor(cfg *config.Config, profiles *config.ProfileStore, logger *zap.Logger) ports.Extractor {
	opts := scraper.DefaultPlaywrightOptions()
	opts.ExecutablePath = cfg.BrowserExecutable
	opts.InstallDriver = cfg.InstallBrowser

	browser := scraper.NewPlaywrightBrowser(opts, logger)
	return scraper.NewExtractor(browser, profiles, logger)
}

// ProvideEventPublisher publishes to EventBridge when a bus is configured and
// only logs otherwise
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NewLogPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideResolver creates the daily resolver
func ProvideResolver(
	repo ports.GameRepository,
	extractor ports.Extractor,
	publisher ports.EventPublisher,
	clock common.Clock,
	cfg *config.Config,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*services.DailyResolver, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return services.NewDailyResolver(repo, extractor, publisher, clock, services.ResolverConfig{
		Location:       loc,
		PersistTimeout: cfg.PersistTimeout,
	}, metrics, tracer, logger), nil
}

// ProvideCommandBus creates and configures the command bus
func ProvideCommandBus(
	repo ports.GameRepository,
	publisher ports.EventPublisher,
	clock common.Clock,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))

	createHandler := commandhandlers.NewCreateGameHandler(repo, publisher, clock, logger)
	if err := commandBus.Register(commands.CreateGameCommand{}, createHandler); err != nil {
		return nil, fmt.Errorf("failed to register create game handler: %w", err)
	}

	return commandBus, nil
}

// ProvideQueryBus creates and configures the query bus
func ProvideQueryBus(resolver *services.DailyResolver, logger *zap.Logger) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(querybus.LoggingMiddleware(logger))

	if err := queryBus.Register(queries.GetDailyGameQuery{}, queryhandlers.NewGetDailyGameHandler(resolver, logger)); err != nil {
		return nil, fmt.Errorf("failed to register daily game handler: %w", err)
	}

	return queryBus, nil
}

// ProvideErrorHandler creates the HTTP error handler; stack traces are only
// exposed outside production
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	repo ports.GameRepository,
	errorHandler *pkgerrors.ErrorHandler,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, repo, errorHandler, metrics, rest.RouterConfig{
		EnableCORS:     cfg.EnableCORS,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Auth: middleware.AuthConfig{
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
		},
	}, logger)
}
