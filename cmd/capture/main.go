// Command capture is a scheduled Lambda that resolves today's game once so
// the first player of the day is served from the store.
package main

import (
	"context"
	"log"

	"dailytens/infrastructure/config"
	"dailytens/infrastructure/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var container *di.Container

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, _, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
}

// Handler resolves today. A fallback result is logged but not an error: the
// schedule retries on its next tick and the request path still serves the
// previous board.
func Handler(ctx context.Context, event events.CloudWatchEvent) error {
	today := container.Resolver.Today()
	logger := container.Logger.With(
		zap.String("date", today),
		zap.String("eventID", event.ID),
	)

	res, err := container.Resolver.Resolve(ctx, today)
	if err != nil {
		logger.Error("Scheduled capture failed", zap.Error(err))
		return err
	}

	if res.ResolvedDate() != today {
		logger.Warn("Scheduled capture fell back",
			zap.String("resolvedDate", res.ResolvedDate()),
		)
		return nil
	}

	logger.Info("Scheduled capture complete",
		zap.String("source", string(res.Source)),
		zap.String("title", res.Record.Title),
	)
	return nil
}

func main() {
	lambda.Start(Handler)
}
