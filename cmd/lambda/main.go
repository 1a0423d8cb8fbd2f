// Command lambda serves the HTTP API behind an API Gateway HTTP API.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"dailytens/infrastructure/config"
	"dailytens/infrastructure/di"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type apiFunc func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// newAPI builds the container once per execution environment. Its cleanup
// never runs; the environment is frozen, not shut down.
func newAPI(ctx context.Context) (apiFunc, error) {
	start := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	container, _, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mux, ok := container.Handler().(*chi.Mux)
	if !ok {
		return nil, fmt.Errorf("router is %T, not *chi.Mux", container.Handler())
	}
	adapter := chiadapter.NewV2(mux)
	logger := container.Logger
	logger.Info("Lambda cold start completed", zap.Duration("duration", time.Since(start)))

	cold := true
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logger.Debug("Lambda received request",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RawPath),
			zap.String("requestID", req.RequestContext.RequestID),
			zap.Bool("coldStart", cold),
		)
		cold = false
		return adapter.ProxyWithContextV2(ctx, req)
	}, nil
}

func main() {
	handler, err := newAPI(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	lambda.Start(handler)
}
