package main

import (
	"context"
	"os"

	"dailytens/infrastructure/config"
	"dailytens/infrastructure/di"
	"dailytens/interfaces/cli"
)

func load(ctx context.Context) (*cli.Services, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return &cli.Services{
			Resolver:   container.Resolver,
			Extractor:  container.Extractor,
			CommandBus: container.CommandBus,
		}, func() {
			cleanup()
			_ = container.Logger.Sync()
		}, nil
}

func main() {
	if err := cli.NewRootCmd(load).Execute(); err != nil {
		os.Exit(1)
	}
}
