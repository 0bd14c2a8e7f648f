package main

import (
	"context"
	"fmt"

	"github.com/Binusha25Liyanage/MoneyMate/internal/backend"
	applog "github.com/Binusha25Liyanage/MoneyMate/internal/log"
)

func openBackend(ctx context.Context, autoMigrate bool) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	bcfg.AutoMigrate = autoMigrate

	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

func closeBackend(res *backend.BackendResult) {
	if err := res.Close(); err != nil {
		logger.Error("Failed to close backend", applog.FieldError, err)
	}
}
