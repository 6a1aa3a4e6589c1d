package main

import (
	"context"
	"fmt"

	"github.com/tournevent/transsmart/internal/config"
	"github.com/tournevent/transsmart/internal/telemetry"
	"github.com/tournevent/transsmart/pkg/transsmart"
	"github.com/tournevent/transsmart/pkg/transsmart/redisstore"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level, output string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level, output)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}

	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Attributes()...)
}

func initTokenStore(ctx context.Context, cfg *config.Config, logger *otelzap.Logger) (transsmart.TokenStore, func() error, error) {
	if cfg.TokenStore != config.StoreRedis {
		return transsmart.NewMemoryStore(), func() error { return nil }, nil
	}

	store := redisstore.New(redisstore.Config{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		KeyPrefix: cfg.RedisKeyPrefix,
	})
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("token store: %w", err)
	}

	logger.Info("Using Redis token store", zap.String("addr", cfg.RedisAddr))
	return store, store.Close, nil
}

func initClient(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer, store transsmart.TokenStore, recorder transsmart.Recorder) *transsmart.Client {
	return transsmart.New(transsmart.Config{
		Username:    cfg.Username,
		Password:    cfg.Password,
		Account:     cfg.Account,
		TestMode:    cfg.TestMode,
		BaseURL:     cfg.BaseURL,
		TestBaseURL: cfg.TestBaseURL,
		Timeout:     cfg.Timeout,
		Store:       store,
		Recorder:    recorder,
	}, logger, tracer)
}
