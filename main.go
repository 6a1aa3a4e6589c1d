package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tournevent/transsmart/internal/config"
	"github.com/tournevent/transsmart/internal/server"
	"github.com/tournevent/transsmart/internal/telemetry"
	"github.com/tournevent/transsmart/pkg/transsmart"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "transsmart",
	Short:   "Transsmart shipment API client and gateway",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// app holds what every provider-facing command needs.
type app struct {
	cfg    *config.Config
	logger *otelzap.Logger
	client *transsmart.Client
	close  func()
}

// newApp loads configuration and builds a client. Logs go to logOutput.
func newApp(ctx context.Context, logOutput string, recorder transsmart.Recorder) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := initLogger(cfg.LogLevel, logOutput)
	if err != nil {
		return nil, err
	}

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		tracer, tracerShutdown = nil, func(context.Context) error { return nil }
	}

	store, storeClose, err := initTokenStore(ctx, cfg, logger)
	if err != nil {
		_ = tracerShutdown(ctx)
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		client: initClient(cfg, logger, tracer, store, recorder),
		close: func() {
			if err := storeClose(); err != nil {
				logger.Warn("Failed to close token store", zap.Error(err))
			}
			_ = tracerShutdown(context.Background())
			_ = logger.Sync()
		},
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	a, err := newApp(ctx, "stdout", metrics)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("Starting Transsmart gateway",
		zap.Int("port", a.cfg.Port),
		zap.String("version", a.cfg.Version),
		zap.String("account", a.cfg.Account),
		zap.Bool("test_mode", a.cfg.TestMode),
	)

	srv := server.New(server.Config{Port: a.cfg.Port}, a.client, a.logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
