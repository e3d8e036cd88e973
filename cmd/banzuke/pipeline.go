package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"sumocli/internal/config"
	"sumocli/internal/exporter"
	"sumocli/internal/infrastructure"
	"sumocli/internal/league"
	"sumocli/internal/operations"
	"sumocli/internal/render"
)

// cliDeps are the pieces swapped out in tests
type cliDeps struct {
	NewRenderer func(cfg config.ScrapeConfig, logger *slog.Logger) render.Renderer
	Now         func() time.Time
}

func defaultDeps() cliDeps {
	return cliDeps{
		NewRenderer: func(cfg config.ScrapeConfig, logger *slog.Logger) render.Renderer {
			return render.NewChromeRenderer(render.ChromeOptions{
				Headless:          cfg.Headless,
				RequestsPerSecond: cfg.RequestsPerSecond,
				Logger:            logger,
			})
		},
		Now: time.Now,
	}
}

func loadConfig(cmd *cobra.Command, opts rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("headless") {
		cfg.Scrape.Headless = opts.Headless
	}
	return cfg, nil
}

func resolvePaths(cfg *config.Config) (*config.Paths, error) {
	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	return paths, nil
}

// operationsConfig maps the pipeline section onto the stage manager config
func operationsConfig(cfg config.PipelineConfig) *operations.Config {
	retry := operations.NewRetryConfig()
	if cfg.StageAttempts > 0 {
		retry.MaxAttempts = cfg.StageAttempts
	}
	if cfg.RetryDelay > 0 {
		retry.InitialDelay = cfg.RetryDelay
	}

	b := operations.NewConfigBuilder().
		WithRetryConfig(retry).
		WithContinueOnError(cfg.ContinueOnError)
	for id, timeout := range cfg.StageTimeouts {
		b.WithStageTimeout(id, timeout)
	}
	return b.Build()
}

// runPipeline wires config, logging, telemetry and the renderer, then runs
// the stages of req under a fresh run id
func runPipeline(cmd *cobra.Command, deps cliDeps, opts rootOptions, days []int, req operations.OperationRequest) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	paths, err := resolvePaths(cfg)
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create data directories: %w", err)
	}

	base, logFile, err := infrastructure.NewLogger(cfg.Logging, paths.GetDataPath(cfg.Logging.FilePath))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logFile.Close()

	// a run id already on the context is kept
	ctx, runID := infrastructure.EnsureRunID(cmd.Context())
	req.ID = runID
	logger := infrastructure.WithComponent(base, "banzuke")
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			infrastructure.WithError(logger, err).WarnContext(ctx, "telemetry_shutdown_failed")
		}
	}()

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	pipeline, err := operations.NewPipeline(operations.StageDeps{
		Config:   cfg,
		Paths:    paths,
		Tables:   league.NewTables(),
		Renderer: deps.NewRenderer(cfg.Scrape, logger),
		Writer:   exporter.NewCSVWriter(paths),
		Metrics:  metrics,
		Logger:   logger,
		Now:      deps.Now,
	}, operationsConfig(cfg.Pipeline), days)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "run_started",
		slog.String("mode", req.Mode),
		slog.Bool("retry", req.Retry),
		slog.Any("steps", req.Steps))

	resp, runErr := pipeline.Execute(ctx, req)

	if cfg.Telemetry.MetricsFile != "" {
		if err := providers.WriteMetrics(paths.GetDataPath(cfg.Telemetry.MetricsFile)); err != nil {
			infrastructure.WithError(logger, err).WarnContext(ctx, "metrics_write_failed")
		}
	}

	if runErr != nil {
		return runErr
	}

	logger.InfoContext(ctx, "run_finished",
		slog.String("status", string(resp.Status)),
		slog.Duration("duration", resp.Duration))

	if opts.Cleanup {
		if err := paths.RemoveCheckpoints(); err != nil {
			return fmt.Errorf("failed to remove checkpoints: %w", err)
		}
		logger.InfoContext(ctx, "checkpoints_removed")
	}
	return nil
}
