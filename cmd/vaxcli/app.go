package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"vaxcli/internal/config"
	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/exporter"
	"vaxcli/internal/extract"
	"vaxcli/internal/infrastructure"
	"vaxcli/internal/operations"
)

const shutdownTimeout = 5 * time.Second

// app holds what one command invocation needs
type app struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	otel    *infrastructure.OTelProviders
	metrics *infrastructure.PipelineMetrics
	runID   string
}

// newApp loads configuration and starts logging and telemetry.
// The returned context carries the run ID.
func newApp(ctx context.Context, opts *rootOptions) (context.Context, *app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return ctx, nil, apperrors.NewConfigError("failed to load configuration", err)
	}
	if opts.baseDir != "" {
		cfg.Paths.BaseDir = opts.baseDir
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
		if err := cfg.Validate(); err != nil {
			return ctx, nil, apperrors.NewConfigError("invalid log level", err)
		}
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return ctx, nil, apperrors.NewConfigError("failed to resolve paths", err)
	}
	cfg.Logging.FilePath = resolve(paths, cfg.Logging.FilePath)
	cfg.Telemetry.MetricsFile = resolve(paths, cfg.Telemetry.MetricsFile)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return ctx, nil, apperrors.NewConfigError("failed to initialize logger", err)
	}

	ctx = infrastructure.EnsureRunID(ctx)
	a := &app{
		cfg:    cfg,
		paths:  paths,
		logger: logger,
		runID:  infrastructure.GetRunID(ctx),
	}

	a.otel, err = infrastructure.InitializeOTel(infrastructure.OTelConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: config.AppVersion,
		TraceExporter:  cfg.Telemetry.TraceExporter,
	}, logger)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.metrics, err = infrastructure.CreatePipelineMetrics(a.otel.Meter)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	paths.LogPathResolution(logger)
	return ctx, a, nil
}

// resolve joins a relative path to the base directory
func resolve(paths *config.Paths, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(paths.BaseDir, p)
}

// execute runs steps as one pipeline run and writes the run report
func (a *app) execute(ctx context.Context, command string, steps ...operations.Step) error {
	state := operations.NewState(a.runID, command, a.cfg, a.paths, a.logger)
	state.Metrics = a.metrics

	tracer := operations.NewOperationTracer(a.otel.Tracer, a.metrics)
	err := operations.NewManager(tracer, a.logger).Execute(ctx, state, steps...)

	if perr := a.paths.EnsureDirectories(); perr == nil {
		if werr := exporter.WriteRunReport(a.paths.RunReportFile, state.Report); werr != nil {
			a.logger.WarnContext(ctx, "failed to write run report", slog.String("error", werr.Error()))
		}
	}

	if err != nil {
		infrastructure.WithError(a.logger, err).ErrorContext(ctx, "run failed",
			slog.String("command", command),
			slog.String("step", operations.FailedStep(err)),
			slog.String("failure", string(operations.GetErrorType(err))))
	}
	a.logger.InfoContext(ctx, "run finished",
		slog.String("command", command),
		slog.String("status", state.Report.Status),
		slog.Int("outputs", len(state.Report.Outputs)))
	return err
}

// source selects the raw dataset source from configuration
func (a *app) source(ctx context.Context, kind string) (extract.Source, error) {
	if kind == "" {
		kind = a.cfg.Source.Kind
	}
	switch kind {
	case "excel":
		return extract.NewExcelSource(a.paths.RawDir), nil
	case "sheets":
		src, err := extract.NewSheetsSource(ctx, extract.SheetsConfig{
			CredentialsFile:   resolve(a.paths, a.cfg.Source.CredentialsFile),
			Spreadsheets:      a.cfg.Source.Spreadsheets,
			Range:             a.cfg.Source.SheetRange,
			RequestsPerMinute: a.cfg.Source.RequestsPerMinute,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown source %q", kind), nil)
	}
}

// close flushes metrics and shuts telemetry and the log file down
func (a *app) close() {
	if a.cfg.Telemetry.MetricsFile != "" {
		if err := a.otel.WriteMetrics(a.cfg.Telemetry.MetricsFile); err != nil {
			a.logger.Warn("failed to write metrics", slog.String("error", err.Error()))
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
	}
	infrastructure.CloseLogFile()
}
