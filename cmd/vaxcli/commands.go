package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"vaxcli/internal/exporter"
	"vaxcli/internal/operations"
	"vaxcli/internal/storage"
)

// withApp wraps a command body with application setup and teardown
func withApp(opts *rootOptions, fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, a, err := newApp(cmd.Context(), opts)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a)
	}
}

// processSteps extracts, cleans, reconciles and writes the processed files
func (a *app) processSteps(ctx context.Context, sourceKind string) ([]operations.Step, error) {
	src, err := a.source(ctx, sourceKind)
	if err != nil {
		return nil, err
	}
	writer := exporter.NewCSVWriter(a.paths)
	return []operations.Step{
		operations.NewExtractStep(src),
		operations.NewCleanStep(),
		operations.NewReconcileStep(),
		operations.NewWriteProcessedStep(writer),
	}, nil
}

// openStore connects to the configured database
func (a *app) openStore(ctx context.Context) (*storage.Store, error) {
	return storage.Open(ctx, a.cfg.Database, a.logger)
}

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var sourceKind string
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Extract and clean the raw datasets into data/processed",
		Args:  noArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			steps, err := a.processSteps(ctx, sourceKind)
			if err != nil {
				return err
			}
			return a.execute(ctx, "process", steps...)
		}),
	}
	cmd.Flags().StringVar(&sourceKind, "source", "", "Raw data source (excel, sheets); defaults to configuration")
	return cmd
}

func newCreateDBCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "createdb",
		Short: "Create the configured database if it does not exist",
		Args:  noArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			if err := storage.CreateDatabase(ctx, a.cfg.Database, a.logger); err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "database ready", slog.String("database", a.cfg.Database.Name))
			return nil
		}),
	}
}

func newCreateTablesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "createtables",
		Short: "Create one table per dataset",
		Args:  noArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.CreateTables(ctx); err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "tables ready", slog.Int("tables", len(storage.Schemas)))
			return nil
		}),
	}
}

func newLoadCmd(opts *rootOptions) *cobra.Command {
	var truncate bool
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Append the processed files to the database tables",
		Args:  noArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			return a.execute(ctx, "load", operations.NewLoadStep(store, truncate))
		}),
	}
	cmd.Flags().BoolVar(&truncate, "truncate", false, "Delete existing rows before loading each table")
	return cmd
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Compute summaries, correlations and drop-off from the processed files",
		Args:  noArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			return a.execute(ctx, "analyze", operations.NewAnalyzeStep(exporter.NewCSVWriter(a.paths)))
		}),
	}
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		sourceKind string
		truncate   bool
		skipLoad   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process, load and analyze in one run",
		Args:  noArgs,
		RunE: withApp(opts, func(ctx context.Context, a *app) error {
			steps, err := a.processSteps(ctx, sourceKind)
			if err != nil {
				return err
			}
			if !skipLoad {
				store, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				defer store.Close()
				steps = append(steps, operations.NewLoadStep(store, truncate))
			}
			steps = append(steps, operations.NewAnalyzeStep(exporter.NewCSVWriter(a.paths)))
			return a.execute(ctx, "run", steps...)
		}),
	}
	cmd.Flags().StringVar(&sourceKind, "source", "", "Raw data source (excel, sheets); defaults to configuration")
	cmd.Flags().BoolVar(&truncate, "truncate", false, "Delete existing rows before loading each table")
	cmd.Flags().BoolVar(&skipLoad, "skip-load", false, "Do not load the database")
	return cmd
}
