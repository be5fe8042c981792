// Command vaxcli runs the immunization data pipeline: extract the raw
// spreadsheets, clean and reconcile them, load them into a relational store
// and compute the summary and analysis outputs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vaxcli/internal/config"
	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/infrastructure"
	"vaxcli/pkg/contracts"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) (code int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			code = apperrors.NewErrorHandler(infrastructure.GetLogger(), false).HandlePanic(ctx, config.AppName, r)
		}
	}()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return apperrors.ExitOK
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	name := config.AppName
	if cmd != nil {
		name = cmd.Name()
	}
	return apperrors.NewErrorHandler(infrastructure.GetLogger(), false).HandleError(ctx, name, err)
}

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configFile string
	baseDir    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Immunization coverage and disease data pipeline",
		Long: `vaxcli extracts the WHO immunization spreadsheets (coverage, incidence,
reported cases, vaccine introduction and schedule), cleans and reconciles them,
loads them into MySQL, PostgreSQL or SQLite and writes summary statistics.

Configuration is read from vaxcli.yaml, a .env file and VAX_* variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewConfigError("invalid flags", err)
	})

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.baseDir, "base-dir", "", "Directory relative paths are resolved against")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newProcessCmd(opts),
		newCreateDBCmd(opts),
		newCreateTablesCmd(opts),
		newLoadCmd(opts),
		newAnalyzeCmd(opts),
		newInspectCmd(opts),
		newRunCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// noArgs rejects positional arguments as a usage error
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return apperrors.NewConfigError(fmt.Sprintf("unexpected arguments for %s: %v", cmd.Name(), args), nil)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  noArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString(config.AppName))
		},
	}
}
