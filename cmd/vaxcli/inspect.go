package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var (
		raw  bool
		head int
	)
	cmd := &cobra.Command{
		Use:   "inspect [dataset...]",
		Short: "Print shape, column profile and first rows of datasets",
		Long: `inspect profiles the processed CSV files, or the raw source with --raw.
Without arguments every dataset is inspected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := inspectTargets(args)
			if err != nil {
				return err
			}
			ctx, a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			for _, spec := range specs {
				t, err := a.inspectTable(ctx, spec, raw)
				if err != nil {
					return err
				}
				if err := printProfile(cmd.OutOrStdout(), t, head); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Inspect the raw source instead of the processed files")
	cmd.Flags().IntVar(&head, "head", 5, "Number of rows to print")
	return cmd
}

// inspectTargets maps dataset names to their specs; no names selects all
func inspectTargets(names []string) ([]domain.DatasetSpec, error) {
	if len(names) == 0 {
		return domain.Datasets, nil
	}
	specs := make([]domain.DatasetSpec, 0, len(names))
	for _, name := range names {
		spec, ok := domain.LookupDataset(name)
		if !ok {
			return nil, apperrors.NewConfigError(fmt.Sprintf("unknown dataset %q", name), nil)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (a *app) inspectTable(ctx context.Context, spec domain.DatasetSpec, raw bool) (*table.Table, error) {
	if raw {
		src, err := a.source(ctx, "")
		if err != nil {
			return nil, err
		}
		return src.Read(ctx, spec)
	}
	t, err := table.ReadCSV(a.paths.ProcessedPath(spec.Dataset))
	if err != nil {
		return nil, apperrors.NewInputError("processed file unavailable", err)
	}
	return t, nil
}

// printProfile writes a describe-style report of t
func printProfile(w io.Writer, t *table.Table, head int) error {
	p := table.Describe(t)
	fmt.Fprintf(w, "== %s: %d rows x %d columns\n", p.Name, p.Rows, len(p.Columns))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "column\ttype\tmissing\tdistinct\tmean\tstd\tmin\t25%\t50%\t75%\tmax")
	for _, c := range p.Columns {
		stats := strings.Repeat("\t", 7)
		if n := c.Numeric; n != nil {
			stats = fmt.Sprintf("\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g",
				n.Mean, n.Std, n.Min, n.P25, n.P50, n.P75, n.Max)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d%s\n", c.Name, c.Type, c.Missing, c.Distinct, stats)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if head <= 0 || t.Len() == 0 {
		fmt.Fprintln(w)
		return nil
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, rec := range t.Records()[1:min(head, t.Len())+1] {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}
