// Package extract reads the raw immunization datasets into tables.
package extract

import (
	"context"
	"log/slog"

	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// Source reads one raw dataset
type Source interface {
	Read(ctx context.Context, spec domain.DatasetSpec) (*table.Table, error)
	Name() string
}

// Checker is implemented by sources that can verify their inputs before reading
type Checker interface {
	Check() error
}

// ReadAll reads every dataset in pipeline order and checks required columns.
// A dataset missing a required column aborts extraction.
func ReadAll(ctx context.Context, src Source, logger *slog.Logger) (map[domain.Dataset]*table.Table, error) {
	out := make(map[domain.Dataset]*table.Table, len(domain.Datasets))
	for _, spec := range domain.Datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := src.Read(ctx, spec)
		if err != nil {
			return nil, err
		}
		if err := CheckColumns(t, spec); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "dataset extracted",
			slog.String("source", src.Name()),
			slog.String("dataset", string(spec.Dataset)),
			slog.Int("rows", t.Len()),
			slog.Int("columns", len(t.Columns)))
		out[spec.Dataset] = t
	}
	return out, nil
}

// CheckColumns verifies the required raw columns are present (case-sensitive)
func CheckColumns(t *table.Table, spec domain.DatasetSpec) error {
	if missing := t.MissingColumns(spec.Required...); len(missing) > 0 {
		return apperrors.NewMissingKeyError(string(spec.Dataset), missing)
	}
	return nil
}
