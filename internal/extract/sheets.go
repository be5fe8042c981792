package extract

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// SheetsConfig describes the Google Sheets copies of the datasets
type SheetsConfig struct {
	CredentialsFile   string
	Spreadsheets      map[string]string // dataset name -> spreadsheet ID
	Range             string
	RequestsPerMinute int
}

// SheetsSource reads datasets from Google Sheets, one spreadsheet per dataset.
// Requests are paced to stay under the per-minute read quota.
type SheetsSource struct {
	service *sheets.Service
	cfg     SheetsConfig
	limiter *rate.Limiter
}

// NewSheetsSource creates a Sheets client. Without extra options the service
// account credentials are read from cfg.CredentialsFile.
func NewSheetsSource(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsSource, error) {
	if len(opts) == 0 {
		credentialsJSON, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, apperrors.NewConfigError("failed to read Sheets credentials", err)
		}
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewConnectionError("failed to create Sheets service", err)
	}

	if cfg.Range == "" {
		cfg.Range = "A:Z"
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &SheetsSource{
		service: service,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60), 1),
	}, nil
}

// Name identifies the source in logs
func (s *SheetsSource) Name() string { return "sheets" }

// Read fetches the dataset's range as unformatted values
func (s *SheetsSource) Read(ctx context.Context, spec domain.DatasetSpec) (*table.Table, error) {
	id, ok := s.cfg.Spreadsheets[string(spec.Dataset)]
	if !ok || id == "" {
		return nil, apperrors.NewConfigError(fmt.Sprintf("no spreadsheet configured for %s", spec.Dataset), nil)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.service.Spreadsheets.Values.Get(id, s.cfg.Range).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apperrors.NewConnectionError(fmt.Sprintf("failed to read spreadsheet for %s", spec.Dataset), err)
	}

	records := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rec := make([]string, len(row))
		for j, cell := range row {
			rec[j] = cellText(cell)
		}
		records[i] = rec
	}

	t, err := table.FromRecords(string(spec.Dataset), records)
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("spreadsheet for %s is empty", spec.Dataset), err)
	}
	return t, nil
}

func cellText(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
