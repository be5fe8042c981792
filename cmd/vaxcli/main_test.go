package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vaxcli/internal/config"
	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/storage"
	"vaxcli/pkg/contracts/domain"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// writeWorkbook saves rows to the first sheet of a new workbook
func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

// writeRawFixtures creates the five source workbooks under base/data/raw
func writeRawFixtures(t *testing.T, base string) {
	t.Helper()
	dir := filepath.Join(base, config.DefaultRawDir)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	coverage := [][]interface{}{{"GROUP", "CODE", "NAME", "YEAR", "ANTIGEN", "ANTIGEN_DESCRIPTION",
		"COVERAGE_CATEGORY", "COVERAGE_CATEGORY_DESCRIPTION", "TARGET_NUMBER", "DOSES", "COVERAGE"}}
	incidence := [][]interface{}{{"GROUP", "CODE", "NAME", "YEAR", "DISEASE", "DISEASE_DESCRIPTION",
		"DENOMINATOR", "INCIDENCE_RATE"}}
	cases := [][]interface{}{{"GROUP", "CODE", "NAME", "YEAR", "DISEASE", "DISEASE_DESCRIPTION", "CASES"}}

	for i, code := range []string{"AFG", "ALB", "BEN", "BOL", "CAN", "CHL"} {
		for _, year := range []int{2019, 2020} {
			pol1 := 95 - i*4 - (year - 2019)
			coverage = append(coverage,
				[]interface{}{"COUNTRIES", code, code, year, "POL1", "Polio 1", "ADMIN", "Administrative", 1000, pol1 * 10, pol1},
				[]interface{}{"COUNTRIES", code, code, year, "POL3", "Polio 3", "ADMIN", "Administrative", 1000, (pol1 - 12) * 10, pol1 - 12})
			incidence = append(incidence,
				[]interface{}{"COUNTRIES", code, code, year, "POLIO", "Polio", "per 1,000,000 <15 population", 0.5 + float64(i)})
			cases = append(cases,
				[]interface{}{"COUNTRIES", code, code, year, "POLIO", "Polio", 3 + i*2 + year - 2019})
		}
	}

	writeWorkbook(t, filepath.Join(dir, "coverage.xlsx"), coverage)
	writeWorkbook(t, filepath.Join(dir, "incidence.xlsx"), incidence)
	writeWorkbook(t, filepath.Join(dir, "reported_cases.xlsx"), cases)
	writeWorkbook(t, filepath.Join(dir, "vaccine_introduction.xlsx"), [][]interface{}{
		{"ISO_3_CODE", "COUNTRYNAME", "WHO_REGION", "YEAR", "DESCRIPTION", "INTRO"},
		{"AFG", "Afghanistan", "EMRO", 2019, "IPV", "Yes"},
		{"AFG", "Afghanistan", "EMRO", 2019, "IPV (1st dose)", "Yes"},
	})
	writeWorkbook(t, filepath.Join(dir, "vaccine_schedule.xlsx"), [][]interface{}{
		{"ISO_3_CODE", "COUNTRYNAME", "WHO_REGION", "YEAR", "VACCINECODE", "VACCINE_DESCRIPTION",
			"SCHEDULEROUNDS", "TARGETPOP", "TARGETPOP_DESCRIPTION", "GEOAREA", "AGEADMINISTERED", "SOURCECOMMENT"},
		{"AFG", "Afghanistan", "EMRO", 2019, "IPV", "Inactivated polio", 1, "", "General", "NATIONAL", "W14", ""},
	})
}

func setupEnv(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	dbPath := filepath.Join(base, "vaccination.db")
	t.Setenv("VAX_LOGGING_OUTPUT", "console")
	t.Setenv("VAX_DB_DRIVER", "sqlite")
	t.Setenv("VAX_DB_NAME", dbPath)
	return base, dbPath
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, "version")
	assert.Equal(t, apperrors.ExitOK, code)
	assert.Contains(t, out, config.AppName+" version "+config.AppVersion)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"version", "--nope"}},
		{"positional argument", []string{"analyze", "extra"}},
		{"unknown dataset", []string{"inspect", "measles"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			assert.Equal(t, apperrors.ExitUsage, code)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestAnalyze_MissingProcessedFiles(t *testing.T) {
	base, _ := setupEnv(t)
	code, _, _ := run(t, "analyze", "--base-dir", base)
	assert.Equal(t, apperrors.ExitInput, code)

	content, err := os.ReadFile(filepath.Join(base, config.DefaultOutputsDir, config.RunReportFileName))
	require.NoError(t, err)
	var report domain.RunReport
	require.NoError(t, json.Unmarshal(content, &report))
	assert.Equal(t, "failed", report.Status)
	assert.NotEmpty(t, report.Error)
}

func TestRun_EndToEnd(t *testing.T) {
	base, dbPath := setupEnv(t)
	writeRawFixtures(t, base)

	code, _, stderr := run(t, "createtables", "--base-dir", base)
	require.Equal(t, apperrors.ExitOK, code, stderr)

	code, _, stderr = run(t, "run", "--base-dir", base)
	require.Equal(t, apperrors.ExitOK, code, stderr)

	outputs := filepath.Join(base, config.DefaultOutputsDir)
	for _, name := range []string{
		config.SummaryFileName, config.CorrelationsFileName, config.DoseDropFileName,
		config.RunReportFileName, config.MetricsFileName,
	} {
		assert.FileExists(t, filepath.Join(outputs, name))
	}
	assert.FileExists(t, filepath.Join(base, config.DefaultProcessedDir, domain.ReconciledIntroductionFile))

	content, err := os.ReadFile(filepath.Join(outputs, config.RunReportFileName))
	require.NoError(t, err)
	var report domain.RunReport
	require.NoError(t, json.Unmarshal(content, &report))
	assert.Equal(t, "succeeded", report.Status)
	assert.Equal(t, "run", report.Command)
	require.NotNil(t, report.Reconcile)
	assert.Equal(t, 1, report.Reconcile.Remapped)
	assert.Len(t, report.Loads, len(storage.Schemas))

	ctx := context.Background()
	store, err := storage.Open(ctx, config.DatabaseConfig{
		Driver:         "sqlite",
		Name:           dbPath,
		ConnectTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	defer store.Close()
	n, err := store.Count(ctx, storage.Schemas[0])
	require.NoError(t, err)
	assert.Equal(t, 24, n)

	code, out, stderr := run(t, "inspect", "coverage", "--base-dir", base, "--head", "2")
	require.Equal(t, apperrors.ExitOK, code, stderr)
	assert.Contains(t, out, "== coverage: 24 rows x 11 columns")
	assert.Contains(t, out, "coverage_flag")
}
