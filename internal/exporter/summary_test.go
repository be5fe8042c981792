package exporter

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

func f64(v float64) *float64 { return &v }

func readBack(t *testing.T, path string) *table.Table {
	t.Helper()
	tbl, err := table.ReadCSV(path)
	require.NoError(t, err)
	return tbl
}

func TestExportSummary(t *testing.T) {
	writer, paths := setupTestEnv(t)
	exp := NewSummaryExporter(writer)

	count := 2
	rows := []domain.AggregatedSummary{
		{Code: "AFG", Year: 2019, AvgCoverage: f64(82.5), CoverageCount: &count},
		{Code: "BEN", Year: 2018, TotalCases: f64(0)},
	}
	require.NoError(t, exp.ExportSummary("eda_cleaned_summary.csv", rows))

	got := readBack(t, paths.OutputPath("eda_cleaned_summary.csv"))
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "82.5", got.Get(0, "avg_coverage").Text())
	assert.True(t, got.Get(0, "total_cases").IsMissing())
	assert.Equal(t, "0", got.Get(1, "total_cases").Text())
}

func TestExportCorrelations(t *testing.T) {
	writer, paths := setupTestEnv(t)
	exp := NewSummaryExporter(writer)

	results := []domain.CorrelationResult{
		{Scope: "overall", X: "avg_coverage", Y: "total_cases", N: 7, Defined: true, PearsonR: -0.5, PearsonP: 0.25, SpearmanR: -0.4, SpearmanP: 0.3},
		{Scope: "MEASLES", X: "avg_coverage", Y: "avg_incidence_per_100k", N: 3, Reason: "too_few_pairs"},
	}
	require.NoError(t, exp.ExportCorrelations("correlations.csv", results))

	got := readBack(t, paths.OutputPath("correlations.csv"))
	assert.Equal(t, correlationHeaders, got.Columns)
	assert.Equal(t, "-0.5", got.Get(0, "pearson_r").Text())
	assert.Equal(t, "false", got.Get(1, "defined").Text())
	assert.True(t, got.Get(1, "pearson_r").IsMissing())
}

func TestExportDoseDropOff_SkipsUndefined(t *testing.T) {
	writer, paths := setupTestEnv(t)
	exp := NewSummaryExporter(writer)

	drops := []domain.DoseDropOff{
		{Code: "AFG", Year: 2019, AntigenBase: "POL", DoseCoverage: map[int]float64{1: 90, 3: 60},
			LastDose: 3, FirstCoverage: f64(90), LastCoverage: 60, DropPct: f64(1.0 / 3.0)},
		{Code: "AFG", Year: 2020, AntigenBase: "POL", DoseCoverage: map[int]float64{2: 80}, LastDose: 2, LastCoverage: 80},
	}
	require.NoError(t, exp.ExportDoseDropOff("dose_drop_summary.csv", drops))

	got := readBack(t, paths.OutputPath("dose_drop_summary.csv"))
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "1:90;3:60", got.Get(0, "doses").Text())
}

func TestExportAnalysisTables(t *testing.T) {
	writer, paths := setupTestEnv(t)
	exp := NewSummaryExporter(writer)

	require.NoError(t, exp.ExportAntigenDropOff("by_antigen.csv", []domain.AntigenDropOff{{AntigenBase: "POL", Groups: 2, MeanDrop: 0.2, MedianDrop: 0.2}}))
	require.NoError(t, exp.ExportCoverageByYear("by_year.csv", []domain.YearCoverage{{Year: 2019, MeanCoverage: 85, Rows: 3}}))
	require.NoError(t, exp.ExportCountryRank("rank.csv", []domain.CountryCoverage{{Code: "AFG", MeanCoverage: 50, Rank: 1, Group: "lowest"}}))
	require.NoError(t, exp.ExportDiseaseTrends(paths.DiseasePath("trends.csv"), []domain.DiseaseTrend{{Disease: "MEASLES", Year: 2019, Countries: 2}}))

	assert.Equal(t, "POL", readBack(t, paths.OutputPath("by_antigen.csv")).Get(0, "antigen_base").Text())
	assert.Equal(t, "85", readBack(t, paths.OutputPath("by_year.csv")).Get(0, "mean_coverage").Text())
	assert.Equal(t, "lowest", readBack(t, paths.OutputPath("rank.csv")).Get(0, "group").Text())

	trends := readBack(t, paths.DiseasePath("trends.csv"))
	assert.True(t, trends.Get(0, "avg_coverage").IsMissing())
	assert.Equal(t, "2", trends.Get(0, "countries").Text())
}

func TestWriteRunReport(t *testing.T) {
	_, paths := setupTestEnv(t)

	report := &domain.RunReport{
		RunID:     "0b9d6f5e-7d43-4c57-9a4a-5d1e1f9a8c11",
		Command:   "process",
		StartedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Status:    "succeeded",
		Reconcile: &domain.ReconcileSummary{Original: 10, Orphans: 3, Remapped: 2, Valid: 9, Removed: 1},
	}
	require.NoError(t, WriteRunReport(paths.RunReportFile, report))

	data, err := os.ReadFile(paths.RunReportFile)
	require.NoError(t, err)
	var back domain.RunReport
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, report.RunID, back.RunID)
	assert.Equal(t, 3, back.Reconcile.Orphans)
}
