package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vaxcli/internal/aggregate"
	"vaxcli/pkg/contracts/domain"
)

// SummaryExporter writes aggregated and analysis results
type SummaryExporter struct {
	writer *CSVWriter
}

// NewSummaryExporter creates a new summary exporter
func NewSummaryExporter(writer *CSVWriter) *SummaryExporter {
	return &SummaryExporter{writer: writer}
}

// ExportSummary writes the (code, year) summary
func (e *SummaryExporter) ExportSummary(filePath string, rows []domain.AggregatedSummary) error {
	return e.writer.WriteTable(filePath, aggregate.ToTable("eda_cleaned_summary", rows))
}

var correlationHeaders = []string{"scope", "x", "y", "n", "defined", "reason",
	"pearson_r", "pearson_p", "spearman_r", "spearman_p"}

// ExportCorrelations writes correlation results; undefined ones keep empty coefficients
func (e *SummaryExporter) ExportCorrelations(filePath string, results []domain.CorrelationResult) error {
	records := make([][]string, 0, len(results))
	for _, r := range results {
		rec := []string{r.Scope, r.X, r.Y, formatInt(r.N), formatBool(r.Defined), r.Reason, "", "", "", ""}
		if r.Defined {
			rec[6] = formatFloat(r.PearsonR)
			rec[7] = formatFloat(r.PearsonP)
			rec[8] = formatFloat(r.SpearmanR)
			rec[9] = formatFloat(r.SpearmanP)
		}
		records = append(records, rec)
	}
	return e.writer.WriteSimpleCSV(filePath, correlationHeaders, records)
}

// ExportDoseDropOff writes the groups with a defined drop-off
func (e *SummaryExporter) ExportDoseDropOff(filePath string, drops []domain.DoseDropOff) error {
	headers := []string{"code", "year", "antigen_base", "doses", "first_coverage", "last_dose", "last_coverage", "drop_pct"}
	var records [][]string
	for _, d := range drops {
		if d.DropPct == nil {
			continue
		}
		records = append(records, []string{
			d.Code,
			formatInt(d.Year),
			d.AntigenBase,
			formatDoses(d.DoseCoverage),
			formatOptional(d.FirstCoverage),
			formatInt(d.LastDose),
			formatFloat(d.LastCoverage),
			formatOptional(d.DropPct),
		})
	}
	return e.writer.WriteSimpleCSV(filePath, headers, records)
}

// ExportAntigenDropOff writes the per-family drop-off summary
func (e *SummaryExporter) ExportAntigenDropOff(filePath string, rows []domain.AntigenDropOff) error {
	headers := []string{"antigen_base", "groups", "mean_drop", "median_drop"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.AntigenBase, formatInt(r.Groups), formatFloat(r.MeanDrop), formatFloat(r.MedianDrop)})
	}
	return e.writer.WriteSimpleCSV(filePath, headers, records)
}

// ExportCoverageByYear writes the global mean coverage per year
func (e *SummaryExporter) ExportCoverageByYear(filePath string, rows []domain.YearCoverage) error {
	headers := []string{"year", "mean_coverage", "rows"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{formatInt(r.Year), formatFloat(r.MeanCoverage), formatInt(r.Rows)})
	}
	return e.writer.WriteSimpleCSV(filePath, headers, records)
}

// ExportCountryRank writes the lowest and highest mean-coverage entities
func (e *SummaryExporter) ExportCountryRank(filePath string, rows []domain.CountryCoverage) error {
	headers := []string{"group", "rank", "code", "mean_coverage"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Group, formatInt(r.Rank), r.Code, formatFloat(r.MeanCoverage)})
	}
	return e.writer.WriteSimpleCSV(filePath, headers, records)
}

// ExportDiseaseTrends writes one row per (disease, year)
func (e *SummaryExporter) ExportDiseaseTrends(filePath string, rows []domain.DiseaseTrend) error {
	headers := []string{"disease", "year", "avg_coverage", "avg_incidence_per_100k", "total_cases", "countries"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Disease,
			formatInt(r.Year),
			formatOptional(r.AvgCoverage),
			formatOptional(r.AvgIncidencePer100k),
			formatOptional(r.TotalCases),
			formatInt(r.Countries),
		})
	}
	return e.writer.WriteSimpleCSV(filePath, headers, records)
}

// formatDoses renders dose coverage as "1:90;3:60" in dose order
func formatDoses(doses map[int]float64) string {
	keys := make([]int, 0, len(doses))
	for k := range doses {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = formatInt(k) + ":" + formatFloat(doses[k])
	}
	return strings.Join(parts, ";")
}

// WriteRunReport stores the run diagnostics as indented JSON
func WriteRunReport(path string, report *domain.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	return nil
}
