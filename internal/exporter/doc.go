// Package exporter writes pipeline results as flat files.
//
// CSVWriter is the low-level writer: UTF-8 BOM for Excel compatibility,
// headers, and streaming for large tables. Relative paths resolve under
// the outputs directory.
//
// SummaryExporter renders the aggregated summary and analysis results
// into the CSV files consumed by downstream reporting, and WriteRunReport
// stores the JSON diagnostics of a run.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths)
//	err := writer.WriteTable(paths.ProcessedPath(domain.DatasetCoverage), cleaned)
//
//	summaries := exporter.NewSummaryExporter(writer)
//	err = summaries.ExportSummary(config.SummaryFileName, rows)
package exporter
