package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"vaxcli/pkg/contracts/domain"
)

// PipelineMetrics holds the counters and histograms recorded during a run.
// A nil *PipelineMetrics is valid and records nothing.
type PipelineMetrics struct {
	RowsRead          metric.Int64Counter
	RowsWritten       metric.Int64Counter
	RowsDropped       metric.Int64Counter
	ParseFailures     metric.Int64Counter
	CoverageOutliers  metric.Int64Counter
	ReconcileOrphans  metric.Int64Counter
	ReconcileRemapped metric.Int64Counter
	ReconcileRemoved  metric.Int64Counter
	RowsLoaded        metric.Int64Counter
	ValuesTruncated   metric.Int64Counter
	StepExecutions    metric.Int64Counter
	StepDuration      metric.Float64Histogram
}

// CreatePipelineMetrics registers the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.RowsRead, "vax_rows_read_total", "Rows read from raw sources"},
		{&m.RowsWritten, "vax_rows_written_total", "Rows kept by the cleaner"},
		{&m.RowsDropped, "vax_rows_dropped_total", "Rows dropped by the cleaner, by reason"},
		{&m.ParseFailures, "vax_parse_failures_total", "Numeric values that could not be parsed"},
		{&m.CoverageOutliers, "vax_coverage_outliers_total", "Coverage values outside [0,100]"},
		{&m.ReconcileOrphans, "vax_reconcile_orphans_total", "Introduction rows without a schedule triple"},
		{&m.ReconcileRemapped, "vax_reconcile_remapped_total", "Vaccine codes remapped to a schedule code"},
		{&m.ReconcileRemoved, "vax_reconcile_removed_total", "Introduction rows removed after remapping"},
		{&m.RowsLoaded, "vax_rows_loaded_total", "Rows appended to the relational store"},
		{&m.ValuesTruncated, "vax_values_truncated_total", "String values truncated to the column length"},
		{&m.StepExecutions, "vax_step_executions_total", "Pipeline step executions"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	stepDuration, err := meter.Float64Histogram(
		"vax_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	m.StepDuration = stepDuration

	return m, nil
}

// RecordCleaning records the outcome of cleaning one dataset
func (m *PipelineMetrics) RecordCleaning(ctx context.Context, s domain.CleaningSummary) {
	if m == nil {
		return
	}
	ds := attribute.String("dataset", string(s.Dataset))

	m.RowsRead.Add(ctx, int64(s.InputRows), metric.WithAttributes(ds))
	m.RowsWritten.Add(ctx, int64(s.OutputRows), metric.WithAttributes(ds))
	m.CoverageOutliers.Add(ctx, int64(s.Flagged), metric.WithAttributes(ds))
	for reason, n := range s.Dropped {
		m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(ds, attribute.String("reason", reason)))
	}
	for column, n := range s.ParseFailures {
		m.ParseFailures.Add(ctx, int64(n), metric.WithAttributes(ds, attribute.String("column", column)))
	}
}

// RecordReconcile records vaccine-code reconciliation counts
func (m *PipelineMetrics) RecordReconcile(ctx context.Context, s domain.ReconcileSummary) {
	if m == nil {
		return
	}
	m.ReconcileOrphans.Add(ctx, int64(s.Orphans))
	m.ReconcileRemapped.Add(ctx, int64(s.Remapped))
	m.ReconcileRemoved.Add(ctx, int64(s.Removed))
}

// RecordLoad records one table append
func (m *PipelineMetrics) RecordLoad(ctx context.Context, s domain.LoadSummary) {
	if m == nil {
		return
	}
	tbl := attribute.String("table", s.Table)
	m.RowsLoaded.Add(ctx, int64(s.Rows), metric.WithAttributes(tbl))
	m.ValuesTruncated.Add(ctx, int64(s.Truncated), metric.WithAttributes(tbl))
}

// RecordStep records the execution of one pipeline step
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("step", step), attribute.String("status", status))
	m.StepExecutions.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
}
