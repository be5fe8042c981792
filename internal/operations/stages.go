package operations

import (
	"context"
	"fmt"
	"log/slog"

	"vaxcli/internal/aggregate"
	"vaxcli/internal/analysis"
	"vaxcli/internal/cleaning"
	"vaxcli/internal/config"
	apperrors "vaxcli/internal/errors"
	"vaxcli/internal/exporter"
	"vaxcli/internal/extract"
	"vaxcli/internal/infrastructure"
	"vaxcli/internal/reconcile"
	"vaxcli/internal/storage"
	"vaxcli/internal/table"
	"vaxcli/internal/validation"
	"vaxcli/pkg/contracts/domain"
)

// Step IDs
const (
	StepIDExtract   = "extract"
	StepIDClean     = "clean"
	StepIDReconcile = "reconcile"
	StepIDWrite     = "write"
	StepIDLoad      = "load"
	StepIDAnalyze   = "analyze"
)

// ExtractStep reads the raw datasets from a source
type ExtractStep struct {
	BaseStep
	source extract.Source
}

// NewExtractStep creates an extract step
func NewExtractStep(source extract.Source) *ExtractStep {
	return &ExtractStep{BaseStep: NewBaseStep(StepIDExtract, "Extract raw datasets"), source: source}
}

// Validate runs the source's own input check when it has one
func (s *ExtractStep) Validate(*State) error {
	if c, ok := s.source.(extract.Checker); ok {
		return c.Check()
	}
	return nil
}

// Execute reads every dataset into state.Raw
func (s *ExtractStep) Execute(ctx context.Context, state *State) error {
	tables, err := extract.ReadAll(ctx, s.source, state.Logger)
	if err != nil {
		return err
	}
	state.Raw = tables
	return nil
}

// CleanStep applies the per-dataset cleaning rules
type CleanStep struct {
	BaseStep
}

// NewCleanStep creates a clean step
func NewCleanStep() *CleanStep {
	return &CleanStep{BaseStep: NewBaseStep(StepIDClean, "Clean datasets")}
}

// Validate requires every raw dataset
func (s *CleanStep) Validate(state *State) error {
	for _, spec := range domain.Datasets {
		if state.Raw[spec.Dataset] == nil {
			return fmt.Errorf("raw dataset %s not extracted", spec.Dataset)
		}
	}
	return nil
}

// Execute cleans each dataset and derives per-100k incidence
func (s *CleanStep) Execute(ctx context.Context, state *State) error {
	for _, spec := range domain.Datasets {
		cleaned, report := cleaning.Clean(state.Raw[spec.Dataset], cleaning.RulesFor(spec.Dataset))
		if spec.Dataset == domain.DatasetIncidence {
			cleaned = cleaning.DeriveIncidence(cleaned)
		}
		state.Cleaned[spec.Dataset] = cleaned
		state.Rejected[spec.Dataset] = report.Rejected
		state.Report.Cleaning = append(state.Report.Cleaning, report.CleaningSummary)
		state.Metrics.RecordCleaning(ctx, report.CleaningSummary)

		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"dataset." + string(spec.Dataset) + ".rows": report.OutputRows,
		})
		for reason, n := range report.Dropped {
			infrastructure.AddSpanEvent(ctx, "rows.dropped", map[string]interface{}{
				"dataset": string(spec.Dataset),
				"reason":  reason,
				"count":   n,
			})
		}
		for col, n := range report.ParseFailures {
			failure := apperrors.NewParseFailureError(
				fmt.Sprintf("%d values in %s.%s are not numeric", n, spec.Dataset, col), nil)
			state.Logger.WarnContext(ctx, "unparseable values set to missing",
				slog.String("error_type", string(failure.Type)),
				slog.String("details", failure.Message))
		}

		state.Logger.InfoContext(ctx, "dataset cleaned",
			slog.String("dataset", string(spec.Dataset)),
			slog.Int("input_rows", report.InputRows),
			slog.Int("output_rows", report.OutputRows),
			slog.Any("dropped", report.Dropped),
			slog.Any("parse_failures", report.ParseFailures),
			slog.Int("flagged", report.Flagged))
	}
	return nil
}

// ReconcileStep repairs introduction vaccine codes against the schedule
type ReconcileStep struct {
	BaseStep
}

// NewReconcileStep creates a reconcile step
func NewReconcileStep() *ReconcileStep {
	return &ReconcileStep{BaseStep: NewBaseStep(StepIDReconcile, "Reconcile vaccine codes")}
}

// Execute stores the reconciled introductions in state
func (s *ReconcileStep) Execute(ctx context.Context, state *State) error {
	intro, err := state.Processed(domain.DatasetVaccineIntroduction)
	if err != nil {
		return apperrors.NewInputError("vaccine introduction table unavailable", err)
	}
	schedule, err := state.Processed(domain.DatasetVaccineSchedule)
	if err != nil {
		return apperrors.NewInputError("vaccine schedule table unavailable", err)
	}

	out, res, err := reconcile.Reconcile(intro, schedule)
	if err != nil {
		return err
	}
	state.Reconciled = out
	state.Report.Reconcile = &res.ReconcileSummary
	state.Metrics.RecordReconcile(ctx, res.ReconcileSummary)

	for _, r := range res.Remaps {
		state.Logger.DebugContext(ctx, "vaccine code remapped",
			slog.String("iso_3_code", r.ISO),
			slog.Int64("year", r.Year),
			slog.String("from", r.From),
			slog.String("to", r.To))
		infrastructure.AddSpanEvent(ctx, "vaccine_code.remapped", map[string]interface{}{
			"iso_3_code": r.ISO,
			"year":       r.Year,
			"from":       r.From,
			"to":         r.To,
		})
	}
	if res.Removed > 0 {
		mismatch := apperrors.NewReferentialMismatchError(
			fmt.Sprintf("%d introduction rows have no matching schedule entry", res.Removed))
		state.Logger.WarnContext(ctx, "introduction rows removed",
			slog.String("error_type", string(mismatch.Type)),
			slog.String("details", mismatch.Message))
	}
	state.Logger.InfoContext(ctx, "introductions reconciled",
		slog.Int("original", res.Original),
		slog.Int("orphans", res.Orphans),
		slog.Int("remapped", res.Remapped),
		slog.Int("valid", res.Valid),
		slog.Int("removed", res.Removed))
	return nil
}

// WriteProcessedStep writes cleaned, rejected and reconciled tables
type WriteProcessedStep struct {
	BaseStep
	writer *exporter.CSVWriter
}

// NewWriteProcessedStep creates a write step
func NewWriteProcessedStep(writer *exporter.CSVWriter) *WriteProcessedStep {
	return &WriteProcessedStep{BaseStep: NewBaseStep(StepIDWrite, "Write processed files"), writer: writer}
}

// Validate requires paths and cleaned tables
func (s *WriteProcessedStep) Validate(state *State) error {
	if state.Paths == nil {
		return fmt.Errorf("paths not configured")
	}
	if len(state.Cleaned) == 0 {
		return fmt.Errorf("no cleaned tables to write")
	}
	v := validation.NewFileValidator(state.Logger)
	for _, dir := range []string{state.Paths.ProcessedDir, state.Paths.RejectedDir} {
		if err := v.ValidateOutputDirectory(dir); err != nil {
			return err
		}
	}
	return nil
}

// Execute writes the processed files
func (s *WriteProcessedStep) Execute(ctx context.Context, state *State) error {
	if err := state.Paths.EnsureDirectories(); err != nil {
		return apperrors.NewStorageError("create output directories", err)
	}

	for _, spec := range domain.Datasets {
		t, ok := state.Cleaned[spec.Dataset]
		if !ok {
			continue
		}
		if err := s.write(ctx, state, state.Paths.ProcessedPath(spec.Dataset), t); err != nil {
			return err
		}
		if rejected := state.Rejected[spec.Dataset]; rejected != nil && rejected.Len() > 0 {
			if err := s.write(ctx, state, state.Paths.RejectedPath(spec.Dataset), rejected); err != nil {
				return err
			}
		}
	}

	if state.Reconciled != nil {
		return s.write(ctx, state, state.Paths.ReconciledIntroductionPath(), state.Reconciled)
	}
	return nil
}

func (s *WriteProcessedStep) write(ctx context.Context, state *State, path string, t *table.Table) error {
	if err := s.writer.WriteTable(path, t); err != nil {
		return apperrors.NewStorageError("write "+path, err)
	}
	state.AddOutput(path)
	state.Logger.InfoContext(ctx, "file written", slog.String("path", path), slog.Int("rows", t.Len()))
	return nil
}

// LoadStep appends the processed tables into the relational store
type LoadStep struct {
	BaseStep
	store    *storage.Store
	truncate bool
}

// NewLoadStep creates a load step. With truncate each table is cleared before its append.
func NewLoadStep(store *storage.Store, truncate bool) *LoadStep {
	return &LoadStep{BaseStep: NewBaseStep(StepIDLoad, "Load relational store"), store: store, truncate: truncate}
}

// Execute loads every entity table in its own transaction. A failure stops
// the load; tables already loaded stay loaded.
func (s *LoadStep) Execute(ctx context.Context, state *State) error {
	for _, schema := range storage.Schemas {
		t, err := state.Processed(schema.Dataset)
		if err != nil {
			return apperrors.NewInputError("processed table "+schema.Name()+" unavailable", err)
		}
		if s.truncate {
			if err := s.store.ClearTables(ctx, schema); err != nil {
				return err
			}
		}
		summary, err := s.store.AppendTable(ctx, schema, t)
		state.Report.Loads = append(state.Report.Loads, summary)
		state.Metrics.RecordLoad(ctx, summary)
		if err != nil {
			return err
		}
	}
	return nil
}

// AnalyzeStep computes the summary and analysis outputs
type AnalyzeStep struct {
	BaseStep
	writer *exporter.CSVWriter
}

// NewAnalyzeStep creates an analyze step
func NewAnalyzeStep(writer *exporter.CSVWriter) *AnalyzeStep {
	return &AnalyzeStep{BaseStep: NewBaseStep(StepIDAnalyze, "Analyze datasets"), writer: writer}
}

// Validate requires paths and the processed inputs this run did not produce
func (s *AnalyzeStep) Validate(state *State) error {
	if state.Paths == nil {
		return fmt.Errorf("paths not configured")
	}
	v := validation.NewFileValidator(state.Logger)
	for _, ds := range []domain.Dataset{domain.DatasetCoverage, domain.DatasetIncidence, domain.DatasetReportedCases} {
		if _, ok := state.Cleaned[ds]; ok {
			continue
		}
		if err := v.ValidateCSVFile(state.Paths.ProcessedPath(ds)); err != nil {
			return err
		}
	}
	for _, dir := range []string{state.Paths.OutputsDir, state.Paths.DiseaseDir} {
		if err := v.ValidateOutputDirectory(dir); err != nil {
			return err
		}
	}
	return nil
}

// Execute aggregates coverage, incidence and cases and writes every analysis output
func (s *AnalyzeStep) Execute(ctx context.Context, state *State) error {
	cfg := analysisConfig(state)

	coverage, err := state.Processed(domain.DatasetCoverage)
	if err != nil {
		return apperrors.NewInputError("processed coverage unavailable", err)
	}
	incidence, err := state.Processed(domain.DatasetIncidence)
	if err != nil {
		return apperrors.NewInputError("processed incidence unavailable", err)
	}
	if !incidence.Has(cleaning.IncidencePer100kColumn) {
		incidence = cleaning.DeriveIncidence(incidence)
	}
	reported, err := state.Processed(domain.DatasetReportedCases)
	if err != nil {
		return apperrors.NewInputError("processed reported cases unavailable", err)
	}

	rows, err := aggregate.Summarize(coverage, incidence, reported)
	if err != nil {
		return err
	}
	state.Summaries = rows

	correlations := analysis.CorrelateSummary(analysis.ScopeOverall, rows, cfg.MinPairs)
	state.Report.Correlation = correlations
	for _, c := range correlations {
		state.Logger.InfoContext(ctx, "correlation",
			slog.String("x", c.X),
			slog.String("y", c.Y),
			slog.Int("n", c.N),
			slog.Bool("defined", c.Defined),
			slog.Float64("pearson_r", c.PearsonR),
			slog.Float64("pearson_p", c.PearsonP),
			slog.Float64("spearman_r", c.SpearmanR),
			slog.Float64("spearman_p", c.SpearmanP))
	}

	drops := analysis.DoseDropOff(coverage)
	trends, diseaseCorr, err := analysis.DiseaseTrends(coverage, incidence, reported,
		analysis.ResolveDiseases(cfg.Diseases), cfg.MinPairs)
	if err != nil {
		return err
	}

	if err := state.Paths.EnsureDirectories(); err != nil {
		return apperrors.NewStorageError("create output directories", err)
	}
	exp := exporter.NewSummaryExporter(s.writer)
	p := state.Paths
	outputs := []struct {
		path  string
		write func(string) error
	}{
		{p.OutputPath(config.SummaryFileName), func(f string) error { return exp.ExportSummary(f, rows) }},
		{p.OutputPath(config.CorrelationsFileName), func(f string) error { return exp.ExportCorrelations(f, correlations) }},
		{p.OutputPath(config.DoseDropFileName), func(f string) error { return exp.ExportDoseDropOff(f, drops) }},
		{p.OutputPath(config.DoseDropByAntigenFile), func(f string) error {
			return exp.ExportAntigenDropOff(f, analysis.SummarizeDropOff(drops))
		}},
		{p.OutputPath(config.OutliersFileName), func(f string) error {
			return s.writer.WriteTable(f, analysis.CoverageOutliers(coverage, cfg.OutlierLimit))
		}},
		{p.OutputPath(config.CoverageByYearFile), func(f string) error {
			return exp.ExportCoverageByYear(f, analysis.CoverageByYear(coverage))
		}},
		{p.OutputPath(config.CountryRankFile), func(f string) error {
			return exp.ExportCountryRank(f, analysis.RankCountries(coverage, cfg.RankSize))
		}},
		{p.DiseasePath(config.DiseaseTrendsFile), func(f string) error { return exp.ExportDiseaseTrends(f, trends) }},
		{p.DiseasePath(config.DiseaseSummaryFile), func(f string) error { return exp.ExportCorrelations(f, diseaseCorr) }},
	}
	for _, o := range outputs {
		if err := o.write(o.path); err != nil {
			return apperrors.NewStorageError("write "+o.path, err)
		}
		state.AddOutput(o.path)
	}

	state.Logger.InfoContext(ctx, "analysis complete",
		slog.Int("summary_rows", len(rows)),
		slog.Int("dose_groups", len(drops)),
		slog.Int("disease_points", len(trends)))
	return nil
}

func analysisConfig(state *State) config.AnalysisConfig {
	cfg := config.Default().Analysis
	if state.Config != nil {
		cfg = state.Config.Analysis
	}
	if len(cfg.Diseases) == 0 {
		cfg.Diseases = config.DefaultDiseases
	}
	return cfg
}
