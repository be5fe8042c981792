package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"vaxcli/pkg/contracts/domain"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	BaseDir      string
	RawDir       string
	ProcessedDir string
	RejectedDir  string
	OutputsDir   string
	DiseaseDir   string
	LogsDir      string

	// Well-known output files
	RunReportFile string
	MetricsFile   string
}

// GetPaths resolves the configured directories to absolute paths.
// Relative entries are joined to BaseDir, which defaults to the working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	processed := resolve(cfg.ProcessedDir)
	outputs := resolve(cfg.OutputsDir)

	return &Paths{
		BaseDir:       base,
		RawDir:        resolve(cfg.RawDir),
		ProcessedDir:  processed,
		RejectedDir:   filepath.Join(processed, RejectedDirName),
		OutputsDir:    outputs,
		DiseaseDir:    filepath.Join(outputs, DiseaseSpecificDir),
		LogsDir:       resolve(cfg.LogsDir),
		RunReportFile: filepath.Join(outputs, RunReportFileName),
		MetricsFile:   filepath.Join(outputs, MetricsFileName),
	}, nil
}

// EnsureDirectories creates all output directories if they don't exist.
// The raw directory is input only and is never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.ProcessedDir,
		p.RejectedDir,
		p.OutputsDir,
		p.DiseaseDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// ProcessedPath returns the path of the normalized CSV for a dataset
func (p *Paths) ProcessedPath(ds domain.Dataset) string {
	return filepath.Join(p.ProcessedDir, ds.ProcessedFile())
}

// ReconciledIntroductionPath returns the path of the reconciled introduction table
func (p *Paths) ReconciledIntroductionPath() string {
	return filepath.Join(p.ProcessedDir, domain.ReconciledIntroductionFile)
}

// RejectedPath returns the path listing rows the cleaner excluded for a dataset
func (p *Paths) RejectedPath(ds domain.Dataset) string {
	return filepath.Join(p.RejectedDir, ds.ProcessedFile())
}

// OutputPath returns a path inside the outputs directory
func (p *Paths) OutputPath(filename string) string {
	return filepath.Join(p.OutputsDir, filename)
}

// DiseasePath returns a path inside the per-disease outputs directory
func (p *Paths) DiseasePath(filename string) string {
	return filepath.Join(p.DiseaseDir, filename)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		return
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("raw", p.RawDir),
			slog.String("processed", p.ProcessedDir),
			slog.String("rejected", p.RejectedDir),
			slog.String("outputs", p.OutputsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("report_files",
			slog.String("run_report", p.RunReportFile),
			slog.String("metrics", p.MetricsFile),
		))
}
