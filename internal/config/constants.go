package config

import (
	"vaxcli/pkg/contracts"
)

// Application constants
const (
	// Application Info
	AppName    = "vaxcli"
	AppVersion = contracts.Version

	// EnvPrefix namespaces environment variables, e.g. VAX_DB_PASSWORD
	EnvPrefix  = "VAX"
	DotEnvFile = ".env"

	DefaultDatabaseName = "vaccination_db"

	// File Paths (relative to the base directory)
	DefaultRawDir       = "data/raw"
	DefaultProcessedDir = "data/processed"
	DefaultOutputsDir   = "outputs"
	DefaultLogsDir      = "logs"
	DefaultLogFile      = "vaxcli.log"

	RejectedDirName       = "rejected"
	DiseaseSpecificDir    = "disease_specific"
	RunReportFileName     = "run_report.json"
	MetricsFileName       = "metrics.prom"
	SummaryFileName       = "eda_cleaned_summary.csv"
	CorrelationsFileName  = "correlations.csv"
	DoseDropFileName      = "dose_drop_summary.csv"
	DoseDropByAntigenFile = "dose_drop_by_antigen.csv"
	OutliersFileName      = "top_coverage_outliers.csv"
	CoverageByYearFile    = "coverage_by_year.csv"
	CountryRankFile       = "country_coverage_rank.csv"
	DiseaseTrendsFile     = "disease_trends.csv"
	DiseaseSummaryFile    = "disease_specific_summary.csv"
)

// DefaultDiseases are the disease codes analyzed individually
var DefaultDiseases = []string{"MEASLES", "POLIO", "HEPATITIS B", "DTP", "INFLUENZA"}
