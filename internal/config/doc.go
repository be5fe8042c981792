// Package config provides centralized configuration management for vaxcli.
// It handles loading configuration from multiple sources, validation, and
// resolution of the pipeline's directory layout.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A .env file in the working directory
//	3. A YAML configuration file (vaxcli.yaml, config.yaml or configs/config.yaml)
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern VAX_<SECTION>_<FIELD>:
//
//	VAX_DB_DRIVER=mysql
//	VAX_DB_HOST=localhost
//	VAX_DB_PASSWORD=...
//	VAX_PATHS_RAW_DIR=data/raw
//	VAX_LOGGING_LEVEL=debug
//	VAX_SOURCE_KIND=sheets
//
// Database credentials are never compiled in; supply them through the
// environment, .env or the YAML file.
//
// # Path Management
//
// Paths resolves every directory the pipeline touches:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	csv := paths.ProcessedPath(domain.DatasetCoverage)
//	out := paths.OutputPath(config.SummaryFileName)
//
// # Validation
//
// Configuration is validated at load time with go-playground/validator
// struct tags (allowed drivers, positive limits, required fields).
package config
