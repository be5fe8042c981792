package domain

import (
	"time"
)

// RunReport is the diagnostic summary written at the end of a pipeline run
type RunReport struct {
	RunID       string              `json:"run_id" validate:"required,uuid"`
	Command     string              `json:"command"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
	Status      string              `json:"status"`
	Error       string              `json:"error,omitempty"`
	Cleaning    []CleaningSummary   `json:"cleaning,omitempty"`
	Reconcile   *ReconcileSummary   `json:"reconcile,omitempty"`
	Loads       []LoadSummary       `json:"loads,omitempty"`
	Correlation []CorrelationResult `json:"correlation,omitempty"`
	Outputs     []string            `json:"outputs,omitempty"`
}

// CleaningSummary records what the cleaner did to one dataset
type CleaningSummary struct {
	Dataset       Dataset        `json:"dataset"`
	InputRows     int            `json:"input_rows"`
	OutputRows    int            `json:"output_rows"`
	Dropped       map[string]int `json:"dropped,omitempty"`
	ParseFailures map[string]int `json:"parse_failures,omitempty"`
	Flagged       int            `json:"flagged"`
}

// ReconcileSummary records vaccine-code reconciliation counts
type ReconcileSummary struct {
	Original int `json:"original_rows"`
	Orphans  int `json:"orphans"`
	Remapped int `json:"remapped"`
	Valid    int `json:"valid_rows"`
	Removed  int `json:"removed_rows"`
}

// LoadSummary records one append into the relational store
type LoadSummary struct {
	Table     string   `json:"table"`
	Rows      int      `json:"rows"`
	Truncated int      `json:"truncated_values"`
	Skipped   []string `json:"skipped_columns,omitempty"`
	Error     string   `json:"error,omitempty"`
}
