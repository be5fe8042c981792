package operations

import (
	"fmt"
	"log/slog"
	"time"

	"vaxcli/internal/config"
	"vaxcli/internal/infrastructure"
	"vaxcli/internal/table"
	"vaxcli/pkg/contracts/domain"
)

// Run status values written to the run report
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// State carries the data shared between the steps of one run
type State struct {
	RunID  string
	Config *config.Config
	Paths  *config.Paths
	Logger *slog.Logger
	// Metrics may be nil
	Metrics *infrastructure.PipelineMetrics

	// Raw tables by dataset, as extracted
	Raw map[domain.Dataset]*table.Table
	// Cleaned tables by dataset; incidence carries the derived columns
	Cleaned map[domain.Dataset]*table.Table
	// Rejected rows by dataset
	Rejected map[domain.Dataset]*table.Table
	// Reconciled introductions
	Reconciled *table.Table

	Summaries []domain.AggregatedSummary

	Steps  map[string]*StepState
	Order  []string
	Report *domain.RunReport
}

// NewState creates the state of a run
func NewState(runID, command string, cfg *config.Config, paths *config.Paths, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		RunID:    runID,
		Config:   cfg,
		Paths:    paths,
		Logger:   logger,
		Raw:      make(map[domain.Dataset]*table.Table),
		Cleaned:  make(map[domain.Dataset]*table.Table),
		Rejected: make(map[domain.Dataset]*table.Table),
		Steps:    make(map[string]*StepState),
		Report: &domain.RunReport{
			RunID:     runID,
			Command:   command,
			StartedAt: time.Now().UTC(),
			Status:    StatusRunning,
		},
	}
}

// SetStep registers the state of a step in execution order
func (s *State) SetStep(st *StepState) {
	if _, ok := s.Steps[st.ID]; !ok {
		s.Order = append(s.Order, st.ID)
	}
	s.Steps[st.ID] = st
}

// GetStep returns the state of a step, or nil
func (s *State) GetStep(id string) *StepState {
	return s.Steps[id]
}

// Finish records the outcome of the run in the report
func (s *State) Finish(err error) {
	s.Report.FinishedAt = time.Now().UTC()
	if err != nil {
		s.Report.Status = StatusFailed
		s.Report.Error = err.Error()
		return
	}
	s.Report.Status = StatusSucceeded
}

// Processed returns the cleaned table of a dataset, reading the processed
// CSV when no earlier step of this run produced it.
func (s *State) Processed(ds domain.Dataset) (*table.Table, error) {
	if t, ok := s.Cleaned[ds]; ok {
		return t, nil
	}
	if s.Paths == nil {
		return nil, fmt.Errorf("no processed table for %s", ds)
	}
	t, err := table.ReadCSV(s.Paths.ProcessedPath(ds))
	if err != nil {
		return nil, err
	}
	s.Cleaned[ds] = t
	return t, nil
}

// AddOutput lists a written file in the report
func (s *State) AddOutput(path string) {
	s.Report.Outputs = append(s.Report.Outputs, path)
}
