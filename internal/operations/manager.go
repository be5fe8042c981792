package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vaxcli/internal/infrastructure"
)

// Manager orchestrates step execution
type Manager struct {
	tracer *OperationTracer
	logger *slog.Logger
}

// NewManager creates a manager. tracer may be nil.
func NewManager(tracer *OperationTracer, logger *slog.Logger) *Manager {
	if tracer == nil {
		tracer = NewOperationTracer(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{tracer: tracer, logger: infrastructure.WithComponent(logger, "operations")}
}

// Execute runs steps in order. The first failure stops the run; later
// steps are marked skipped. The run report in state is finalized either way.
func (m *Manager) Execute(ctx context.Context, state *State, steps ...Step) (err error) {
	for _, step := range steps {
		state.SetStep(NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceRun(ctx, state)
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		span.End()
		state.Finish(err)
	}()

	m.logger.InfoContext(ctx, "sequential_execution_start",
		slog.String("command", state.Report.Command),
		slog.Int("step_count", len(steps)))

	for i, step := range steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			m.logger.WarnContext(ctx, "operation_cancelled", slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), ctxErr)
		}

		m.logger.InfoContext(ctx, "executing_step",
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.logger.ErrorContext(ctx, "step_failed",
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}

	m.logger.InfoContext(ctx, "all_steps_completed", slog.String("command", state.Report.Command))
	return nil
}

func (m *Manager) executeStep(ctx context.Context, state *State, step Step) error {
	st := state.GetStep(step.ID())

	if err := step.Validate(state); err != nil {
		st.Fail(err)
		return NewValidationError(step.ID(), err)
	}

	stepCtx, span := m.tracer.TraceStep(ctx, state, step)
	st.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)
	m.tracer.EndStep(stepCtx, span, step, duration, err)

	if err != nil {
		st.Fail(err)
		return NewExecutionError(step.ID(), err)
	}
	st.Complete()
	m.logger.InfoContext(ctx, "step_completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) skipRemaining(state *State, steps []Step, reason string) {
	for _, step := range steps {
		if st := state.GetStep(step.ID()); st != nil && st.Status == StepStatusPending {
			st.Skip(reason)
		}
	}
}
