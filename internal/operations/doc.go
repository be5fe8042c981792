// Package operations runs the pipeline as a sequence of named steps.
//
// The Manager executes steps one by one against a shared State: each step
// reads the tables produced by earlier steps and stores its own results.
// Every step runs inside an OpenTelemetry span and records its duration
// and outcome in the pipeline metrics. A failing step stops the run; the
// remaining steps are marked skipped and the error is returned wrapped in
// an OperationError.
//
// Core Components:
//
// Manager: executes steps sequentially and tracks their StepState.
//
// Step: one unit of work (extract, clean, reconcile, write, load, analyze).
//
// State: tables, summaries and the RunReport shared between steps.
//
// Example usage:
//
//	state := operations.NewState(runID, "process", cfg, paths, logger)
//	manager := operations.NewManager(tracer, metrics, logger)
//	err := manager.Execute(ctx, state,
//		operations.NewExtractStep(source),
//		operations.NewCleanStep(),
//		operations.NewReconcileStep(),
//		operations.NewWriteProcessedStep(writer))
package operations
