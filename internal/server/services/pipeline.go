package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/metrics"
)

// Stage is a point in the linear pipeline Collected → Rendered → Completed
// → Persisted. StageInit is the state before input has been accepted.
type Stage string

const (
	StageInit      Stage = "init"
	StageCollected Stage = "collected"
	StageRendered  Stage = "rendered"
	StageCompleted Stage = "completed"
	StagePersisted Stage = "persisted"
)

// Pipeline names, used in logs, metrics and errors.
const (
	PipelineEmail    = "email"
	PipelinePlanner  = "planner"
	PipelineResearch = "research"
)

// StageError reports the last stage a failed pipeline run reached.
type StageError struct {
	Pipeline string
	Stage    Stage
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s pipeline stopped at %s: %v", e.Pipeline, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// PipelineObserver receives one observation per run. *metrics.Metrics
// implements it.
type PipelineObserver interface {
	ObservePipeline(pipeline, outcome string, elapsed time.Duration)
}

// run tracks one pipeline execution: the stage reached, persistence warnings,
// and the final metrics/log record.
type run struct {
	pipeline string
	stage    Stage
	started  time.Time
	warnings []error
	logger   logging.Logger
	observer PipelineObserver
}

func newRun(ctx context.Context, pipeline string, logger logging.Logger, observer PipelineObserver) *run {
	logger.Debug(ctx, "pipeline started")
	return &run{
		pipeline: pipeline,
		stage:    StageInit,
		started:  time.Now(),
		logger:   logger,
		observer: observer,
	}
}

func (r *run) reach(ctx context.Context, stage Stage, args ...any) {
	r.stage = stage
	r.logger.Debug(ctx, "stage reached", append([]any{"stage", stage}, args...)...)
}

// warn records a failure that does not stop the run.
func (r *run) warn(ctx context.Context, msg string, err error) {
	r.warnings = append(r.warnings, err)
	r.logger.Warn(ctx, msg, "stage", r.stage, "error", err)
}

// fail closes the run with a StageError.
func (r *run) fail(ctx context.Context, err error) error {
	elapsed := time.Since(r.started)
	r.observe(metrics.OutcomeFailed, elapsed)
	r.logger.Error(ctx, "pipeline failed", "stage", r.stage, "error", err, "elapsed", elapsed)
	return &StageError{Pipeline: r.pipeline, Stage: r.stage, Err: err}
}

// finish closes a run that produced an answer and returns the joined
// persistence warnings, if any.
func (r *run) finish(ctx context.Context) error {
	elapsed := time.Since(r.started)
	warnings := errors.Join(r.warnings...)
	if warnings != nil {
		r.observe(metrics.OutcomePersistWarning, elapsed)
		r.logger.Warn(ctx, "pipeline finished with warnings", "stage", r.stage, "elapsed", elapsed)
		return warnings
	}
	r.observe(metrics.OutcomeOK, elapsed)
	r.logger.Info(ctx, "pipeline finished", "stage", r.stage, "elapsed", elapsed)
	return nil
}

func (r *run) observe(outcome string, elapsed time.Duration) {
	if r.observer != nil {
		r.observer.ObservePipeline(r.pipeline, outcome, elapsed)
	}
}
