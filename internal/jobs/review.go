package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/review-pilot/internal/core"
	"github.com/sevigo/review-pilot/internal/pipeline"
	"github.com/sevigo/review-pilot/internal/storage"
)

// ReviewJob runs one review to completion and persists its audit record.
type ReviewJob struct {
	runner *pipeline.Runner
	runs   storage.RunStore
	logger *slog.Logger
}

// NewReviewJob wires a ReviewJob. runs may be nil when no run store is
// configured; records are then dropped.
func NewReviewJob(runner *pipeline.Runner, runs storage.RunStore, logger *slog.Logger) core.Job {
	if runner == nil {
		panic("runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewJob{runner: runner, runs: runs, logger: logger}
}

// Run executes the review. The run's own failure is already handled inside
// the pipeline (failure notice, check status); this layer only persists the
// record and reports the outcome to the dispatcher.
func (j *ReviewJob) Run(ctx context.Context, req core.ReviewRequest) error {
	st := j.runner.Run(ctx, req)

	if j.runs != nil {
		if err := j.runs.SaveRun(ctx, core.RecordFromRunState(st)); err != nil {
			j.logger.Warn("failed to persist run record", "run_id", st.RunID, "error", err)
		}
	}

	if st.Err != nil {
		return fmt.Errorf("review of %s ended in error: %w", req.SourceRef, st.Err)
	}
	return nil
}
