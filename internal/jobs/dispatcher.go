// Package jobs runs review requests asynchronously on a bounded worker pool.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/review-pilot/internal/core"
)

const queueCapacity = 100

// Dispatcher implements core.JobDispatcher with a buffered queue and a fixed
// pool of workers. A full queue rejects instead of blocking the webhook
// handler.
type Dispatcher struct {
	job        core.Job
	queue      chan core.ReviewRequest
	maxWorkers int
	wg         sync.WaitGroup
	logger     *slog.Logger
}

var _ core.JobDispatcher = (*Dispatcher)(nil)

// NewDispatcher starts maxWorkers workers draining the queue. If maxWorkers
// is 0 or negative, it defaults to 1.
func NewDispatcher(job core.Job, maxWorkers int, logger *slog.Logger) *Dispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		job:        job,
		maxWorkers: maxWorkers,
		queue:      make(chan core.ReviewRequest, queueCapacity),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

func (d *Dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

func (d *Dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting review worker", "id", workerID)

	for req := range d.queue {
		d.logger.Info("worker picked up review", "worker_id", workerID, "ref", req.SourceRef)
		if err := d.job.Run(context.Background(), req); err != nil {
			d.logger.Error("review job failed", "ref", req.SourceRef, "error", err)
		}
	}

	d.logger.Info("shutting down review worker", "id", workerID)
}

// Dispatch queues req without blocking. A full queue is backpressure for the
// caller, not a crash.
func (d *Dispatcher) Dispatch(_ context.Context, req core.ReviewRequest) error {
	select {
	case d.queue <- req:
		d.logger.Info("queued review", "ref", req.SourceRef)
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new review job")
	}
}

// Stop closes the queue and waits for in-flight reviews to finish.
func (d *Dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.queue)
	d.wg.Wait()
	d.logger.Info("all review jobs have finished")
}
