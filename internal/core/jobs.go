package core

import "context"

// JobDispatcher accepts review requests and queues them for asynchronous
// processing. It decouples the event source (the webhook handler) from the
// execution mechanism.
type JobDispatcher interface {
	// Dispatch queues req for processing. It returns an error when the job
	// cannot be queued, for example because the queue is full, which gives
	// the caller backpressure.
	Dispatch(ctx context.Context, req ReviewRequest) error
}

// Job is a single executable unit of work: one review run to completion.
type Job interface {
	Run(ctx context.Context, req ReviewRequest) error
}
