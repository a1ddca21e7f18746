package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-pilot/internal/core"
)

type countingJob struct {
	mu   sync.Mutex
	refs []string
	gate chan struct{}
}

func (j *countingJob) Run(_ context.Context, req core.ReviewRequest) error {
	if j.gate != nil {
		<-j.gate
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.refs = append(j.refs, req.SourceRef)
	return nil
}

func (j *countingJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.refs)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherProcessesQueuedRequests(t *testing.T) {
	job := &countingJob{}
	d := NewDispatcher(job, 2, testLogger())

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Dispatch(context.Background(), core.ReviewRequest{SourceRef: "pr"}))
	}
	d.Stop()

	assert.Equal(t, 5, job.count())
}

func TestDispatcherRejectsWhenQueueIsFull(t *testing.T) {
	gate := make(chan struct{})
	job := &countingJob{gate: gate}
	d := NewDispatcher(job, 1, testLogger())

	// One request parks in the worker, the rest fill the buffer.
	overflowed := false
	for i := 0; i <= queueCapacity+1; i++ {
		if err := d.Dispatch(context.Background(), core.ReviewRequest{SourceRef: "pr"}); err != nil {
			overflowed = true
			break
		}
	}
	assert.True(t, overflowed, "a full queue must reject, not block")

	close(gate)
	d.Stop()
}

func TestDispatcherStopWaitsForInflightWork(t *testing.T) {
	gate := make(chan struct{})
	job := &countingJob{gate: gate}
	d := NewDispatcher(job, 1, testLogger())

	require.NoError(t, d.Dispatch(context.Background(), core.ReviewRequest{SourceRef: "pr"}))

	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned while a job was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the job finished")
	}
	assert.Equal(t, 1, job.count())
}
