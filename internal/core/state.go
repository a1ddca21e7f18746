package core

import "time"

// State names one phase of the review lifecycle.
type State string

const (
	StateInitialize        State = "INITIALIZE"
	StateFetchChangeSet    State = "FETCH_CHANGE_SET"
	StateResolveContextIDs State = "RESOLVE_CONTEXT_IDS"
	StateFetchTicket       State = "FETCH_TICKET_CONTEXT"
	StateFetchDoc          State = "FETCH_DOC_CONTEXT"
	StateAnalyze           State = "ANALYZE"
	StateGenerateVerdict   State = "GENERATE_VERDICT"
	StatePostResults       State = "POST_RESULTS"
	StateComplete          State = "COMPLETE"
	StateError             State = "ERROR"
)

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateError
}

// StateTiming records how long one state took.
type StateTiming struct {
	State    State
	Duration time.Duration
}

// RunState is the mutable envelope threaded through the review pipeline.
// The state machine owns it exclusively for the lifetime of one run; it is
// never shared between runs. The parallel context-fetch stage writes only to
// disjoint fields (Ticket vs Doc/DocResolved).
type RunState struct {
	RunID   string
	Request ReviewRequest

	ChangeSet *ChangeSet
	TicketID  string
	DocID     string

	Ticket *TicketContext
	Doc    *DocContext

	// DocResolved marks that document resolution already ran (possibly in
	// parallel with the ticket fetch), so FETCH_DOC_CONTEXT must not run it
	// again.
	DocResolved bool

	Analysis string
	Verdict  *ReviewVerdict
	Posted   bool

	Status State
	Err    error

	StartedAt  time.Time
	FinishedAt time.Time
	Timings    []StateTiming
}

// Fail records err and moves the run into the terminal ERROR state.
func (r *RunState) Fail(err error) {
	r.Err = err
	r.Status = StateError
}

// Record appends the duration one state took.
func (r *RunState) Record(s State, d time.Duration) {
	r.Timings = append(r.Timings, StateTiming{State: s, Duration: d})
}

// RunRecord is the audit row persisted for one finished run.
type RunRecord struct {
	ID           int64
	RunID        string
	SourceRef    string
	Status       string
	Decision     string
	CommentCount int
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// RecordFromRunState flattens a finished RunState into its audit row.
func RecordFromRunState(r *RunState) *RunRecord {
	rec := &RunRecord{
		RunID:      r.RunID,
		SourceRef:  r.Request.SourceRef,
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if r.Verdict != nil {
		rec.Decision = string(r.Verdict.Decision)
		rec.CommentCount = len(r.Verdict.Comments)
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}
