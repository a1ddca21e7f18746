// Package pipeline drives one review run through its states, from fetching
// the change set to posting the verdict.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/review-pilot/internal/core"
	"github.com/sevigo/review-pilot/internal/gitutil"
	"github.com/sevigo/review-pilot/internal/llm"
	"github.com/sevigo/review-pilot/internal/logger"
	"github.com/sevigo/review-pilot/internal/resolve"
	"github.com/sevigo/review-pilot/internal/retry"
)

// Runner executes review runs. It owns the state transitions; the toolset,
// analyzer, and resolver own the work inside each state. One Runner serves
// many concurrent runs because all per-run data lives in the RunState.
type Runner struct {
	tools    core.Toolset
	analyzer core.Analyzer
	resolver *resolve.Resolver
	exec     *retry.Executor
	logger   *slog.Logger
}

// NewRunner wires a Runner. exec may be nil to use the default retry policy.
func NewRunner(tools core.Toolset, analyzer core.Analyzer, resolver *resolve.Resolver, exec *retry.Executor, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if exec == nil {
		exec = retry.NewExecutor(retry.DefaultPolicy(), log)
	}
	return &Runner{
		tools:    tools,
		analyzer: analyzer,
		resolver: resolver,
		exec:     exec,
		logger:   log,
	}
}

// Run drives one request to a terminal state and returns the full run record.
// It never returns an error; failures end up in RunState.Err with the run in
// the ERROR state, after a best-effort failure notice on the pull request.
func (r *Runner) Run(ctx context.Context, req core.ReviewRequest) *core.RunState {
	st := &core.RunState{
		RunID:     uuid.NewString(),
		Request:   req,
		Status:    core.StateInitialize,
		StartedAt: time.Now().UTC(),
	}
	log := logger.ForRun(r.logger, st.RunID, req.SourceRef)
	log.Info("review run started")

	for !st.Status.Terminal() {
		state := st.Status
		started := time.Now()
		st.Status = r.step(ctx, st, log)
		st.Record(state, time.Since(started))
		log.Debug("state finished", "state", state, "next", st.Status)
	}
	st.FinishedAt = time.Now().UTC()

	if st.Status == core.StateError {
		r.reportFailure(ctx, st, log)
		log.Error("review run failed", "error", st.Err)
	} else {
		r.setStatus(ctx, st, core.CheckSuccess, log)
		log.Info("review run complete",
			"decision", st.Verdict.Decision, "comments", len(st.Verdict.Comments))
	}
	return st
}

func (r *Runner) step(ctx context.Context, st *core.RunState, log *slog.Logger) core.State {
	switch st.Status {
	case core.StateInitialize:
		return r.initialize(st)
	case core.StateFetchChangeSet:
		return r.fetchChangeSet(ctx, st, log)
	case core.StateResolveContextIDs:
		return r.resolveContextIDs(st, log)
	case core.StateFetchTicket:
		return r.fetchContext(ctx, st, log)
	case core.StateFetchDoc:
		return r.fetchDoc(ctx, st, log)
	case core.StateAnalyze:
		return r.analyze(ctx, st)
	case core.StateGenerateVerdict:
		return r.generateVerdict(ctx, st, log)
	case core.StatePostResults:
		return r.postResults(ctx, st)
	default:
		st.Fail(core.Invalidf("unknown state %q", st.Status))
		return core.StateError
	}
}

func (r *Runner) initialize(st *core.RunState) core.State {
	if st.Request.SourceRef == "" {
		st.Fail(core.Invalidf("review request carries no source reference"))
		return core.StateError
	}
	if _, _, _, err := gitutil.ParsePullRequestURL(st.Request.SourceRef); err != nil {
		st.Fail(core.Invalidf("malformed source reference %q: %v", st.Request.SourceRef, err))
		return core.StateError
	}
	return core.StateFetchChangeSet
}

func (r *Runner) fetchChangeSet(ctx context.Context, st *core.RunState, log *slog.Logger) core.State {
	err := r.exec.Do(ctx, "fetch change set", func(ctx context.Context) error {
		cs, err := r.tools.Code.FetchChangeSet(ctx, st.Request.SourceRef)
		if err != nil {
			return err
		}
		st.ChangeSet = cs
		return nil
	})
	if err != nil {
		// Without a change set there is nothing to review and nowhere to
		// post; this is the one unconditionally fatal fetch.
		st.Fail(err)
		return core.StateError
	}

	r.setStatus(ctx, st, core.CheckInProgress, log)
	return core.StateResolveContextIDs
}

func (r *Runner) resolveContextIDs(st *core.RunState, log *slog.Logger) core.State {
	st.TicketID = resolve.ExtractTicketKey(st.ChangeSet)
	st.DocID = resolve.ExtractDocID(st.ChangeSet)
	log.Info("context ids resolved", "ticket", st.TicketID, "doc", st.DocID)
	return core.StateFetchTicket
}

// fetchContext runs the ticket fetch and the document resolution in parallel.
// The two goroutines write disjoint RunState fields. Both sides degrade on
// failure; context is optional, the diff is not.
func (r *Runner) fetchContext(ctx context.Context, st *core.RunState, log *slog.Logger) core.State {
	var wg sync.WaitGroup

	if st.TicketID != "" && r.tools.Tickets != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.exec.Do(ctx, "fetch ticket", func(ctx context.Context) error {
				ticket, err := r.tools.Tickets.FetchTicket(ctx, st.TicketID)
				if err != nil {
					return err
				}
				st.Ticket = ticket
				return nil
			})
			if err != nil {
				log.Warn("proceeding without ticket context",
					"ticket", st.TicketID, "error", err)
			}
		}()
	}

	if r.resolver != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Doc = r.resolver.Resolve(ctx, resolve.Input{
				DocID:     st.DocID,
				ChangeSet: st.ChangeSet,
			})
			st.DocResolved = true
		}()
	}

	wg.Wait()
	return core.StateFetchDoc
}

func (r *Runner) fetchDoc(ctx context.Context, st *core.RunState, log *slog.Logger) core.State {
	if !st.DocResolved && r.resolver != nil {
		st.Doc = r.resolver.Resolve(ctx, resolve.Input{
			DocID:     st.DocID,
			ChangeSet: st.ChangeSet,
		})
		st.DocResolved = true
	}
	if st.Doc == nil {
		log.Info("no documentation context for this run")
	}
	return core.StateAnalyze
}

func (r *Runner) analyze(ctx context.Context, st *core.RunState) core.State {
	err := r.exec.Do(ctx, "analyze", func(ctx context.Context) error {
		analysis, err := r.analyzer.Analyze(ctx, st.ChangeSet, st.Ticket, st.Doc)
		if err != nil {
			return err
		}
		st.Analysis = analysis
		return nil
	})
	if err != nil {
		st.Fail(err)
		return core.StateError
	}
	return core.StateGenerateVerdict
}

// generateVerdict asks the model for a structured verdict. A malformed answer
// gets exactly one more try; after that the prose analysis is demoted into a
// plain COMMENT verdict rather than losing the whole run.
func (r *Runner) generateVerdict(ctx context.Context, st *core.RunState, log *slog.Logger) core.State {
	gen := func() (*core.ReviewVerdict, error) {
		var verdict *core.ReviewVerdict
		err := r.exec.Do(ctx, "generate verdict", func(ctx context.Context) error {
			v, err := r.analyzer.GenerateVerdict(ctx, st.ChangeSet, st.Analysis)
			if err != nil {
				return err
			}
			verdict = v
			return nil
		})
		return verdict, err
	}

	verdict, err := gen()
	if err != nil && core.IsGeneration(err) {
		log.Warn("verdict was malformed, retrying once", "error", err)
		verdict, err = gen()
	}
	if err != nil {
		if st.Analysis == "" {
			st.Fail(err)
			return core.StateError
		}
		log.Warn("falling back to an unstructured comment verdict", "error", err)
		verdict = llm.FallbackVerdict(st.Analysis)
	}

	st.Verdict = verdict
	return core.StatePostResults
}

func (r *Runner) postResults(ctx context.Context, st *core.RunState) core.State {
	err := r.exec.Do(ctx, "post results", func(ctx context.Context) error {
		return r.tools.Code.PostResults(ctx, st.ChangeSet, st.Verdict)
	})
	if err != nil {
		st.Fail(err)
		return core.StateError
	}
	st.Posted = true
	return core.StateComplete
}

// reportFailure leaves one comment explaining the failure and flips the check
// to failed. Both are best effort; a failing notice never masks the run error.
func (r *Runner) reportFailure(ctx context.Context, st *core.RunState, log *slog.Logger) {
	detail := "the review could not be completed"
	if st.Err != nil {
		detail = st.Err.Error()
	}
	if err := r.tools.Code.PostFailureNotice(ctx, st.ChangeSet, st.Request.SourceRef, detail); err != nil {
		log.Warn("failed to post failure notice", "error", err)
	}
	r.setStatus(ctx, st, core.CheckFailure, log)
}

func (r *Runner) setStatus(ctx context.Context, st *core.RunState, state core.CheckState, log *slog.Logger) {
	if st.ChangeSet == nil {
		return
	}
	if err := r.tools.Code.SetStatus(ctx, st.ChangeSet, state); err != nil {
		log.Warn("failed to update check status", "state", state, "error", err)
	}
}
