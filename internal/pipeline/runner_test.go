package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-pilot/internal/core"
	"github.com/sevigo/review-pilot/internal/resolve"
	"github.com/sevigo/review-pilot/internal/retry"
)

type fakeCodeHost struct {
	cs        *core.ChangeSet
	fetchErrs []error

	fetchCalls int
	posted     []*core.ReviewVerdict
	notices    []string
	statuses   []core.CheckState
	postErr    error
}

func (f *fakeCodeHost) FetchChangeSet(_ context.Context, ref string) (*core.ChangeSet, error) {
	f.fetchCalls++
	if len(f.fetchErrs) > 0 {
		err := f.fetchErrs[0]
		f.fetchErrs = f.fetchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	cs := *f.cs
	cs.Ref = ref
	return &cs, nil
}

func (f *fakeCodeHost) PostResults(_ context.Context, _ *core.ChangeSet, v *core.ReviewVerdict) error {
	if f.postErr != nil {
		return f.postErr
	}
	f.posted = append(f.posted, v)
	return nil
}

func (f *fakeCodeHost) PostFailureNotice(_ context.Context, _ *core.ChangeSet, _, detail string) error {
	f.notices = append(f.notices, detail)
	return nil
}

func (f *fakeCodeHost) SetStatus(_ context.Context, _ *core.ChangeSet, s core.CheckState) error {
	f.statuses = append(f.statuses, s)
	return nil
}

type fakeTickets struct {
	ticket *core.TicketContext
	err    error
	calls  int
}

func (f *fakeTickets) FetchTicket(context.Context, string) (*core.TicketContext, error) {
	f.calls++
	return f.ticket, f.err
}

type fakeDocs struct {
	byID map[string]*core.DocContext
}

func (f *fakeDocs) FetchDocument(_ context.Context, id string) (*core.DocContext, error) {
	if doc, ok := f.byID[id]; ok {
		d := *doc
		return &d, nil
	}
	return nil, core.NotFoundf("doc %s", id)
}

func (f *fakeDocs) SearchKeyword(context.Context, string, int) ([]core.DocContext, error) {
	return nil, nil
}

type fakeAnalyzer struct {
	analysis    string
	analyzeErr  error
	verdict     *core.ReviewVerdict
	verdictErrs []error

	lastTicket *core.TicketContext
	lastDoc    *core.DocContext
	verdictTry int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ *core.ChangeSet, ticket *core.TicketContext, doc *core.DocContext) (string, error) {
	f.lastTicket = ticket
	f.lastDoc = doc
	return f.analysis, f.analyzeErr
}

func (f *fakeAnalyzer) GenerateVerdict(context.Context, *core.ChangeSet, string) (*core.ReviewVerdict, error) {
	f.verdictTry++
	if len(f.verdictErrs) > 0 {
		err := f.verdictErrs[0]
		f.verdictErrs = f.verdictErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.verdict, nil
}

func testChangeSet() *core.ChangeSet {
	return &core.ChangeSet{
		Owner:       "acme",
		Repo:        "billing",
		Number:      42,
		Title:       "Harden login",
		Description: "Implements AUTH-101.\n\nSee doc: 10001 for details.",
		Files:       []core.FileDiff{{Path: "auth/login.go", Patch: "@@ -1 +1 @@\n+x"}},
	}
}

func testRunner(t *testing.T, host *fakeCodeHost, tickets *fakeTickets, docs *fakeDocs, analyzer *fakeAnalyzer) *Runner {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	exec := retry.NewExecutor(retry.Policy{
		MaxAttempts:       2,
		InitialDelay:      time.Millisecond,
		PerAttemptTimeout: time.Second,
	}, log)
	resolver := resolve.NewResolver(docs, nil, resolve.Options{}, log)
	return NewRunner(core.Toolset{Code: host, Tickets: tickets, Docs: docs}, analyzer, resolver, exec, log)
}

func TestRunHappyPathWithFullContext(t *testing.T) {
	host := &fakeCodeHost{cs: testChangeSet()}
	tickets := &fakeTickets{ticket: &core.TicketContext{Key: "AUTH-101", Criteria: []string{"a", "b"}}}
	docs := &fakeDocs{byID: map[string]*core.DocContext{
		"10001": {ID: "10001", Title: "Auth Architecture", Body: "tokens"},
	}}
	analyzer := &fakeAnalyzer{
		analysis: "looks solid",
		verdict:  &core.ReviewVerdict{Decision: core.DecisionApprove, Summary: "ship it"},
	}

	st := testRunner(t, host, tickets, docs, analyzer).Run(context.Background(),
		core.ReviewRequest{SourceRef: "https://github.com/acme/billing/pull/42"})

	assert.Equal(t, core.StateComplete, st.Status)
	assert.True(t, st.Posted)
	assert.NoError(t, st.Err)

	require.NotNil(t, analyzer.lastTicket)
	assert.Equal(t, "AUTH-101", analyzer.lastTicket.Key)
	require.NotNil(t, analyzer.lastDoc)
	assert.Equal(t, core.SourceDirect, analyzer.lastDoc.SourceMethod)

	require.Len(t, host.posted, 1)
	assert.Equal(t, core.DecisionApprove, host.posted[0].Decision)
	assert.Equal(t, []core.CheckState{core.CheckInProgress, core.CheckSuccess}, host.statuses)
	assert.Empty(t, host.notices)
}

func TestRunDegradesWhenContextIsMissing(t *testing.T) {
	host := &fakeCodeHost{cs: testChangeSet()}
	tickets := &fakeTickets{err: core.NotFoundf("ticket gone")}
	docs := &fakeDocs{byID: map[string]*core.DocContext{}}
	analyzer := &fakeAnalyzer{
		analysis: "reviewed without context",
		verdict:  &core.ReviewVerdict{Decision: core.DecisionComment, Summary: "fine"},
	}

	st := testRunner(t, host, tickets, docs, analyzer).Run(context.Background(),
		core.ReviewRequest{SourceRef: "https://github.com/acme/billing/pull/42"})

	assert.Equal(t, core.StateComplete, st.Status)
	assert.Nil(t, analyzer.lastTicket, "missing ticket degrades, never fails")
	assert.Nil(t, analyzer.lastDoc)
	assert.True(t, st.DocResolved)
	require.Len(t, host.posted, 1)
}

func TestRunFatalFetchPostsNoticeNotResults(t *testing.T) {
	host := &fakeCodeHost{
		cs:        testChangeSet(),
		fetchErrs: []error{core.Authf("bad credentials"), core.Authf("bad credentials")},
	}
	analyzer := &fakeAnalyzer{}

	st := testRunner(t, host, &fakeTickets{}, &fakeDocs{}, analyzer).Run(context.Background(),
		core.ReviewRequest{SourceRef: "https://github.com/acme/billing/pull/42"})

	assert.Equal(t, core.StateError, st.Status)
	assert.True(t, core.IsAuth(st.Err))
	assert.Equal(t, 1, host.fetchCalls, "auth failures are not retried")
	assert.Empty(t, host.posted)
	require.Len(t, host.notices, 1)
	assert.Contains(t, host.notices[0], "bad credentials")
	assert.Equal(t, 0, analyzer.verdictTry)
}

func TestRunRetriesTransientFetch(t *testing.T) {
	host := &fakeCodeHost{
		cs:        testChangeSet(),
		fetchErrs: []error{core.Transientf("flaky network")},
	}
	analyzer := &fakeAnalyzer{
		analysis: "ok",
		verdict:  &core.ReviewVerdict{Decision: core.DecisionApprove, Summary: "ok"},
	}

	st := testRunner(t, host, &fakeTickets{}, &fakeDocs{}, analyzer).Run(context.Background(),
		core.ReviewRequest{SourceRef: "https://github.com/acme/billing/pull/42"})

	assert.Equal(t, core.StateComplete, st.Status)
	assert.Equal(t, 2, host.fetchCalls)
}

func TestRunFallsBackToCommentVerdict(t *testing.T) {
	host := &fakeCodeHost{cs: testChangeSet()}
	analyzer := &fakeAnalyzer{
		analysis:    "the analysis prose",
		verdictErrs: []error{core.Generationf("garbage json"), core.Generationf("garbage json")},
	}

	st := testRunner(t, host, &fakeTickets{}, &fakeDocs{}, analyzer).Run(context.Background(),
		core.ReviewRequest{SourceRef: "https://github.com/acme/billing/pull/42"})

	assert.Equal(t, core.StateComplete, st.Status)
	assert.Equal(t, 2, analyzer.verdictTry, "a malformed verdict gets exactly one more try")
	require.NotNil(t, st.Verdict)
	assert.Equal(t, core.DecisionComment, st.Verdict.Decision)
	assert.Contains(t, st.Verdict.Summary, "the analysis prose")
	require.Len(t, host.posted, 1)
}

func TestRunFatalAnalyzeFailure(t *testing.T) {
	host := &fakeCodeHost{cs: testChangeSet()}
	analyzer := &fakeAnalyzer{analyzeErr: core.Generationf("model returned nothing")}

	st := testRunner(t, host, &fakeTickets{}, &fakeDocs{}, analyzer).Run(context.Background(),
		core.ReviewRequest{SourceRef: "https://github.com/acme/billing/pull/42"})

	assert.Equal(t, core.StateError, st.Status)
	assert.Empty(t, host.posted)
	require.Len(t, host.notices, 1)
	assert.Equal(t, []core.CheckState{core.CheckInProgress, core.CheckFailure}, host.statuses)
}

func TestRunRejectsEmptyRef(t *testing.T) {
	host := &fakeCodeHost{cs: testChangeSet()}

	st := testRunner(t, host, &fakeTickets{}, &fakeDocs{}, &fakeAnalyzer{}).Run(
		context.Background(), core.ReviewRequest{})

	assert.Equal(t, core.StateError, st.Status)
	assert.True(t, core.IsValidation(st.Err))
	assert.Equal(t, 0, host.fetchCalls)
}

func TestRunRejectsMalformedRef(t *testing.T) {
	host := &fakeCodeHost{cs: testChangeSet()}

	st := testRunner(t, host, &fakeTickets{}, &fakeDocs{}, &fakeAnalyzer{}).Run(
		context.Background(), core.ReviewRequest{SourceRef: "not-a-pull-request-url"})

	assert.Equal(t, core.StateError, st.Status)
	assert.True(t, core.IsValidation(st.Err))
	assert.Equal(t, 0, host.fetchCalls)
}

func TestRunPostExhaustionEmitsOneNotice(t *testing.T) {
	host := &fakeCodeHost{
		cs:      testChangeSet(),
		postErr: core.Transientf("comment service is down"),
	}
	analyzer := &fakeAnalyzer{
		analysis: "ok",
		verdict:  &core.ReviewVerdict{Decision: core.DecisionApprove, Summary: "ok"},
	}

	st := testRunner(t, host, &fakeTickets{}, &fakeDocs{}, analyzer).Run(context.Background(),
		core.ReviewRequest{SourceRef: "https://github.com/acme/billing/pull/42"})

	assert.Equal(t, core.StateError, st.Status)
	assert.False(t, st.Posted)
	assert.Empty(t, host.posted)
	require.Len(t, host.notices, 1, "exhausted posting still yields exactly one notice")
	assert.Equal(t, []core.CheckState{core.CheckInProgress, core.CheckFailure}, host.statuses)
}

func TestRunRecordsTimingsAndIdentity(t *testing.T) {
	host := &fakeCodeHost{cs: testChangeSet()}
	analyzer := &fakeAnalyzer{
		analysis: "ok",
		verdict:  &core.ReviewVerdict{Decision: core.DecisionApprove, Summary: "ok"},
	}

	st := testRunner(t, host, &fakeTickets{}, &fakeDocs{}, analyzer).Run(context.Background(),
		core.ReviewRequest{SourceRef: "https://github.com/acme/billing/pull/42"})

	assert.NotEmpty(t, st.RunID)
	assert.False(t, st.StartedAt.IsZero())
	assert.False(t, st.FinishedAt.IsZero())

	var states []core.State
	for _, timing := range st.Timings {
		states = append(states, timing.State)
	}
	assert.Equal(t, []core.State{
		core.StateInitialize,
		core.StateFetchChangeSet,
		core.StateResolveContextIDs,
		core.StateFetchTicket,
		core.StateFetchDoc,
		core.StateAnalyze,
		core.StateGenerateVerdict,
		core.StatePostResults,
	}, states)
}
