package core

import "context"

//go:generate mockgen -destination=../../mocks/mock_toolset.go -package=mocks . CodeHost,TicketSystem,KnowledgeBase,Analyzer

// CheckState is the status reported to the code host's check surface while a
// review runs. Implementations without a status surface treat these as no-ops.
type CheckState string

const (
	CheckInProgress CheckState = "in_progress"
	CheckSuccess    CheckState = "success"
	CheckFailure    CheckState = "failure"
)

// CodeHost is the source-control capability: it serves the change set and
// receives the finished review.
type CodeHost interface {
	// FetchChangeSet loads the pull request identified by ref.
	FetchChangeSet(ctx context.Context, ref string) (*ChangeSet, error)

	// PostResults publishes the verdict as a single batched review call. A
	// retried attempt either fully succeeds or is fully retried; it never
	// leaves partial duplicate comments behind.
	PostResults(ctx context.Context, cs *ChangeSet, verdict *ReviewVerdict) error

	// PostFailureNotice leaves one short comment explaining why no review
	// could be produced. Best effort: cs may be nil when the change set was
	// never fetched, in which case the implementation falls back to ref.
	PostFailureNotice(ctx context.Context, cs *ChangeSet, ref, detail string) error

	// SetStatus reports run progress to the host's check surface. Callers
	// swallow failures; this never gates a transition.
	SetStatus(ctx context.Context, cs *ChangeSet, state CheckState) error
}

// TicketSystem serves requirements context from the ticket tracker.
type TicketSystem interface {
	FetchTicket(ctx context.Context, key string) (*TicketContext, error)
}

// KnowledgeBase serves documentation context.
type KnowledgeBase interface {
	// FetchDocument loads one document by id.
	FetchDocument(ctx context.Context, id string) (*DocContext, error)

	// SearchKeyword runs a plain text search. An empty result slice is a
	// valid answer, not an error.
	SearchKeyword(ctx context.Context, query string, limit int) ([]DocContext, error)
}

// Toolset bundles the three external capabilities a review run depends on.
// The concrete implementations (live APIs or stub fixtures) are chosen once
// at startup; nothing downstream branches on which one is bound.
type Toolset struct {
	Code    CodeHost
	Tickets TicketSystem
	Docs    KnowledgeBase
}

// Analyzer is the opaque language-model service: it turns a change set plus
// whatever context survived into a prose analysis, and an analysis into a
// structured verdict.
type Analyzer interface {
	Analyze(ctx context.Context, cs *ChangeSet, ticket *TicketContext, doc *DocContext) (string, error)
	GenerateVerdict(ctx context.Context, cs *ChangeSet, analysis string) (*ReviewVerdict, error)
}
