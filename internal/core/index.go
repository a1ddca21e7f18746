package core

import (
	"context"
	"time"
)

// IndexedDocument is the unit stored in the semantic index. ID is unique
// within the index; ContentHash is the dedup key for re-ingestion.
type IndexedDocument struct {
	ID          string
	Title       string
	Content     string
	ContentHash string
	Embedding   []float64
	Metadata    map[string]string
	UpdatedAt   time.Time
}

// IngestPolicy controls how duplicates are handled during ingestion.
type IngestPolicy struct {
	// SkipExisting classifies documents whose id and content hash are
	// already indexed as skipped instead of re-embedding them.
	SkipExisting bool
	// ForceUpdate replaces an existing entry whose content hash changed.
	// Without it a changed document is skipped as well.
	ForceUpdate bool
}

// IngestOutcome classifies what happened to one document.
type IngestOutcome string

const (
	IngestIngested IngestOutcome = "ingested"
	IngestSkipped  IngestOutcome = "skipped"
	IngestFailed   IngestOutcome = "failed"
)

// IngestReport sums up one bulk ingestion run.
type IngestReport struct {
	Ingested int
	Skipped  int
	Failed   int
	Errors   []error
}

// Total returns the number of documents the run looked at.
func (r IngestReport) Total() int {
	return r.Ingested + r.Skipped + r.Failed
}

// Match is one semantic search hit. UpdatedAt participates in the
// deterministic ordering of equal scores.
type Match struct {
	ID        string
	Title     string
	Score     float64
	UpdatedAt time.Time
}

// SemanticIndex is the vector-search surface the context resolver and the
// batch ingest entry point share. Implementations must keep per-id
// replacement atomic so concurrent runs never observe duplicate ids.
type SemanticIndex interface {
	Ingest(ctx context.Context, doc IndexedDocument, policy IngestPolicy) (IngestOutcome, error)
	BulkIngest(ctx context.Context, docs []IndexedDocument, policy IngestPolicy) IngestReport
	Search(ctx context.Context, query string, k int, minScore float64) ([]Match, error)
}
