// Package index implements vector-similarity search over ingested documents
// with incremental, hash-deduplicated bulk ingestion.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sevigo/review-pilot/internal/core"
	"github.com/sevigo/review-pilot/internal/storage"
)

// Embedder turns text into a fixed-length vector. The goframe embedding
// provider satisfies it; failure is a typed error, never a panic.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Service is the semantic index: a document store plus an embedding provider.
// It is safe for concurrent readers and a single writer per document id; the
// store's upsert keeps per-id replacement atomic.
type Service struct {
	store    storage.DocumentStore
	embedder Embedder
	logger   *slog.Logger
}

// NewService builds a Service around the given store and embedder.
func NewService(store storage.DocumentStore, embedder Embedder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, embedder: embedder, logger: logger}
}

var _ core.SemanticIndex = (*Service)(nil)

// HashContent returns the dedup key for a document body.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Ingest stores one document according to policy. The returned outcome says
// whether the document was written, deduplicated away, or failed.
func (s *Service) Ingest(ctx context.Context, doc core.IndexedDocument, policy core.IngestPolicy) (core.IngestOutcome, error) {
	if doc.ID == "" {
		return core.IngestFailed, fmt.Errorf("document id is empty")
	}
	if doc.ContentHash == "" {
		doc.ContentHash = HashContent(doc.Content)
	}

	meta, err := s.store.Meta(ctx, doc.ID)
	switch {
	case err == nil:
		if meta.ContentHash == doc.ContentHash {
			if policy.SkipExisting {
				return core.IngestSkipped, nil
			}
		} else if !policy.ForceUpdate {
			s.logger.Debug("document changed but force update is off, skipping",
				"id", doc.ID)
			return core.IngestSkipped, nil
		}
	case errors.Is(err, storage.ErrDocumentNotFound):
		// First sighting of this id.
	default:
		return core.IngestFailed, fmt.Errorf("failed to check index for %s: %w", doc.ID, err)
	}

	if len(doc.Embedding) == 0 {
		vec, err := s.embedder.EmbedQuery(ctx, doc.Content)
		if err != nil {
			return core.IngestFailed, fmt.Errorf("failed to embed document %s: %w", doc.ID, err)
		}
		doc.Embedding = toFloat64(vec)
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}

	if err := s.store.Upsert(ctx, doc); err != nil {
		return core.IngestFailed, fmt.Errorf("failed to store document %s: %w", doc.ID, err)
	}
	return core.IngestIngested, nil
}

// BulkIngest runs Ingest over docs, counting outcomes. One document's failure
// never aborts the batch; its error is collected and the batch continues.
func (s *Service) BulkIngest(ctx context.Context, docs []core.IndexedDocument, policy core.IngestPolicy) core.IngestReport {
	var report core.IngestReport

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Errorf("ingest aborted at %s: %w", doc.ID, err))
			continue
		}

		outcome, err := s.Ingest(ctx, doc, policy)
		switch outcome {
		case core.IngestIngested:
			report.Ingested++
		case core.IngestSkipped:
			report.Skipped++
		case core.IngestFailed:
			report.Failed++
			report.Errors = append(report.Errors, err)
			s.logger.Warn("failed to ingest document, continuing batch",
				"id", doc.ID, "error", err)
		}
	}

	s.logger.Info("bulk ingest finished",
		"ingested", report.Ingested,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report
}

// Search embeds the query and returns up to k matches scoring at least
// minScore, ordered by score, then most recent update, then id.
func (s *Service) Search(ctx context.Context, query string, k int, minScore float64) ([]core.Match, error) {
	if k <= 0 {
		k = 3
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	qv := toFloat64(queryVec)

	docs, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load indexed documents: %w", err)
	}

	var matches []core.Match
	for _, doc := range docs {
		if len(doc.Embedding) != len(qv) {
			s.logger.Debug("skipping document with mismatched embedding size",
				"id", doc.ID, "have", len(doc.Embedding), "want", len(qv))
			continue
		}
		score := CosineSimilarity(qv, doc.Embedding)
		if score < minScore {
			continue
		}
		matches = append(matches, core.Match{
			ID:        doc.ID,
			Title:     doc.Title,
			Score:     score,
			UpdatedAt: doc.UpdatedAt,
		})
	}

	SortMatches(matches)
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// SortMatches orders matches by descending score, breaking ties by most
// recent update and then lexicographic id so results are deterministic.
func SortMatches(matches []core.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if !matches[i].UpdatedAt.Equal(matches[j].UpdatedAt) {
			return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
}

func toFloat64(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
