package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/review-pilot/internal/core"
)

// RunStore records finished runs for the status command and for operators
// digging into a misbehaving repository.
type RunStore interface {
	SaveRun(ctx context.Context, rec *core.RunRecord) error
	LatestRunForRef(ctx context.Context, sourceRef string) (*core.RunRecord, error)
	ListRecentRuns(ctx context.Context, limit int) ([]core.RunRecord, error)
}

type postgresRunStore struct {
	db *sqlx.DB
}

// NewRunStore creates a RunStore backed by Postgres.
func NewRunStore(db *sqlx.DB) RunStore {
	return &postgresRunStore{db: db}
}

func (s *postgresRunStore) SaveRun(ctx context.Context, rec *core.RunRecord) error {
	query := `INSERT INTO review_runs
		(run_id, source_ref, status, decision, comment_count, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		rec.RunID, rec.SourceRef, rec.Status, rec.Decision,
		rec.CommentCount, rec.Error, rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.RunID, err)
	}
	return nil
}

func (s *postgresRunStore) LatestRunForRef(ctx context.Context, sourceRef string) (*core.RunRecord, error) {
	query := `
		SELECT id, run_id, source_ref, status, decision, comment_count, error, started_at, finished_at
		FROM review_runs
		WHERE source_ref = $1
		ORDER BY started_at DESC
		LIMIT 1`

	var rec core.RunRecord
	err := s.db.QueryRowContext(ctx, query, sourceRef).Scan(
		&rec.ID, &rec.RunID, &rec.SourceRef, &rec.Status, &rec.Decision,
		&rec.CommentCount, &rec.Error, &rec.StartedAt, &rec.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no previous run found for %s", sourceRef)
		}
		return nil, err
	}
	return &rec, nil
}

func (s *postgresRunStore) ListRecentRuns(ctx context.Context, limit int) ([]core.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, run_id, source_ref, status, decision, comment_count, error, started_at, finished_at
		FROM review_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var recs []core.RunRecord
	for rows.Next() {
		var rec core.RunRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.SourceRef, &rec.Status, &rec.Decision,
			&rec.CommentCount, &rec.Error, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// memoryRunStore keeps run records in memory for stub mode.
type memoryRunStore struct {
	mu   sync.RWMutex
	recs []core.RunRecord
}

// NewMemoryRunStore creates an in-memory RunStore.
func NewMemoryRunStore() RunStore {
	return &memoryRunStore{}
}

func (s *memoryRunStore) SaveRun(_ context.Context, rec *core.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *rec
	saved.ID = int64(len(s.recs) + 1)
	s.recs = append(s.recs, saved)
	return nil
}

func (s *memoryRunStore) LatestRunForRef(_ context.Context, sourceRef string) (*core.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.recs) - 1; i >= 0; i-- {
		if s.recs[i].SourceRef == sourceRef {
			rec := s.recs[i]
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("no previous run found for %s", sourceRef)
}

func (s *memoryRunStore) ListRecentRuns(_ context.Context, limit int) ([]core.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.recs) {
		limit = len(s.recs)
	}
	out := make([]core.RunRecord, 0, limit)
	for i := len(s.recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.recs[i])
	}
	return out, nil
}
