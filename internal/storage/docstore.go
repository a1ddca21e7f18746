// Package storage persists the two durable concerns of the reviewer: the
// semantic index's documents and the per-run audit log.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sevigo/review-pilot/internal/core"
)

// ErrDocumentNotFound marks a lookup for an id the index does not hold.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentMeta is the cheap projection used by the dedup check.
type DocumentMeta struct {
	ID          string
	ContentHash string
	UpdatedAt   time.Time
}

// DocumentStore persists indexed documents. Upsert must replace an existing
// id atomically so concurrent readers never observe two entries for one id.
type DocumentStore interface {
	Upsert(ctx context.Context, doc core.IndexedDocument) error
	Meta(ctx context.Context, id string) (*DocumentMeta, error)
	Get(ctx context.Context, id string) (*core.IndexedDocument, error)
	All(ctx context.Context) ([]core.IndexedDocument, error)
	Delete(ctx context.Context, id string) error
}

type postgresDocStore struct {
	db *sqlx.DB
}

// NewDocumentStore creates a DocumentStore backed by Postgres.
func NewDocumentStore(db *sqlx.DB) DocumentStore {
	return &postgresDocStore{db: db}
}

func (s *postgresDocStore) Upsert(ctx context.Context, doc core.IndexedDocument) error {
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode document metadata: %w", err)
	}

	updatedAt := doc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO indexed_documents (id, title, content, content_hash, embedding, metadata, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title        = EXCLUDED.title,
			content      = EXCLUDED.content,
			content_hash = EXCLUDED.content_hash,
			embedding    = EXCLUDED.embedding,
			metadata     = EXCLUDED.metadata,
			updated_at   = EXCLUDED.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		doc.ID, doc.Title, doc.Content, doc.ContentHash,
		pq.Array(doc.Embedding), meta, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *postgresDocStore) Meta(ctx context.Context, id string) (*DocumentMeta, error) {
	query := `SELECT id, content_hash, updated_at FROM indexed_documents WHERE id = $1`

	var m DocumentMeta
	err := s.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.ContentHash, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document meta for %s: %w", id, err)
	}
	return &m, nil
}

func (s *postgresDocStore) Get(ctx context.Context, id string) (*core.IndexedDocument, error) {
	query := `SELECT id, title, content, content_hash, embedding, metadata, updated_at
		FROM indexed_documents WHERE id = $1`

	var (
		doc       core.IndexedDocument
		embedding pq.Float64Array
		metaRaw   []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.Title, &doc.Content, &doc.ContentHash,
		&embedding, &metaRaw, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}

	doc.Embedding = []float64(embedding)
	if err := json.Unmarshal(metaRaw, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", id, err)
	}
	return &doc, nil
}

func (s *postgresDocStore) All(ctx context.Context) ([]core.IndexedDocument, error) {
	query := `SELECT id, title, content, content_hash, embedding, metadata, updated_at
		FROM indexed_documents ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed documents: %w", err)
	}
	defer rows.Close()

	var docs []core.IndexedDocument
	for rows.Next() {
		var (
			doc       core.IndexedDocument
			embedding pq.Float64Array
			metaRaw   []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.ContentHash,
			&embedding, &metaRaw, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan indexed document: %w", err)
		}
		doc.Embedding = []float64(embedding)
		if err := json.Unmarshal(metaRaw, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while reading indexed documents: %w", err)
	}
	return docs, nil
}

func (s *postgresDocStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM indexed_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return nil
}
