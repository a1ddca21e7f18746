package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sevigo/review-pilot/internal/core"
)

// memoryDocStore keeps the index entirely in memory. It backs stub mode and
// tests; the mutex gives it the same reader/writer guarantees as Postgres.
type memoryDocStore struct {
	mu   sync.RWMutex
	docs map[string]core.IndexedDocument
}

// NewMemoryDocumentStore creates an empty in-memory DocumentStore.
func NewMemoryDocumentStore() DocumentStore {
	return &memoryDocStore{docs: make(map[string]core.IndexedDocument)}
}

func (s *memoryDocStore) Upsert(_ context.Context, doc core.IndexedDocument) error {
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = cloneDoc(doc)
	return nil
}

func (s *memoryDocStore) Meta(_ context.Context, id string) (*DocumentMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return &DocumentMeta{ID: doc.ID, ContentHash: doc.ContentHash, UpdatedAt: doc.UpdatedAt}, nil
}

func (s *memoryDocStore) Get(_ context.Context, id string) (*core.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	out := cloneDoc(doc)
	return &out, nil
}

func (s *memoryDocStore) All(_ context.Context) ([]core.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]core.IndexedDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, cloneDoc(doc))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (s *memoryDocStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func cloneDoc(doc core.IndexedDocument) core.IndexedDocument {
	out := doc
	out.Embedding = append([]float64(nil), doc.Embedding...)
	if doc.Metadata != nil {
		out.Metadata = make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
