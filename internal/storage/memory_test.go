package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-pilot/internal/core"
)

func TestMemoryDocStoreUpsertReplaces(t *testing.T) {
	store := NewMemoryDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, core.IndexedDocument{
		ID: "10001", Title: "Auth", Content: "v1", ContentHash: "h1",
		Embedding: []float64{1, 0},
	}))
	require.NoError(t, store.Upsert(ctx, core.IndexedDocument{
		ID: "10001", Title: "Auth", Content: "v2", ContentHash: "h2",
		Embedding: []float64{0, 1},
	}))

	doc, err := store.Get(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, "v2", doc.Content)
	assert.Equal(t, []float64{0, 1}, doc.Embedding)

	meta, err := store.Meta(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, "h2", meta.ContentHash)
	assert.False(t, meta.UpdatedAt.IsZero())
}

func TestMemoryDocStoreMissingDocument(t *testing.T) {
	store := NewMemoryDocumentStore()
	ctx := context.Background()

	_, err := store.Meta(ctx, "nope")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestMemoryDocStoreReturnsCopies(t *testing.T) {
	store := NewMemoryDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, core.IndexedDocument{
		ID: "a", Embedding: []float64{1, 2}, Metadata: map[string]string{"k": "v"},
	}))

	doc, err := store.Get(ctx, "a")
	require.NoError(t, err)
	doc.Embedding[0] = 99
	doc.Metadata["k"] = "mutated"

	again, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, float64(1), again.Embedding[0])
	assert.Equal(t, "v", again.Metadata["k"])
}

func TestMemoryDocStoreAllIsSorted(t *testing.T) {
	store := NewMemoryDocumentStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Upsert(ctx, core.IndexedDocument{ID: id}))
	}
	require.NoError(t, store.Delete(ctx, "b"))

	docs, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "c", docs[1].ID)
}

func TestMemoryRunStoreListsNewestFirst(t *testing.T) {
	store := NewMemoryRunStore()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, ref := range []string{"pr/1", "pr/2", "pr/3"} {
		require.NoError(t, store.SaveRun(ctx, &core.RunRecord{
			RunID:     ref,
			SourceRef: ref,
			Status:    "COMPLETE",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := store.ListRecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "pr/3", recs[0].SourceRef)
	assert.Equal(t, "pr/2", recs[1].SourceRef)
}

func TestMemoryRunStoreLatestRunForRef(t *testing.T) {
	store := NewMemoryRunStore()
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, &core.RunRecord{RunID: "r1", SourceRef: "pr/1", Status: "ERROR"}))
	require.NoError(t, store.SaveRun(ctx, &core.RunRecord{RunID: "r2", SourceRef: "pr/1", Status: "COMPLETE"}))

	rec, err := store.LatestRunForRef(ctx, "pr/1")
	require.NoError(t, err)
	assert.Equal(t, "r2", rec.RunID)

	_, err = store.LatestRunForRef(ctx, "pr/9")
	assert.Error(t, err)
}
