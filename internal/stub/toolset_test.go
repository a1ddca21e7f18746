package stub

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-pilot/internal/core"
)

func newToolset(t *testing.T) core.Toolset {
	t.Helper()
	ts, err := NewToolset(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return ts
}

func TestFixtureTicket(t *testing.T) {
	ts := newToolset(t)

	ticket, err := ts.Tickets.FetchTicket(context.Background(), "AUTH-101")
	require.NoError(t, err)
	assert.Equal(t, "Silent token refresh for the web client", ticket.Summary)
	assert.Len(t, ticket.Criteria, 5)

	_, err = ts.Tickets.FetchTicket(context.Background(), "NOPE-1")
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func TestFixtureChangeSetReferencesFixtureContext(t *testing.T) {
	ts := newToolset(t)

	cs, err := ts.Code.FetchChangeSet(context.Background(), "https://github.com/acme/webapp/pull/42")
	require.NoError(t, err)
	assert.Contains(t, cs.Title, "AUTH-101")
	assert.Contains(t, cs.Description, "doc: 10001")
	require.NotEmpty(t, cs.Files)
	assert.Contains(t, cs.Files[0].Patch, "@@")
}

func TestKeywordSearchRanksByOverlap(t *testing.T) {
	ts := newToolset(t)

	docs, err := ts.Docs.SearchKeyword(context.Background(), "token refresh rotate", 2)
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Equal(t, "Authentication Architecture", docs[0].Title)
}

func TestKeywordSearchNoOverlap(t *testing.T) {
	ts := newToolset(t)

	docs, err := ts.Docs.SearchKeyword(context.Background(), "zzzz qqqq", 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestEmbedderIsDeterministicAndNormalized(t *testing.T) {
	e := NewEmbedder()

	a, err := e.EmbedQuery(context.Background(), "silent token refresh")
	require.NoError(t, err)
	b, err := e.EmbedQuery(context.Background(), "silent token refresh")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestDocumentsForSeeding(t *testing.T) {
	ts := newToolset(t)

	kb, ok := ts.Docs.(*KnowledgeBase)
	require.True(t, ok)

	docs := kb.Documents()
	require.Len(t, docs, 3)
	assert.Equal(t, "10001", docs[0].ID)
	assert.NotEmpty(t, docs[0].Content)
}
