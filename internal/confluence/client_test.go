package confluence

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-pilot/internal/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTMLToText(t *testing.T) {
	markup := `<h1>Authentication Architecture</h1>
<p>All services validate tokens at the edge.</p>
<ul><li>tokens are short lived</li><li>refresh is silent</li></ul>
<script>alert("nope")</script>`

	text, err := HTMLToText(markup)
	require.NoError(t, err)

	assert.Equal(t, "Authentication Architecture\nAll services validate tokens at the edge.\ntokens are short lived\nrefresh is silent", text)
}

func TestFetchDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/content/12345", r.URL.Path)
		assert.Equal(t, "body.storage,version", r.URL.Query().Get("expand"))
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot@acme.dev", user)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "12345",
			"title": "Authentication Architecture",
			"body": {"storage": {"value": "<p>Token flow.</p><p>Edge validation.</p>"}},
			"version": {"when": "2026-02-01T10:00:00Z"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot@acme.dev", "token", "", testLogger())
	doc, err := c.FetchDocument(context.Background(), "12345")
	require.NoError(t, err)

	assert.Equal(t, "12345", doc.ID)
	assert.Equal(t, "Authentication Architecture", doc.Title)
	assert.Equal(t, "Token flow.\nEdge validation.", doc.Body)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), doc.UpdatedAt)
}

func TestFetchDocumentNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot@acme.dev", "token", "", testLogger())
	_, err := c.FetchDocument(context.Background(), "99999")
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func TestSearchKeywordScopedToSpace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/content/search", r.URL.Path)
		cql := r.URL.Query().Get("cql")
		assert.Contains(t, cql, `space="ENG"`)
		assert.Contains(t, cql, "token refresh")
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"id": "1", "title": "Token Refresh", "body": {"storage": {"value": "<p>a</p>"}}, "version": {"when": "2026-01-01T00:00:00Z"}},
			{"id": "2", "title": "Session Handling", "body": {"storage": {"value": "<p>b</p>"}}, "version": {"when": "2026-01-02T00:00:00Z"}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot@acme.dev", "token", "ENG", testLogger())
	docs, err := c.SearchKeyword(context.Background(), "token refresh", 2)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "Token Refresh", docs[0].Title)
	assert.Equal(t, "a", docs[0].Body)
}

func TestSearchKeywordEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot@acme.dev", "token", "", testLogger())
	docs, err := c.SearchKeyword(context.Background(), "nothing matches this", 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRateLimitCarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bot@acme.dev", "token", "", testLogger())
	_, err := c.FetchDocument(context.Background(), "1")
	require.Error(t, err)
	require.True(t, core.IsTransient(err))

	hint, ok := core.RetryAfterHint(err)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, hint)
}
