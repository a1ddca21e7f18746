package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-pilot/internal/config"
	"github.com/sevigo/review-pilot/internal/core"
)

const webhookSecret = "hush"

type fakeDispatcher struct {
	reqs []core.ReviewRequest
	err  error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, req core.ReviewRequest) error {
	if f.err != nil {
		return f.err
	}
	f.reqs = append(f.reqs, req)
	return nil
}

func signedRequest(t *testing.T, eventType, body string) *http.Request {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	_, _ = mac.Write([]byte(body))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func newHandler(dispatcher core.JobDispatcher) *WebhookHandler {
	cfg := &config.Config{GitHubWebhookSecret: webhookSecret}
	return NewWebhookHandler(cfg, dispatcher, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWebhookDispatchesOpenedPullRequest(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHandler(d)

	body := `{"action":"opened","pull_request":{"html_url":"https://github.com/acme/billing/pull/42"}}`
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", body))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, d.reqs, 1)
	assert.Equal(t, "https://github.com/acme/billing/pull/42", d.reqs[0].SourceRef)
}

func TestWebhookIgnoresClosedPullRequest(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHandler(d)

	body := `{"action":"closed","pull_request":{"html_url":"https://github.com/acme/billing/pull/42"}}`
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, d.reqs)
}

func TestWebhookDispatchesReviewCommand(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHandler(d)

	body := `{
		"issue": {"number": 7, "pull_request": {"url": "https://api.github.com/repos/acme/billing/pulls/7"}},
		"comment": {"body": "/review"},
		"repository": {"full_name": "acme/billing"}
	}`
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "issue_comment", body))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, d.reqs, 1)
	assert.Equal(t, "https://github.com/acme/billing/pull/7", d.reqs[0].SourceRef)
}

func TestWebhookIgnoresOrdinaryComment(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHandler(d)

	body := `{
		"issue": {"number": 7, "pull_request": {"url": "https://api.github.com/repos/acme/billing/pulls/7"}},
		"comment": {"body": "lgtm"},
		"repository": {"full_name": "acme/billing"}
	}`
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "issue_comment", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, d.reqs)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	d := &fakeDispatcher{}
	h := newHandler(d)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")

	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, d.reqs)
}

func TestWebhookSurfacesQueueBackpressure(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("job queue is full")}
	h := newHandler(d)

	body := `{"action":"opened","pull_request":{"html_url":"https://github.com/acme/billing/pull/42"}}`
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", body))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
