// Package handler provides the HTTP handlers for incoming webhooks.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/review-pilot/internal/config"
	"github.com/sevigo/review-pilot/internal/core"
)

// Pull request actions that trigger a review automatically.
var reviewedActions = map[string]bool{
	"opened":      true,
	"synchronize": true,
	"reopened":    true,
}

// WebhookHandler processes incoming webhooks from GitHub.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given configuration and dispatcher.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle validates and routes GitHub webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.cfg.GitHubWebhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.PullRequestEvent:
		h.handlePullRequest(r.Context(), w, e)
	case *github.IssueCommentEvent:
		h.handleIssueComment(r.Context(), w, e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", github.WebHookType(r))
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

// handlePullRequest queues a review when a pull request is opened or its head
// moves.
func (h *WebhookHandler) handlePullRequest(ctx context.Context, w http.ResponseWriter, event *github.PullRequestEvent) {
	if !reviewedActions[event.GetAction()] {
		h.logger.Debug("ignoring pull request action", "action", event.GetAction())
		_, _ = fmt.Fprint(w, "Action ignored")
		return
	}

	req, err := core.RequestFromPullRequestEvent(event)
	if err != nil {
		h.logger.Debug("ignoring pull request event", "reason", err.Error())
		_, _ = fmt.Fprint(w, "Event ignored")
		return
	}

	h.dispatch(ctx, w, req)
}

// handleIssueComment queues a review when someone posts the review command on
// a pull request.
func (h *WebhookHandler) handleIssueComment(ctx context.Context, w http.ResponseWriter, event *github.IssueCommentEvent) {
	req, err := core.RequestFromIssueComment(event)
	if err != nil {
		h.logger.Debug("ignoring issue comment", "reason", err.Error(), "repo", event.GetRepo().GetFullName())
		_, _ = fmt.Fprint(w, "Comment ignored")
		return
	}

	h.dispatch(ctx, w, req)
}

func (h *WebhookHandler) dispatch(ctx context.Context, w http.ResponseWriter, req core.ReviewRequest) {
	if err := h.dispatcher.Dispatch(ctx, req); err != nil {
		h.logger.Error("failed to dispatch review job", "error", err, "ref", req.SourceRef)
		http.Error(w, "Failed to start review job", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("review job dispatched", "ref", req.SourceRef)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Review job accepted")
}
