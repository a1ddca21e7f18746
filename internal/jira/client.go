// Package jira binds the ticket-system capability to a Jira-style REST API.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sevigo/review-pilot/internal/core"
)

// Client implements core.TicketSystem against the Jira REST v2 API using
// basic auth (email + API token).
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a ticket client for baseURL, e.g. https://acme.atlassian.net.
func NewClient(baseURL, email, apiToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		email:      email,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

var _ core.TicketSystem = (*Client)(nil)

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Status      struct {
			Name string `json:"name"`
		} `json:"status"`
		Labels   []string `json:"labels"`
		Priority struct {
			Name string `json:"name"`
		} `json:"priority"`
	} `json:"fields"`
}

// FetchTicket loads one issue and parses its acceptance criteria out of the
// description.
func (c *Client) FetchTicket(ctx context.Context, key string) (*core.TicketContext, error) {
	endpoint := fmt.Sprintf("%s/rest/api/2/issue/%s?fields=summary,description,status,labels,priority",
		c.baseURL, url.PathEscape(key))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ticket request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.Transient(fmt.Errorf("ticket request failed: %w", err))
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp, "ticket "+key); err != nil {
		return nil, err
	}

	var issue issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return nil, fmt.Errorf("failed to decode ticket %s: %w", key, err)
	}

	ticket := &core.TicketContext{
		Key:      issue.Key,
		Summary:  issue.Fields.Summary,
		Status:   issue.Fields.Status.Name,
		Criteria: ParseCriteria(issue.Fields.Description),
		Metadata: map[string]string{},
	}
	if issue.Fields.Priority.Name != "" {
		ticket.Metadata["priority"] = issue.Fields.Priority.Name
	}
	for i, label := range issue.Fields.Labels {
		ticket.Metadata["label_"+strconv.Itoa(i)] = label
	}

	c.logger.Debug("fetched ticket", "key", ticket.Key, "criteria", len(ticket.Criteria))
	return ticket, nil
}

// classifyStatus maps an HTTP status into the pipeline's error taxonomy.
// Rate limits honor the Retry-After header as the reset hint.
func classifyStatus(resp *http.Response, what string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return core.Authf("%s: status %d", what, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return core.NotFoundf("%s: status %d", what, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return core.RateLimited(fmt.Errorf("%s: rate limited", what), retryAfter(resp))
	case resp.StatusCode >= 500:
		return core.Transientf("%s: status %d", what, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", what, resp.StatusCode, body)
	}
}

func retryAfter(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
