// Package confluence binds the knowledge-base capability to a
// Confluence-style REST API.
package confluence

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

// Client implements core.KnowledgeBase against the Confluence content API.
type Client struct {
	baseURL    string
	user       string
	apiToken   string
	spaceKey   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a knowledge-base client. spaceKey scopes keyword searches
// and may be empty for instance-wide search.
func NewClient(baseURL, user, apiToken, spaceKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		user:       user,
		apiToken:   apiToken,
		spaceKey:   spaceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

var _ core.KnowledgeBase = (*Client)(nil)

type pageResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Version struct {
		When time.Time `json:"when"`
	} `json:"version"`
}

type searchResponse struct {
	Results []pageResponse `json:"results"`
}

// FetchDocument loads one page by id with its storage-format body rendered
// down to plain text.
func (c *Client) FetchDocument(ctx context.Context, id string) (*core.DocContext, error) {
	endpoint := fmt.Sprintf("%s/rest/api/content/%s?expand=body.storage,version",
		c.baseURL, url.PathEscape(id))

	var page pageResponse
	if err := c.getJSON(ctx, endpoint, "document "+id, &page); err != nil {
		return nil, err
	}

	return c.docFromPage(page), nil
}

// SearchKeyword runs a CQL text search and returns up to limit candidates,
// ordered by the server's relevance ranking. An empty result set is a valid
// answer.
func (c *Client) SearchKeyword(ctx context.Context, query string, limit int) ([]core.DocContext, error) {
	if limit <= 0 {
		limit = 10
	}

	cql := fmt.Sprintf(`type=page AND text ~ %q`, query)
	if c.spaceKey != "" {
		cql = fmt.Sprintf(`space=%q AND %s`, c.spaceKey, cql)
	}

	endpoint := fmt.Sprintf("%s/rest/api/content/search?cql=%s&limit=%d&expand=body.storage,version",
		c.baseURL, url.QueryEscape(cql), limit)

	var result searchResponse
	if err := c.getJSON(ctx, endpoint, "keyword search", &result); err != nil {
		return nil, err
	}

	docs := make([]core.DocContext, 0, len(result.Results))
	for _, page := range result.Results {
		docs = append(docs, *c.docFromPage(page))
	}

	c.logger.Debug("keyword search finished", "query", query, "hits", len(docs))
	return docs, nil
}

// AllPages walks the space page-by-page for batch ingestion.
func (c *Client) AllPages(ctx context.Context, pageSize int) ([]core.DocContext, error) {
	if pageSize <= 0 {
		pageSize = 50
	}

	var docs []core.DocContext
	start := 0
	for {
		endpoint := fmt.Sprintf("%s/rest/api/content?type=page&start=%d&limit=%d&expand=body.storage,version",
			c.baseURL, start, pageSize)
		if c.spaceKey != "" {
			endpoint += "&spaceKey=" + url.QueryEscape(c.spaceKey)
		}

		var result searchResponse
		if err := c.getJSON(ctx, endpoint, "page listing", &result); err != nil {
			return nil, err
		}
		if len(result.Results) == 0 {
			break
		}

		for _, page := range result.Results {
			docs = append(docs, *c.docFromPage(page))
		}
		start += len(result.Results)
	}

	return docs, nil
}

func (c *Client) docFromPage(page pageResponse) *core.DocContext {
	body, err := HTMLToText(page.Body.Storage.Value)
	if err != nil {
		c.logger.Warn("could not strip page markup, using raw body", "page_id", page.ID, "error", err)
		body = page.Body.Storage.Value
	}
	return &core.DocContext{
		ID:        page.ID,
		Title:     page.Title,
		Body:      body,
		UpdatedAt: page.Version.When,
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint, what string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", what, err)
	}
	req.SetBasicAuth(c.user, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.Transient(fmt.Errorf("%s request failed: %w", what, err))
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp, what); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", what, err)
	}
	return nil
}

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
