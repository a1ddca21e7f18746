// Package stub provides fixture-backed implementations of the external
// capabilities, so the whole pipeline runs offline with deterministic data.
package stub

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sevigo/review-pilot/internal/core"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

// NewToolset loads every fixture once and returns a fully wired toolset.
func NewToolset(logger *slog.Logger) (core.Toolset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tickets, err := loadTickets()
	if err != nil {
		return core.Toolset{}, err
	}
	docs, err := loadDocs()
	if err != nil {
		return core.Toolset{}, err
	}
	cs, err := loadChangeSet()
	if err != nil {
		return core.Toolset{}, err
	}

	return core.Toolset{
		Code:    &CodeHost{changeSet: cs, logger: logger},
		Tickets: &TicketSystem{tickets: tickets},
		Docs:    &KnowledgeBase{docs: docs},
	}, nil
}

// CodeHost serves one fixture pull request regardless of the requested ref
// and logs the review instead of posting it anywhere.
type CodeHost struct {
	changeSet core.ChangeSet
	logger    *slog.Logger
}

var _ core.CodeHost = (*CodeHost)(nil)

func (c *CodeHost) FetchChangeSet(_ context.Context, ref string) (*core.ChangeSet, error) {
	cs := c.changeSet
	if ref != "" {
		cs.Ref = ref
	}
	return &cs, nil
}

func (c *CodeHost) PostResults(_ context.Context, cs *core.ChangeSet, verdict *core.ReviewVerdict) error {
	c.logger.Info("stub review posted",
		"pr", cs.FullName(),
		"decision", verdict.Decision,
		"comments", len(verdict.Comments),
	)
	for _, comment := range verdict.Comments {
		c.logger.Info("stub review comment",
			"file", comment.FilePath, "line", comment.Line,
			"severity", comment.Severity, "body", comment.Body)
	}
	return nil
}

func (c *CodeHost) PostFailureNotice(_ context.Context, _ *core.ChangeSet, ref, detail string) error {
	c.logger.Warn("stub failure notice", "ref", ref, "detail", detail)
	return nil
}

func (c *CodeHost) SetStatus(context.Context, *core.ChangeSet, core.CheckState) error {
	return nil
}

// TicketSystem serves tickets from the fixture file by key.
type TicketSystem struct {
	tickets map[string]core.TicketContext
}

var _ core.TicketSystem = (*TicketSystem)(nil)

func (t *TicketSystem) FetchTicket(_ context.Context, key string) (*core.TicketContext, error) {
	ticket, ok := t.tickets[key]
	if !ok {
		return nil, core.NotFoundf("ticket %s is not in the fixtures", key)
	}
	return &ticket, nil
}

// KnowledgeBase serves documents from the fixture file. Keyword search is a
// case-insensitive token overlap over title and body, which is crude but
// deterministic.
type KnowledgeBase struct {
	docs map[string]core.DocContext
}

var _ core.KnowledgeBase = (*KnowledgeBase)(nil)

func (k *KnowledgeBase) FetchDocument(_ context.Context, id string) (*core.DocContext, error) {
	doc, ok := k.docs[id]
	if !ok {
		return nil, core.NotFoundf("document %s is not in the fixtures", id)
	}
	return &doc, nil
}

func (k *KnowledgeBase) SearchKeyword(_ context.Context, query string, limit int) ([]core.DocContext, error) {
	if limit <= 0 {
		limit = 10
	}

	type scored struct {
		doc  core.DocContext
		hits int
	}
	var candidates []scored
	for _, doc := range k.docs {
		haystack := strings.ToLower(doc.Title + " " + doc.Body)
		hits := 0
		for _, token := range strings.Fields(strings.ToLower(query)) {
			if strings.Contains(haystack, token) {
				hits++
			}
		}
		if hits > 0 {
			candidates = append(candidates, scored{doc: doc, hits: hits})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].hits != candidates[j].hits {
			return candidates[i].hits > candidates[j].hits
		}
		return candidates[i].doc.ID < candidates[j].doc.ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]core.DocContext, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.doc)
	}
	return out, nil
}

// Documents returns every fixture document as an indexable unit, for seeding
// the in-memory semantic index at startup.
func (k *KnowledgeBase) Documents() []core.IndexedDocument {
	out := make([]core.IndexedDocument, 0, len(k.docs))
	for _, doc := range k.docs {
		out = append(out, core.IndexedDocument{
			ID:        doc.ID,
			Title:     doc.Title,
			Content:   doc.Body,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type ticketFixture struct {
	Key      string            `json:"key"`
	Summary  string            `json:"summary"`
	Status   string            `json:"status"`
	Criteria []string          `json:"criteria"`
	Metadata map[string]string `json:"metadata"`
}

type docFixture struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

type changeSetFixture struct {
	Ref         string   `json:"ref"`
	Owner       string   `json:"owner"`
	Repo        string   `json:"repo"`
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	HeadSHA     string   `json:"head_sha"`
	Labels      []string `json:"labels"`
	Files       []struct {
		Path      string `json:"path"`
		Status    string `json:"status"`
		Patch     string `json:"patch"`
		Additions int    `json:"additions"`
		Deletions int    `json:"deletions"`
	} `json:"files"`
}

func loadTickets() (map[string]core.TicketContext, error) {
	var fixtures []ticketFixture
	if err := loadFixture("fixtures/tickets.json", &fixtures); err != nil {
		return nil, err
	}
	tickets := make(map[string]core.TicketContext, len(fixtures))
	for _, f := range fixtures {
		tickets[f.Key] = core.TicketContext{
			Key:      f.Key,
			Summary:  f.Summary,
			Status:   f.Status,
			Criteria: f.Criteria,
			Metadata: f.Metadata,
		}
	}
	return tickets, nil
}

func loadDocs() (map[string]core.DocContext, error) {
	var fixtures []docFixture
	if err := loadFixture("fixtures/docs.json", &fixtures); err != nil {
		return nil, err
	}
	docs := make(map[string]core.DocContext, len(fixtures))
	for _, f := range fixtures {
		docs[f.ID] = core.DocContext{
			ID:        f.ID,
			Title:     f.Title,
			Body:      f.Body,
			UpdatedAt: f.UpdatedAt,
		}
	}
	return docs, nil
}

func loadChangeSet() (core.ChangeSet, error) {
	var f changeSetFixture
	if err := loadFixture("fixtures/changeset.json", &f); err != nil {
		return core.ChangeSet{}, err
	}
	cs := core.ChangeSet{
		Ref:         f.Ref,
		Owner:       f.Owner,
		Repo:        f.Repo,
		Number:      f.Number,
		Title:       f.Title,
		Description: f.Description,
		Author:      f.Author,
		HeadSHA:     f.HeadSHA,
		Labels:      f.Labels,
		Metadata:    map[string]string{},
	}
	for _, file := range f.Files {
		cs.Files = append(cs.Files, core.FileDiff{
			Path:      file.Path,
			Status:    file.Status,
			Patch:     file.Patch,
			Additions: file.Additions,
			Deletions: file.Deletions,
		})
	}
	return cs, nil
}

func loadFixture(name string, out any) error {
	raw, err := fixturesFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	return nil
}
