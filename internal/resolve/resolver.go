// Package resolve turns a change set into at most one piece of documentation
// context, trying direct lookup, semantic search, and keyword search in order.
package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/review-pilot/internal/core"
)

// Options bound the search tiers. Zero values fall back to the defaults.
type Options struct {
	TopK           int
	MinScore       float64
	QueryMaxLength int
}

const (
	defaultTopK     = 3
	defaultMinScore = 0.7
	defaultQueryLen = 1000
)

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = defaultTopK
	}
	if o.MinScore <= 0 {
		o.MinScore = defaultMinScore
	}
	if o.QueryMaxLength <= 0 {
		o.QueryMaxLength = defaultQueryLen
	}
	return o
}

// Input is everything one resolution has to work with. DocID may be empty;
// the change set never is.
type Input struct {
	DocID     string
	ChangeSet *core.ChangeSet
}

// strategy is one tier of the fallback chain. applies gates the tier without
// consuming its budget; resolve returns (nil, nil) when the tier has nothing,
// which falls through to the next one.
type strategy struct {
	name    string
	applies func(in Input) bool
	resolve func(ctx context.Context, in Input, query string) (*core.DocContext, error)
}

// Resolver walks the fallback chain: direct id lookup, then semantic search
// over the index, then keyword search, then nothing. Every tier failure
// degrades to the next tier; Resolve itself never returns an error.
type Resolver struct {
	docs   core.KnowledgeBase
	index  core.SemanticIndex
	opts   Options
	logger *slog.Logger

	chain []strategy
}

// NewResolver builds a Resolver. index may be nil when no semantic index is
// configured; docs may be nil when no knowledge base is configured at all, in
// which case every resolution yields no context.
func NewResolver(docs core.KnowledgeBase, index core.SemanticIndex, opts Options, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		docs:   docs,
		index:  index,
		opts:   opts.withDefaults(),
		logger: logger,
	}
	r.chain = []strategy{
		{
			name:    "direct",
			applies: func(in Input) bool { return in.DocID != "" && r.docs != nil },
			resolve: r.resolveDirect,
		},
		{
			name:    "semantic",
			applies: func(Input) bool { return r.index != nil && r.docs != nil },
			resolve: r.resolveSemantic,
		},
		{
			name:    "keyword",
			applies: func(Input) bool { return r.docs != nil },
			resolve: r.resolveKeyword,
		},
	}
	return r
}

// Resolve runs the chain and returns the first tier's answer, or nil when no
// tier produced one. The derived query is shared by the semantic and keyword
// tiers.
func (r *Resolver) Resolve(ctx context.Context, in Input) *core.DocContext {
	query := r.queryFor(in.ChangeSet)

	for _, s := range r.chain {
		if !s.applies(in) {
			continue
		}
		doc, err := s.resolve(ctx, in, query)
		if err != nil {
			r.logger.Warn("doc context tier failed, falling through",
				"tier", s.name, "error", err)
			continue
		}
		if doc != nil {
			r.logger.Info("doc context resolved",
				"tier", s.name, "doc_id", doc.ID, "title", doc.Title)
			return doc
		}
	}

	r.logger.Info("no doc context available, proceeding without")
	return nil
}

func (r *Resolver) queryFor(cs *core.ChangeSet) string {
	if cs == nil {
		return DeriveQuery("", "", nil, r.opts.QueryMaxLength)
	}
	paths := make([]string, 0, len(cs.Files))
	for _, f := range cs.Files {
		paths = append(paths, f.Path)
	}
	return DeriveQuery(cs.Title, cs.Description, paths, r.opts.QueryMaxLength)
}

func (r *Resolver) resolveDirect(ctx context.Context, in Input, _ string) (*core.DocContext, error) {
	doc, err := r.docs.FetchDocument(ctx, in.DocID)
	if err != nil {
		return nil, fmt.Errorf("direct lookup of %s: %w", in.DocID, err)
	}
	doc.SourceMethod = core.SourceDirect
	doc.Confidence = 0
	doc.HasConfidence = false
	return doc, nil
}

func (r *Resolver) resolveSemantic(ctx context.Context, _ Input, query string) (*core.DocContext, error) {
	matches, err := r.index.Search(ctx, query, r.opts.TopK, r.opts.MinScore)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	if len(matches) == 0 {
		// No candidate cleared the threshold; not an error, just nothing.
		return nil, nil
	}

	best := matches[0]
	doc, err := r.docs.FetchDocument(ctx, best.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch of semantic match %s: %w", best.ID, err)
	}
	doc.SourceMethod = core.SourceSemantic
	doc.Confidence = best.Score
	doc.HasConfidence = true
	return doc, nil
}

func (r *Resolver) resolveKeyword(ctx context.Context, _ Input, query string) (*core.DocContext, error) {
	candidates, err := r.docs.SearchKeyword(ctx, query, 1)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	doc := candidates[0]
	doc.SourceMethod = core.SourceKeyword
	doc.Confidence = 0
	doc.HasConfidence = false
	return &doc, nil
}
