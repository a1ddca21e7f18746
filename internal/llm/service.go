// Package llm turns change sets into review analyses and structured verdicts
// through a configured language model.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/goframe/llms"

	"github.com/sevigo/review-pilot/internal/config"
	"github.com/sevigo/review-pilot/internal/core"
)

const (
	generateTimeout = 5 * time.Minute

	// maxDiffLines bounds how much annotated diff goes into the prompt.
	maxDiffLines = 4000
)

// generator is the narrow slice of the model client the service needs.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type modelGenerator struct {
	model llms.Model
}

func (g *modelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.model.Call(ctx, prompt)
}

// Service implements core.Analyzer on top of a goframe model.
type Service struct {
	provider  ModelProvider
	promptMgr *PromptManager
	gen       generator
	logger    *slog.Logger
}

// NewService builds the review service for the given provider name
// ("ollama", "gemini", ...), which selects provider-specific prompt variants
// where they exist.
func NewService(provider string, promptMgr *PromptManager, model llms.Model, logger *slog.Logger) *Service {
	return newService(provider, promptMgr, &modelGenerator{model: model}, logger)
}

func newService(provider string, promptMgr *PromptManager, gen generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider:  ModelProvider(provider),
		promptMgr: promptMgr,
		gen:       gen,
		logger:    logger,
	}
}

var _ core.Analyzer = (*Service)(nil)

// Analyze produces the prose analysis of the change set with whatever
// optional context survived the fetch stages. Model failures come back as
// transient errors so the caller's retry budget applies.
func (s *Service) Analyze(ctx context.Context, cs *core.ChangeSet, ticket *core.TicketContext, doc *core.DocContext) (string, error) {
	reviewCfg := s.reviewConfigFor(cs)

	data := map[string]string{
		"Title":       cs.Title,
		"Author":      cs.Author,
		"Description": cs.Description,
		"TicketBlock": formatTicketBlock(ticket),
		"DocBlock":    formatDocBlock(doc),
		"Guidelines":  reviewCfg.GuidelineBlock(),
		"Diff":        s.buildDiffBlock(cs, reviewCfg),
	}

	prompt, err := s.promptMgr.Render(AnalyzePrompt, s.provider, data)
	if err != nil {
		return "", fmt.Errorf("failed to render analyze prompt: %w", err)
	}

	analysis, err := s.generateWithTimeout(ctx, prompt)
	if err != nil {
		return "", core.Transient(fmt.Errorf("analysis generation failed: %w", err))
	}
	if strings.TrimSpace(analysis) == "" {
		return "", core.Generationf("model returned an empty analysis")
	}
	return analysis, nil
}

// GenerateVerdict turns the analysis into a structured verdict.
func (s *Service) GenerateVerdict(ctx context.Context, cs *core.ChangeSet, analysis string) (*core.ReviewVerdict, error) {
	data := map[string]string{
		"Analysis": analysis,
		"FileList": formatFileList(cs),
	}

	prompt, err := s.promptMgr.Render(VerdictPrompt, s.provider, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render verdict prompt: %w", err)
	}

	raw, err := s.generateWithTimeout(ctx, prompt)
	if err != nil {
		return nil, core.Generationf("verdict generation failed: %v", err)
	}

	verdict, err := ParseVerdict(raw, cs)
	if err != nil {
		s.logger.Warn("failed to parse verdict JSON", "error", err)
		return nil, err
	}
	return verdict, nil
}

// generateWithTimeout wraps model generation with a hard timeout so a hung
// client can never stall the pipeline.
func (s *Service) generateWithTimeout(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := s.gen.Generate(ctx, prompt)
		select {
		case resultCh <- result{resp, err}:
		case <-ctx.Done():
		}
	}()

	select {
	case res := <-resultCh:
		return res.resp, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Service) reviewConfigFor(cs *core.ChangeSet) *config.ReviewConfig {
	raw, ok := cs.Metadata[core.MetadataReviewConfig]
	if !ok || raw == "" {
		return config.DefaultReviewConfig()
	}
	cfg, err := config.ParseReviewConfig([]byte(raw))
	if err != nil {
		s.logger.Warn("ignoring broken repository review config", "error", err)
		return config.DefaultReviewConfig()
	}
	return cfg
}

func (s *Service) buildDiffBlock(cs *core.ChangeSet, reviewCfg *config.ReviewConfig) string {
	var sb strings.Builder
	lines := 0

	for _, f := range cs.Files {
		if reviewCfg.Ignored(f.Path) {
			continue
		}
		if f.Patch == "" {
			fmt.Fprintf(&sb, "### %s (%s, no textual diff)\n\n", f.Path, f.Status)
			continue
		}

		annotated := AnnotatePatch(f.Patch)
		patchLines := strings.Count(annotated, "\n") + 1
		if lines+patchLines > maxDiffLines {
			fmt.Fprintf(&sb, "### %s (%s, omitted: diff budget exhausted)\n\n", f.Path, f.Status)
			continue
		}
		lines += patchLines

		fmt.Fprintf(&sb, "### %s (%s, +%d -%d)\n%s\n\n", f.Path, f.Status, f.Additions, f.Deletions, annotated)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatTicketBlock(ticket *core.TicketContext) string {
	if ticket == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s (status: %s)\n", ticket.Key, ticket.Summary, ticket.Status)
	if len(ticket.Criteria) > 0 {
		sb.WriteString("Acceptance criteria:\n")
		for _, c := range ticket.Criteria {
			sb.WriteString("- " + c + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatDocBlock(doc *core.DocContext) string {
	if doc == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (retrieved via %s", doc.Title, doc.SourceMethod)
	if doc.HasConfidence {
		fmt.Fprintf(&sb, ", similarity %.2f", doc.Confidence)
	}
	sb.WriteString(")\n\n")
	sb.WriteString(doc.Body)
	return sb.String()
}

func formatFileList(cs *core.ChangeSet) string {
	var sb strings.Builder
	for _, f := range cs.Files {
		fmt.Fprintf(&sb, "- %s (%s)\n", f.Path, f.Status)
	}
	return strings.TrimRight(sb.String(), "\n")
}
