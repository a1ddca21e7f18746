package stub

import (
	"context"
	"fmt"
	"strings"

	"github.com/sevigo/review-pilot/internal/core"
)

// Analyzer produces a canned but context-aware review, so offline runs
// exercise the whole pipeline without a model behind them.
type Analyzer struct{}

// NewAnalyzer returns the deterministic analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

var _ core.Analyzer = (*Analyzer)(nil)

func (a *Analyzer) Analyze(_ context.Context, cs *core.ChangeSet, ticket *core.TicketContext, doc *core.DocContext) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Reviewed %d changed file(s) in %s.\n", len(cs.Files), cs.FullName())

	if ticket != nil {
		fmt.Fprintf(&sb, "Checked against %s (%d acceptance criteria).\n", ticket.Key, len(ticket.Criteria))
	} else {
		sb.WriteString("No ticket context was available.\n")
	}
	if doc != nil {
		fmt.Fprintf(&sb, "Consulted %q via %s retrieval.\n", doc.Title, doc.SourceMethod)
	} else {
		sb.WriteString("No documentation context was available.\n")
	}

	sb.WriteString("The change looks coherent; see the per-file notes.")
	return sb.String(), nil
}

func (a *Analyzer) GenerateVerdict(_ context.Context, cs *core.ChangeSet, analysis string) (*core.ReviewVerdict, error) {
	verdict := &core.ReviewVerdict{
		Decision: core.DecisionComment,
		Summary:  analysis,
	}
	for _, f := range cs.Files {
		verdict.Comments = append(verdict.Comments, core.ReviewComment{
			FilePath: f.Path,
			Severity: "Low",
			Body:     fmt.Sprintf("Reviewed %s (%s): no blocking issues found.", f.Path, f.Status),
		})
	}
	return verdict, nil
}
