package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/review-pilot/internal/core"
	"github.com/sevigo/review-pilot/internal/gitutil"
)

// Marker tags every comment this tool posts, so a later run can find and
// supersede its own output without touching human comments.
const Marker = "<!-- review-pilot -->"

const (
	checkRunName     = "Review Pilot"
	reviewConfigPath = ".review-pilot.yml"
)

// Adapter implements core.CodeHost against the GitHub API.
type Adapter struct {
	client Client
	logger *slog.Logger

	mu        sync.Mutex
	checkRuns map[string]int64 // head SHA -> check run id
}

// NewAdapter wraps client as a core.CodeHost.
func NewAdapter(client Client, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		client:    client,
		logger:    logger,
		checkRuns: make(map[string]int64),
	}
}

var _ core.CodeHost = (*Adapter)(nil)

// FetchChangeSet loads the pull request behind ref, its changed files, and
// the repository's optional review config.
func (a *Adapter) FetchChangeSet(ctx context.Context, ref string) (*core.ChangeSet, error) {
	owner, repo, number, err := gitutil.ParsePullRequestURL(ref)
	if err != nil {
		return nil, core.Invalidf("cannot parse pull request reference %q: %v", ref, err)
	}

	pr, err := a.client.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, mapError(err)
	}

	files, err := a.client.ListChangedFiles(ctx, owner, repo, number)
	if err != nil {
		return nil, mapError(err)
	}

	cs := &core.ChangeSet{
		Ref:         ref,
		Owner:       owner,
		Repo:        repo,
		Number:      number,
		Title:       pr.GetTitle(),
		Description: pr.GetBody(),
		Author:      pr.GetUser().GetLogin(),
		HeadSHA:     pr.GetHead().GetSHA(),
		Metadata:    map[string]string{},
	}
	for _, label := range pr.Labels {
		cs.Labels = append(cs.Labels, label.GetName())
	}
	for _, f := range files {
		cs.Files = append(cs.Files, core.FileDiff{
			Path:      f.GetFilename(),
			Status:    f.GetStatus(),
			Patch:     f.GetPatch(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}

	// Per-repo review config is a nicety; a missing or broken file changes
	// nothing about the run.
	if raw, err := a.client.GetFileContent(ctx, owner, repo, reviewConfigPath, cs.HeadSHA); err == nil {
		cs.Metadata[core.MetadataReviewConfig] = raw
	} else {
		a.logger.Debug("no repository review config", "repo", owner+"/"+repo, "error", err)
	}

	return cs, nil
}

// PostResults supersedes any earlier bot comments, then publishes the verdict
// as one batched review call so a retried attempt never half-posts.
func (a *Adapter) PostResults(ctx context.Context, cs *core.ChangeSet, verdict *core.ReviewVerdict) error {
	a.deletePreviousComments(ctx, cs)

	var drafts []DraftReviewComment
	var fileLevel []string
	for _, c := range verdict.Comments {
		body := formatCommentBody(c)
		if c.Line > 0 {
			drafts = append(drafts, DraftReviewComment{Path: c.FilePath, Line: c.Line, Body: body})
			continue
		}
		fileLevel = append(fileLevel, fmt.Sprintf("**%s**\n%s", c.FilePath, body))
	}

	body := formatReviewBody(verdict, fileLevel)
	event := reviewEvent(verdict.Decision)

	if err := a.client.CreateReview(ctx, cs.Owner, cs.Repo, cs.Number, event, body, drafts); err != nil {
		return mapError(err)
	}
	return nil
}

// PostFailureNotice leaves one marked comment explaining the failed run. It is
// best effort and never retried by the caller.
func (a *Adapter) PostFailureNotice(ctx context.Context, cs *core.ChangeSet, ref, detail string) error {
	owner, repo, number := "", "", 0
	if cs != nil {
		owner, repo, number = cs.Owner, cs.Repo, cs.Number
	} else {
		var err error
		owner, repo, number, err = gitutil.ParsePullRequestURL(ref)
		if err != nil {
			return fmt.Errorf("cannot address failure notice: %w", err)
		}
	}

	body := fmt.Sprintf("⚠️ **Automated review failed**\n\n%s\n\n%s", detail, Marker)
	if err := a.client.CreateComment(ctx, owner, repo, number, body); err != nil {
		return mapError(err)
	}
	return nil
}

// SetStatus mirrors run progress onto a check run. Failures are logged and
// swallowed; status is never load-bearing.
func (a *Adapter) SetStatus(ctx context.Context, cs *core.ChangeSet, state core.CheckState) error {
	if cs == nil || cs.HeadSHA == "" {
		return nil
	}

	switch state {
	case core.CheckInProgress:
		checkRun, err := a.client.CreateCheckRun(ctx, cs.Owner, cs.Repo, github.CreateCheckRunOptions{
			Name:    checkRunName,
			HeadSHA: cs.HeadSHA,
			Status:  github.Ptr("in_progress"),
		})
		if err != nil {
			return mapError(err)
		}
		a.mu.Lock()
		a.checkRuns[cs.HeadSHA] = checkRun.GetID()
		a.mu.Unlock()
		return nil

	case core.CheckSuccess, core.CheckFailure:
		a.mu.Lock()
		checkRunID, ok := a.checkRuns[cs.HeadSHA]
		delete(a.checkRuns, cs.HeadSHA)
		a.mu.Unlock()
		if !ok {
			return nil
		}

		_, err := a.client.UpdateCheckRun(ctx, cs.Owner, cs.Repo, checkRunID, github.UpdateCheckRunOptions{
			Status:      github.Ptr("completed"),
			Conclusion:  github.Ptr(string(state)),
			CompletedAt: &github.Timestamp{Time: time.Now()},
		})
		if err != nil {
			return mapError(err)
		}
		return nil
	}

	return nil
}

func (a *Adapter) deletePreviousComments(ctx context.Context, cs *core.ChangeSet) {
	ids, err := a.client.ListBotComments(ctx, cs.Owner, cs.Repo, cs.Number, Marker)
	if err != nil {
		a.logger.Warn("could not list previous bot comments", "error", err)
		return
	}
	for _, id := range ids {
		if err := a.client.DeleteComment(ctx, cs.Owner, cs.Repo, id); err != nil {
			a.logger.Warn("could not delete previous bot comment", "comment_id", id, "error", err)
		}
	}
}

func reviewEvent(decision core.Decision) string {
	switch decision {
	case core.DecisionApprove:
		return "APPROVE"
	case core.DecisionRequestChanges:
		return "REQUEST_CHANGES"
	default:
		return "COMMENT"
	}
}

func formatCommentBody(c core.ReviewComment) string {
	if c.Severity == "" {
		return c.Body
	}
	return fmt.Sprintf("%s **%s**\n\n%s", severityEmoji(c.Severity), c.Severity, c.Body)
}

func formatReviewBody(verdict *core.ReviewVerdict, fileLevel []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s Verdict: %s\n\n", verdictIcon(verdict.Decision), verdict.Decision)
	sb.WriteString(verdict.Summary)

	if len(fileLevel) > 0 {
		sb.WriteString("\n\n---\n")
		sb.WriteString(strings.Join(fileLevel, "\n\n"))
	}

	counts := map[string]int{}
	for _, c := range verdict.Comments {
		counts[c.Severity]++
	}
	if len(verdict.Comments) > 0 {
		sb.WriteString("\n\n| Severity | Count |\n|----------|-------|\n")
		for _, sev := range []string{"Critical", "High", "Medium", "Low"} {
			if n := counts[sev]; n > 0 {
				fmt.Fprintf(&sb, "| %s %s | %d |\n", severityEmoji(sev), sev, n)
			}
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(Marker)
	return sb.String()
}

func verdictIcon(decision core.Decision) string {
	switch decision {
	case core.DecisionApprove:
		return "✅"
	case core.DecisionRequestChanges:
		return "🚫"
	default:
		return "💬"
	}
}

func severityEmoji(severity string) string {
	switch severity {
	case "Critical":
		return "🔴"
	case "High":
		return "🟠"
	case "Medium":
		return "🟡"
	case "Low":
		return "🟢"
	default:
		return "⚪"
	}
}
