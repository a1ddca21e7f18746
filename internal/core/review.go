// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"strings"
	"time"
)

// ReviewRequest identifies one pull request to review. It is created once at
// the entry point and never mutated afterwards.
type ReviewRequest struct {
	// SourceRef is the full pull request URL,
	// e.g. https://github.com/acme/billing/pull/42.
	SourceRef string
}

// FileDiff is one changed file inside a ChangeSet.
type FileDiff struct {
	Path      string
	Status    string // added, modified, removed, renamed
	Patch     string // unified diff hunks for this file
	Additions int
	Deletions int
}

// ChangeSet is the pull request under review: the diff plus its metadata.
// It is fetched exactly once per run and treated as read-only afterwards.
type ChangeSet struct {
	Ref         string
	Owner       string
	Repo        string
	Number      int
	Title       string
	Description string
	Author      string
	HeadSHA     string
	Labels      []string
	Files       []FileDiff
	Metadata    map[string]string
}

// FullName returns the owner/repo form used in logs and storage keys.
func (c *ChangeSet) FullName() string {
	return c.Owner + "/" + c.Repo
}

// MetadataReviewConfig is the ChangeSet.Metadata key under which the code-host
// adapter stores the repository's raw .review-pilot.yml, when it has one.
const MetadataReviewConfig = "review_config"

// TicketContext carries the requirements side of a review: acceptance
// criteria and workflow status from the ticket tracker. Absence is a normal,
// non-error state.
type TicketContext struct {
	Key      string
	Summary  string
	Status   string
	Criteria []string
	Metadata map[string]string
}

// SourceMethod records which resolution tier produced a DocContext.
type SourceMethod string

const (
	SourceDirect   SourceMethod = "direct"
	SourceSemantic SourceMethod = "semantic"
	SourceKeyword  SourceMethod = "keyword"
)

// DocContext is a single piece of retrieved documentation. Confidence is
// meaningful only when SourceMethod is SourceSemantic; HasConfidence guards
// against reading a zero value as a real score.
type DocContext struct {
	ID            string
	Title         string
	Body          string
	SourceMethod  SourceMethod
	Confidence    float64
	HasConfidence bool
	UpdatedAt     time.Time
}

// Decision is the overall outcome of a review.
type Decision string

const (
	DecisionApprove        Decision = "APPROVE"
	DecisionRequestChanges Decision = "REQUEST_CHANGES"
	DecisionComment        Decision = "COMMENT"
)

// ParseDecision normalizes a decision string coming from the model.
func ParseDecision(s string) (Decision, bool) {
	switch Decision(strings.ToUpper(strings.TrimSpace(s))) {
	case DecisionApprove:
		return DecisionApprove, true
	case DecisionRequestChanges:
		return DecisionRequestChanges, true
	case DecisionComment:
		return DecisionComment, true
	}
	return "", false
}

// ReviewComment is one piece of feedback anchored to a file and, when Line is
// set, to a line on the new side of the diff. Line == 0 means file-level.
type ReviewComment struct {
	FilePath string
	Line     int
	Severity string // Low, Medium, High, Critical
	Body     string
}

// Critical reports whether the comment carries the highest severity.
func (c ReviewComment) Critical() bool {
	return strings.EqualFold(strings.TrimSpace(c.Severity), "critical")
}

// ReviewVerdict is the complete review produced by the verdict stage.
// It is immutable once constructed; the posting stage only reads it.
type ReviewVerdict struct {
	Decision Decision
	Summary  string
	Comments []ReviewComment
}

// HasCritical reports whether any comment is critical, which forces the
// decision up to REQUEST_CHANGES before posting.
func (v *ReviewVerdict) HasCritical() bool {
	for _, c := range v.Comments {
		if c.Critical() {
			return true
		}
	}
	return false
}
