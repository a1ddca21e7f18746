package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// reviewCommand is the comment body that triggers a re-review of an open
// pull request.
const reviewCommand = "/review"

// RequestFromPullRequestEvent turns a raw GitHub PullRequestEvent into a
// ReviewRequest. It acts as an anti-corruption layer: the payload is checked
// for the fields a run needs before anything is queued.
func RequestFromPullRequestEvent(event *github.PullRequestEvent) (ReviewRequest, error) {
	pr := event.GetPullRequest()
	if pr == nil {
		return ReviewRequest{}, fmt.Errorf("event carries no pull request")
	}

	if url := pr.GetHTMLURL(); url != "" {
		return ReviewRequest{SourceRef: url}, nil
	}

	repo := event.GetRepo()
	if repo.GetFullName() == "" || pr.GetNumber() <= 0 {
		return ReviewRequest{}, fmt.Errorf("repository or pull request number is missing from the event")
	}
	return ReviewRequest{
		SourceRef: fmt.Sprintf("https://github.com/%s/pull/%d", repo.GetFullName(), pr.GetNumber()),
	}, nil
}

// RequestFromIssueComment turns an IssueCommentEvent into a ReviewRequest.
// Only the review command on a pull request qualifies; everything else is
// rejected so the dispatcher never sees noise.
func RequestFromIssueComment(event *github.IssueCommentEvent) (ReviewRequest, error) {
	if !event.GetIssue().IsPullRequest() {
		return ReviewRequest{}, fmt.Errorf("comment is not on a pull request")
	}

	if !strings.EqualFold(strings.TrimSpace(event.GetComment().GetBody()), reviewCommand) {
		return ReviewRequest{}, fmt.Errorf("comment is not a review command")
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetFullName() == "" {
		return ReviewRequest{}, fmt.Errorf("repository information is missing from the event")
	}

	prNumber := event.GetIssue().GetNumber()
	if prNumber <= 0 {
		return ReviewRequest{}, fmt.Errorf("invalid pull request number: %d", prNumber)
	}

	return ReviewRequest{
		SourceRef: fmt.Sprintf("https://github.com/%s/pull/%d", repo.GetFullName(), prNumber),
	}, nil
}
