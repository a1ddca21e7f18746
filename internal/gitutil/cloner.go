package gitutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Client fetches documentation repositories for batch ingestion.
type Client struct {
	Logger *slog.Logger
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Logger: logger}
}

// CloneTemp shallow-clones repoURL into a temporary directory and returns the
// path together with a cleanup function. branch may be empty for the remote
// default branch; token may be empty for public repositories.
func (c *Client) CloneTemp(ctx context.Context, repoURL, branch, token string) (string, func(), error) {
	if err := validateRepoURL(repoURL); err != nil {
		return "", nil, err
	}

	path, err := os.MkdirTemp("", "review-pilot-docs-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() {
		if removeErr := os.RemoveAll(path); removeErr != nil {
			c.Logger.Error("failed to remove temp docs repo", "path", path, "error", removeErr)
		}
	}

	opts := &git.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		SingleBranch: true,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}
	if token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: token}
	}

	c.Logger.InfoContext(ctx, "cloning documentation repository", "url", repoURL, "path", path)
	if _, err := git.PlainCloneContext(ctx, path, false, opts); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}

	return path, cleanup, nil
}

func validateRepoURL(repoURL string) error {
	// Local paths are allowed directly. file:// is intentionally unsupported.
	if !strings.Contains(repoURL, "://") {
		return nil
	}
	if !strings.HasPrefix(repoURL, "https://") && !strings.HasPrefix(repoURL, "http://") {
		return fmt.Errorf("invalid repository URL: %s", repoURL)
	}
	if _, err := url.Parse(repoURL); err != nil {
		return fmt.Errorf("failed to parse repository URL %q: %w", repoURL, err)
	}
	return nil
}
