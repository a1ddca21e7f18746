// Package gitutil provides helpers for pull request references and for
// fetching documentation repositories.
package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var prURLRegex = regexp.MustCompile(`^(?:https?://)?github\.com/([^/\s]+)/([^/\s]+)/pull/(\d+)$`)

// ParsePullRequestURL parses a pull request URL into owner, repo, and number.
// Supported format: https://github.com/{owner}/{repo}/pull/{number}, scheme
// optional. Anything else is a malformed reference.
func ParsePullRequestURL(url string) (owner, repo string, prNumber int, err error) {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")

	matches := prURLRegex.FindStringSubmatch(url)
	if len(matches) != 4 {
		return "", "", 0, fmt.Errorf("invalid pull request URL format: %s", url)
	}

	owner = matches[1]
	repo = matches[2]

	prNumber, err = strconv.Atoi(matches[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid PR number %q: %w", matches[3], err)
	}

	return owner, repo, prNumber, nil
}
