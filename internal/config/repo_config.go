package config

import (
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReviewConfig is the optional per-repository .review-pilot.yml. It is
// fetched from the pull request's head best-effort; a missing or broken file
// falls back to defaults.
type ReviewConfig struct {
	// Guidelines are extra instructions appended to the review prompt.
	Guidelines []string `yaml:"guidelines"`
	// IgnorePaths are glob patterns for files that should not be reviewed.
	IgnorePaths []string `yaml:"ignore_paths"`
}

// DefaultReviewConfig returns the config used when a repository has none.
func DefaultReviewConfig() *ReviewConfig {
	return &ReviewConfig{}
}

// ParseReviewConfig parses raw .review-pilot.yml content.
func ParseReviewConfig(data []byte) (*ReviewConfig, error) {
	cfg := DefaultReviewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse .review-pilot.yml: %w", err)
	}
	return cfg, nil
}

// Ignored reports whether filePath matches any ignore pattern. Patterns match
// the full path, the base name, or act as directory prefixes when they end
// with a slash.
func (c *ReviewConfig) Ignored(filePath string) bool {
	for _, pattern := range c.IgnorePaths {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.HasSuffix(pattern, "/") {
			if strings.HasPrefix(filePath, pattern) {
				return true
			}
			continue
		}
		if ok, err := path.Match(pattern, filePath); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pattern, path.Base(filePath)); err == nil && ok {
			return true
		}
	}
	return false
}

// GuidelineBlock renders the guidelines as one prompt-ready block, empty when
// there are none.
func (c *ReviewConfig) GuidelineBlock() string {
	if len(c.Guidelines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, g := range c.Guidelines {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(g)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
