package jira

import (
	"strings"
)

// Section headers people actually use for acceptance criteria, matched
// case-insensitively against trimmed lines.
var criteriaHeaders = []string{
	"acceptance criteria",
	"ac:",
	"definition of done",
}

// ParseCriteria extracts acceptance criteria bullets from a ticket
// description. It scans for a criteria section header and collects the
// `-`/`*`/numbered bullets that follow, stopping at the next blank-line
// separated section. Without a header, top-level bullets anywhere in the
// description are used as a fallback.
func ParseCriteria(description string) []string {
	lines := strings.Split(description, "\n")

	if criteria := criteriaAfterHeader(lines); len(criteria) > 0 {
		return criteria
	}
	return allBullets(lines)
}

func criteriaAfterHeader(lines []string) []string {
	var criteria []string
	inSection := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lowered := strings.ToLower(trimmed)

		if !inSection {
			for _, header := range criteriaHeaders {
				if strings.HasPrefix(lowered, header) {
					inSection = true
					// "AC: first criterion" carries one inline.
					rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(trimmed[len(header):]), ":"))
					if rest != "" {
						if item := bulletText(rest); item != "" {
							rest = item
						}
						criteria = append(criteria, rest)
					}
					break
				}
			}
			continue
		}

		if trimmed == "" {
			if len(criteria) > 0 {
				break
			}
			continue
		}

		if item := bulletText(trimmed); item != "" {
			criteria = append(criteria, item)
		} else if len(criteria) > 0 {
			// A non-bullet line ends the section.
			break
		}
	}

	return criteria
}

func allBullets(lines []string) []string {
	var criteria []string
	for _, line := range lines {
		if item := bulletText(strings.TrimSpace(line)); item != "" {
			criteria = append(criteria, item)
		}
	}
	return criteria
}

// bulletText strips a bullet prefix and returns the item text, or "" when
// the line is not a bullet.
func bulletText(line string) string {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	// Numbered bullets: "1. text", "2) text".
	for i, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		if i > 0 && (r == '.' || r == ')') {
			return strings.TrimSpace(line[i+1:])
		}
		break
	}
	return ""
}
