package resolve

import (
	"path"
	"strings"
)

// fallbackQuery is used when a change set carries no usable text at all.
const fallbackQuery = "code review documentation guidelines"

// maxQueryFiles caps how many modified file names feed the derived query.
const maxQueryFiles = 5

// DeriveQuery builds the search text both search tiers share: title,
// description, and the first few modified file basenames, whitespace
// collapsed and truncated to maxLen runes.
func DeriveQuery(title, description string, filePaths []string, maxLen int) string {
	parts := make([]string, 0, 2+maxQueryFiles)
	if t := strings.TrimSpace(title); t != "" {
		parts = append(parts, t)
	}
	if d := strings.TrimSpace(description); d != "" {
		parts = append(parts, d)
	}
	for i, p := range filePaths {
		if i >= maxQueryFiles {
			break
		}
		if base := path.Base(strings.TrimSpace(p)); base != "" && base != "." {
			parts = append(parts, base)
		}
	}

	query := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if query == "" {
		return fallbackQuery
	}

	if maxLen > 0 {
		runes := []rune(query)
		if len(runes) > maxLen {
			query = string(runes[:maxLen])
		}
	}
	return query
}
