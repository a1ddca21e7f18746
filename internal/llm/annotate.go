package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderRegex = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// AnnotatePatch prefixes every line of a unified diff with its line number on
// the new side of the change, so the model can anchor comments to postable
// lines. Removed lines and malformed hunks keep an empty prefix.
func AnnotatePatch(patch string) string {
	var sb strings.Builder
	currentLine := -1

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			matches := hunkHeaderRegex.FindStringSubmatch(line)
			if len(matches) >= 2 {
				start, err := strconv.Atoi(matches[1])
				if err != nil {
					currentLine = -1
				} else {
					currentLine = start
				}
			} else {
				currentLine = -1
			}
			sb.WriteString("      " + line + "\n")
			continue
		}

		if currentLine == -1 {
			sb.WriteString("      " + line + "\n")
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, " "):
			fmt.Fprintf(&sb, "%5d %s\n", currentLine, line)
			currentLine++
		default:
			sb.WriteString("      " + line + "\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// ValidCommentLines extracts the line numbers a review comment can attach to:
// the lines present on the new side of the diff.
func ValidCommentLines(patch string) map[int]struct{} {
	validLines := make(map[int]struct{})
	currentLine := -1

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			matches := hunkHeaderRegex.FindStringSubmatch(line)
			if len(matches) >= 2 {
				start, err := strconv.Atoi(matches[1])
				if err != nil {
					currentLine = -1
					continue
				}
				currentLine = start
			}
			continue
		}

		if currentLine == -1 {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, " "):
			validLines[currentLine] = struct{}{}
			currentLine++
		case strings.HasPrefix(line, "-"):
			continue
		}
	}

	return validLines
}
