package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sevigo/review-pilot/internal/core"
)

// rawVerdict mirrors the JSON shape the verdict prompt demands.
type rawVerdict struct {
	Decision string       `json:"decision"`
	Summary  string       `json:"summary"`
	Comments []rawComment `json:"comments"`
}

type rawComment struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Severity string `json:"severity"`
	Body     string `json:"body"`
}

// ParseVerdict turns raw model output into a ReviewVerdict. It strips code
// fences, locates the first JSON object, repairs common escape mistakes once,
// and normalizes comments against the change set: comments on lines that do
// not exist on the new side of the diff are folded into the summary instead
// of being dropped. Unusable output yields a GenerationError.
func ParseVerdict(raw string, cs *core.ChangeSet) (*core.ReviewVerdict, error) {
	jsonString, err := extractJSON(raw)
	if err != nil {
		// One repair pass for invalid escape sequences, then try again.
		jsonString, err = extractJSON(sanitizeJSON(raw))
		if err != nil {
			return nil, core.Generationf("model output contained no JSON object: %v", err)
		}
	}

	var rv rawVerdict
	if err := json.Unmarshal([]byte(jsonString), &rv); err != nil {
		return nil, core.Generationf("model JSON did not match the verdict shape: %v", err)
	}

	decision, ok := core.ParseDecision(rv.Decision)
	if !ok {
		return nil, core.Generationf("model returned unknown decision %q", rv.Decision)
	}
	if strings.TrimSpace(rv.Summary) == "" {
		return nil, core.Generationf("model returned an empty summary")
	}

	verdict := &core.ReviewVerdict{
		Decision: decision,
		Summary:  strings.TrimSpace(rv.Summary),
	}

	valid := validLinesByFile(cs)
	var folded []string
	for _, c := range rv.Comments {
		if strings.TrimSpace(c.Body) == "" {
			continue
		}
		comment := core.ReviewComment{
			FilePath: c.FilePath,
			Line:     c.Line,
			Severity: normalizeSeverity(c.Severity),
			Body:     strings.TrimSpace(c.Body),
		}
		if comment.Line > 0 && !lineIsPostable(valid, comment.FilePath, comment.Line) {
			folded = append(folded, fmt.Sprintf("- `%s:%d`: %s", comment.FilePath, comment.Line, comment.Body))
			continue
		}
		verdict.Comments = append(verdict.Comments, comment)
	}

	if len(folded) > 0 {
		verdict.Summary += "\n\n**Additional findings** (outside the visible diff):\n" +
			strings.Join(folded, "\n")
	}

	// A critical finding must never ride in under an approval.
	if verdict.Decision == core.DecisionApprove && verdict.HasCritical() {
		verdict.Decision = core.DecisionRequestChanges
	}

	return verdict, nil
}

// FallbackVerdict wraps a raw analysis into a plain COMMENT verdict. It is
// the last resort when the model cannot produce parseable JSON but did
// produce prose worth posting.
func FallbackVerdict(analysis string) *core.ReviewVerdict {
	return &core.ReviewVerdict{
		Decision: core.DecisionComment,
		Summary:  strings.TrimSpace(analysis),
	}
}

func validLinesByFile(cs *core.ChangeSet) map[string]map[int]struct{} {
	if cs == nil {
		return nil
	}
	valid := make(map[string]map[int]struct{}, len(cs.Files))
	for _, f := range cs.Files {
		if f.Patch == "" {
			continue
		}
		valid[f.Path] = ValidCommentLines(f.Patch)
	}
	return valid
}

func lineIsPostable(valid map[string]map[int]struct{}, path string, line int) bool {
	lines, ok := valid[path]
	if !ok {
		return false
	}
	_, ok = lines[line]
	return ok
}

func normalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return "Critical"
	case "high":
		return "High"
	case "medium":
		return "Medium"
	case "low":
		return "Low"
	default:
		return "Medium"
	}
}

// extractJSON pulls the first complete JSON object out of raw model output,
// tolerating markdown fences and prose around it.
func extractJSON(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if strings.Contains(raw, "```") {
		start := strings.Index(raw, "```")
		end := strings.LastIndex(raw, "```")
		if end > start {
			inner := strings.TrimSpace(raw[start+3 : end])
			if strings.HasPrefix(strings.ToLower(inner), "json") {
				inner = strings.TrimSpace(inner[4:])
			}
			raw = inner
		}
	}

	startBrace := strings.Index(raw, "{")
	if startBrace == -1 {
		return "", fmt.Errorf("response did not contain a JSON object")
	}
	raw = raw[startBrace:]

	decoder := json.NewDecoder(strings.NewReader(raw))
	var msg any
	if err := decoder.Decode(&msg); err != nil {
		return "", fmt.Errorf("failed to decode JSON from response: %w", err)
	}
	clean, _ := json.Marshal(msg)
	return string(clean), nil
}

// sanitizeJSON fixes the invalid escape sequences models like to emit, e.g.
// \s inside Windows paths, by escaping the stray backslash.
func sanitizeJSON(input string) string {
	if json.Valid([]byte(input)) {
		return input
	}

	var sb strings.Builder
	sb.Grow(len(input) + 20)

	runes := []rune(input)
	length := len(runes)

	for i := 0; i < length; i++ {
		char := runes[i]
		if char != '\\' {
			sb.WriteRune(char)
			continue
		}
		if i+1 >= length {
			sb.WriteString(`\\`)
			break
		}
		switch next := runes[i+1]; next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			sb.WriteRune(char)
			sb.WriteRune(next)
			i++
		default:
			sb.WriteString(`\\`)
		}
	}

	return sb.String()
}
