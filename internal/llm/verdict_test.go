package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/review-pilot/internal/core"
)

const samplePatch = `@@ -10,4 +10,6 @@ func login() {
 	token := issue()
-	return token
+	if token == "" {
+		return "", errInvalid
+	}
+	return token, nil
 }`

func sampleChangeSet() *core.ChangeSet {
	return &core.ChangeSet{
		Title: "Harden login",
		Files: []core.FileDiff{
			{Path: "auth/login.go", Status: "modified", Patch: samplePatch},
		},
	}
}

func TestParseVerdictPlainJSON(t *testing.T) {
	raw := `{"decision": "APPROVE", "summary": "Looks solid.", "comments": []}`

	verdict, err := ParseVerdict(raw, sampleChangeSet())
	require.NoError(t, err)
	assert.Equal(t, core.DecisionApprove, verdict.Decision)
	assert.Equal(t, "Looks solid.", verdict.Summary)
	assert.Empty(t, verdict.Comments)
}

func TestParseVerdictStripsCodeFence(t *testing.T) {
	raw := "Here is my verdict:\n```json\n" +
		`{"decision": "COMMENT", "summary": "A few notes.", "comments": [` +
		`{"file_path": "auth/login.go", "line": 11, "severity": "low", "body": "nit: naming"}]}` +
		"\n```\nHope this helps!"

	verdict, err := ParseVerdict(raw, sampleChangeSet())
	require.NoError(t, err)
	assert.Equal(t, core.DecisionComment, verdict.Decision)
	require.Len(t, verdict.Comments, 1)
	assert.Equal(t, "Low", verdict.Comments[0].Severity)
	assert.Equal(t, 11, verdict.Comments[0].Line)
}

func TestParseVerdictRepairsBadEscapes(t *testing.T) {
	raw := `{"decision": "COMMENT", "summary": "Path C:\src is wrong.", "comments": []}`

	verdict, err := ParseVerdict(raw, sampleChangeSet())
	require.NoError(t, err)
	assert.Contains(t, verdict.Summary, `C:\src`)
}

func TestParseVerdictFoldsUnpostableLines(t *testing.T) {
	raw := `{"decision": "COMMENT", "summary": "Summary.", "comments": [
		{"file_path": "auth/login.go", "line": 11, "severity": "Medium", "body": "on a real line"},
		{"file_path": "auth/login.go", "line": 500, "severity": "High", "body": "outside the diff"},
		{"file_path": "missing.go", "line": 3, "severity": "Low", "body": "unknown file"}]}`

	verdict, err := ParseVerdict(raw, sampleChangeSet())
	require.NoError(t, err)
	require.Len(t, verdict.Comments, 1)
	assert.Equal(t, 11, verdict.Comments[0].Line)
	assert.Contains(t, verdict.Summary, "auth/login.go:500")
	assert.Contains(t, verdict.Summary, "missing.go:3")
}

func TestParseVerdictKeepsFileLevelComments(t *testing.T) {
	raw := `{"decision": "COMMENT", "summary": "Summary.", "comments": [
		{"file_path": "auth/login.go", "line": 0, "severity": "Low", "body": "file-level note"}]}`

	verdict, err := ParseVerdict(raw, sampleChangeSet())
	require.NoError(t, err)
	require.Len(t, verdict.Comments, 1)
	assert.Equal(t, 0, verdict.Comments[0].Line)
}

func TestParseVerdictEscalatesCriticalApproval(t *testing.T) {
	raw := `{"decision": "APPROVE", "summary": "Fine, except one thing.", "comments": [
		{"file_path": "auth/login.go", "line": 11, "severity": "Critical", "body": "token leaks into logs"}]}`

	verdict, err := ParseVerdict(raw, sampleChangeSet())
	require.NoError(t, err)
	assert.Equal(t, core.DecisionRequestChanges, verdict.Decision,
		"an approval with a critical finding must be escalated")
}

func TestParseVerdictRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"no json at all",
		`{"decision": "MAYBE", "summary": "?", "comments": []}`,
		`{"decision": "APPROVE", "summary": "   ", "comments": []}`,
	} {
		_, err := ParseVerdict(raw, sampleChangeSet())
		require.Error(t, err, "raw: %s", raw)
		assert.True(t, core.IsGeneration(err), "expected generation error for %q", raw)
	}
}

func TestFallbackVerdict(t *testing.T) {
	verdict := FallbackVerdict("  the raw analysis text  ")
	assert.Equal(t, core.DecisionComment, verdict.Decision)
	assert.Equal(t, "the raw analysis text", verdict.Summary)
	assert.Empty(t, verdict.Comments)
}
