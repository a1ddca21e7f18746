package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotatePatchNumbersNewSide(t *testing.T) {
	patch := "@@ -1,3 +1,4 @@\n context\n-removed\n+added one\n+added two\n tail"

	annotated := AnnotatePatch(patch)
	lines := strings.Split(annotated, "\n")
	require.Len(t, lines, 6)

	assert.True(t, strings.HasSuffix(lines[0], "@@ -1,3 +1,4 @@"))
	assert.Equal(t, "    1  context", lines[1])
	assert.Equal(t, "      -removed", lines[2])
	assert.Equal(t, "    2 +added one", lines[3])
	assert.Equal(t, "    3 +added two", lines[4])
	assert.Equal(t, "    4  tail", lines[5])
}

func TestAnnotatePatchMultipleHunks(t *testing.T) {
	patch := "@@ -1 +1 @@\n+first\n@@ -10,2 +20,2 @@\n second\n+third"

	annotated := AnnotatePatch(patch)
	assert.Contains(t, annotated, "    1 +first")
	assert.Contains(t, annotated, "   20  second")
	assert.Contains(t, annotated, "   21 +third")
}

func TestAnnotatePatchMalformedHunkHeader(t *testing.T) {
	patch := "@@ not a real header @@\n+orphan line"

	annotated := AnnotatePatch(patch)
	// Lines under an unparseable hunk keep an empty prefix instead of a bogus number.
	assert.Contains(t, annotated, "      +orphan line")
}

func TestValidCommentLines(t *testing.T) {
	lines := ValidCommentLines(samplePatch)

	for _, want := range []int{10, 11, 12, 13, 14, 15} {
		_, ok := lines[want]
		assert.True(t, ok, "line %d should be postable", want)
	}
	_, ok := lines[9]
	assert.False(t, ok)
	_, ok = lines[16]
	assert.False(t, ok)
}

func TestValidCommentLinesMalformedHunk(t *testing.T) {
	lines := ValidCommentLines("@@ broken @@\n+something")
	assert.Empty(t, lines)
}
