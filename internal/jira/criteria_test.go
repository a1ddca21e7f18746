package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCriteriaSection(t *testing.T) {
	description := `Implement silent token refresh.

Acceptance Criteria:
- tokens refresh 60s before expiry
- refresh failures log out the session
* concurrent refreshes collapse into one request

Notes:
- unrelated bullet that must not leak in`

	criteria := ParseCriteria(description)
	assert.Equal(t, []string{
		"tokens refresh 60s before expiry",
		"refresh failures log out the session",
		"concurrent refreshes collapse into one request",
	}, criteria)
}

func TestParseCriteriaInlineHeader(t *testing.T) {
	criteria := ParseCriteria("AC: reject empty tokens")
	assert.Equal(t, []string{"reject empty tokens"}, criteria)
}

func TestParseCriteriaNumberedBullets(t *testing.T) {
	description := `Definition of Done
1. endpoint returns 401 on bad token
2) audit log entry is written`

	criteria := ParseCriteria(description)
	assert.Equal(t, []string{
		"endpoint returns 401 on bad token",
		"audit log entry is written",
	}, criteria)
}

func TestParseCriteriaFallbackToAnyBullets(t *testing.T) {
	description := `Some ticket without a header.
- do the thing
- test the thing`

	criteria := ParseCriteria(description)
	assert.Equal(t, []string{"do the thing", "test the thing"}, criteria)
}

func TestParseCriteriaNone(t *testing.T) {
	assert.Empty(t, ParseCriteria("prose only, no structure at all"))
	assert.Empty(t, ParseCriteria(""))
}
