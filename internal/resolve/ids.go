package resolve

import (
	"regexp"
	"strings"

	"github.com/sevigo/review-pilot/internal/core"
)

var ticketKeyRegex = regexp.MustCompile(`([A-Z][A-Z0-9]+-\d+)`)

// Doc references come in a few informal shapes people actually type into PR
// descriptions. First match wins.
var docIDRegexes = []*regexp.Regexp{
	regexp.MustCompile(`doc[:\s]+(\d+)`),
	regexp.MustCompile(`page[:\s]+id[:\s]+(\d+)`),
	regexp.MustCompile(`page[:\s]+(\d+)`),
}

// ExtractTicketKey finds a ticket key like AUTH-101 in the change set,
// checking the description before the labels. Returns "" when there is none;
// extraction never fails a run.
func ExtractTicketKey(cs *core.ChangeSet) string {
	if cs == nil {
		return ""
	}
	if m := ticketKeyRegex.FindStringSubmatch(cs.Description); len(m) > 1 {
		return m[1]
	}
	for _, label := range cs.Labels {
		if m := ticketKeyRegex.FindStringSubmatch(label); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// ExtractDocID finds an explicit documentation page reference in the change
// set description. Returns "" when there is none.
func ExtractDocID(cs *core.ChangeSet) string {
	if cs == nil {
		return ""
	}
	lowered := strings.ToLower(cs.Description)
	for _, re := range docIDRegexes {
		if m := re.FindStringSubmatch(lowered); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
