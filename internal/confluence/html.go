package confluence

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Elements whose text should end up on its own line.
var blockElements = []string{"p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "tr"}

// HTMLToText flattens Confluence storage-format markup into plain text
// suitable for prompts and embedding. Block elements become separate lines,
// scripts and styles are dropped, and runs of blank lines collapse.
func HTMLToText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()

	for _, tag := range blockElements {
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			s.AfterHtml("\n")
		})
	}
	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
