package post

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var badStrings = []string{"​"}

func removeStrings(s string, replace ...string) string {
	for _, r := range replace {
		s = strings.ReplaceAll(s, r, "")
	}
	return s
}

// HTMLToText flattens the HTML fragments the calendar API returns in event
// descriptions into plain text suitable for a chat message.
func HTMLToText(s string) string {
	s = removeStrings(s, badStrings...)
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
