package kml

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips html markup from a description. Text without tags is
// returned trimmed but otherwise untouched.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	var lines []string
	dom.Find("body").Contents().Each(func(i int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n")
}
