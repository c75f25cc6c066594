// Package extract converts HTML into LLM-ready markdown.
// It keeps headings, paragraphs, list items and code blocks and discards
// chrome such as scripts, styles, navigation and footers.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelector lists the elements whose text is worth keeping, in
// document order.
const contentSelector = "h1, h2, h3, h4, p, li, pre, code"

// Markdown parses an HTML document and renders its readable content as
// markdown. Scripts, styles, navigation, headers and footers are removed
// before extraction.
func Markdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, noscript, svg").Remove()

	var lines []string
	doc.Find(contentSelector).Each(func(_ int, sel *goquery.Selection) {
		// Skip code nested inside pre; the pre node carries the text.
		if sel.Is("code") && sel.ParentsFiltered("pre").Length() > 0 {
			return
		}

		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}

		switch goquery.NodeName(sel) {
		case "h1":
			lines = append(lines, "\n# "+text+"\n")
		case "h2":
			lines = append(lines, "\n## "+text+"\n")
		case "h3":
			lines = append(lines, "\n### "+text+"\n")
		case "h4":
			lines = append(lines, "\n#### "+text+"\n")
		case "li":
			lines = append(lines, "- "+text)
		case "pre", "code":
			lines = append(lines, "\n```\n"+text+"\n```\n")
		default:
			lines = append(lines, text)
		}
	})

	return strings.Join(lines, "\n"), nil
}
