package kreta

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/kreta-tools/go-kreta-bridge/internal/core/model"
)

// HomeworkText scrapes the plain text out of a homework body. Teachers write
// homework as an html fragment, usually a pile of <p>, <a> and <div> tags;
// calendar descriptions want just the words.
func HomeworkText(hw *model.Homework) string {
	return StripHTML(hw.Text)
}

// StripHTML extracts the text content of an html fragment, joining block
// texts with newlines. A fragment that fails to parse comes back verbatim,
// text is better than nothing.
func StripHTML(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return strings.Join(parts, "\n")
}
