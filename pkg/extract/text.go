package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// text returns the whitespace-normalised text content of every node in sel.
func text(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(n, &b)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func writeText(node *html.Node, b *strings.Builder) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		b.WriteString(node.Data)
		// keep adjacent inline elements from gluing words together
		b.WriteByte(' ')
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeText(child, b)
	}
}
