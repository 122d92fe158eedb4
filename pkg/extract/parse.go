package extract

import (
	"fmt"
	"io"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/uzgidro/lex-parser/pkg/document"
)

// Parse reads an HTML page into a document tree.
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Result assembles a result page from a parsed document. page is echoed as
// CurrentPage regardless of what the markup shows.
func Result(doc *goquery.Document, origin *url.URL, page int) document.SearchResult {
	return document.SearchResult{
		Documents:   Records(doc, origin),
		CurrentPage: page,
		TotalPages:  TotalPages(doc),
	}
}
