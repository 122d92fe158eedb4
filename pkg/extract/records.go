package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/uzgidro/lex-parser/pkg/document"
)

// Records extracts the result rows in document order. A page without the
// results container or its table yields an empty, non-nil slice.
//
// Root-relative links are resolved against origin; anything else is kept
// as found. A nil origin leaves every href untouched.
func Records(doc *goquery.Document, origin *url.URL) []document.Document {
	records := []document.Document{}

	table := doc.Find(selectorResultsContainer).First().Find(selectorResultsTable).First()
	if table.Length() == 0 {
		return records
	}

	table.Find(selectorResultRow).Each(func(_ int, row *goquery.Selection) {
		records = append(records, record(row, origin))
	})
	return records
}

func record(row *goquery.Selection, origin *url.URL) document.Document {
	doc := document.Document{
		Number: number(row.Find(selectorNumber).First()),
		Status: status(row.Find(selectorStatusIcon).First()),
	}

	if link := row.Find(selectorLink).First(); link.Length() > 0 {
		doc.Title = text(link)
		doc.URL = absoluteURL(strings.TrimSpace(link.AttrOr("href", "")), origin)
	}

	if badge := row.Find(selectorBadge).First(); badge.Length() > 0 {
		label := text(badge)
		doc.Badge = &label
	}

	return doc
}

func number(sel *goquery.Selection) *int {
	if sel.Length() == 0 {
		return nil
	}
	n, err := strconv.Atoi(text(sel))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func status(icon *goquery.Selection) document.Status {
	if icon.HasClass(activeIconClass) {
		return document.StatusActive
	}
	return document.StatusInactive
}

// absoluteURL prefixes root-relative hrefs ("/docs/123") with the site
// origin. Protocol-relative ("//host/x") and absolute URLs pass through.
func absoluteURL(href string, origin *url.URL) string {
	if origin == nil || !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
		return href
	}
	return origin.Scheme + "://" + origin.Host + href
}
