package extract

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// TotalPages returns the highest numeric page link in the pager, or 1 when
// the pager is missing or shows no numeric links. Labels such as "..." are
// skipped.
func TotalPages(doc *goquery.Document) int {
	total := 1
	doc.Find(selectorPager).First().Find(selectorPageLink).Each(func(_ int, link *goquery.Selection) {
		n, err := strconv.Atoi(text(link))
		if err != nil {
			return
		}
		if n > total {
			total = n
		}
	})
	return total
}
