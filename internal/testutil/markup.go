// Package testutil provides testing utilities for the lex.uz search proxy.
package testutil

import (
	"fmt"
	"html"
	"strings"
)

// Postback state values rendered by the fixtures.
const (
	ViewState          = "dDwxNTc2OTg0MDk7Oz4="
	ViewStateGenerator = "CA0B0334"
	EventValidation    = "/wEdAAIJAM6bBQk="
)

// Row is one result row of a rendered search page.
type Row struct {
	// Number is rendered inside the number span; empty leaves the cell blank.
	Number string

	// Title and Href render the primary link; both empty omit the link.
	Title string
	Href  string

	// Badge is omitted when empty.
	Badge string

	// IconClass is the status marker (e.g. "status_code_y"); empty omits the icon.
	IconClass string
}

// Page describes a search results page as the registry renders it.
type Page struct {
	Rows []Row

	// PageLinks are the pager labels; nil omits the pager table.
	PageLinks []string

	// State renders the three hidden postback fields.
	State bool

	// NoResults omits the results container entirely.
	NoResults bool
}

// HTML renders the page.
func (p Page) HTML() string {
	var b strings.Builder
	b.WriteString("<html><body><form method=\"post\" id=\"form1\">")
	if p.State {
		b.WriteString(StateHTML(ViewState, ViewStateGenerator, EventValidation))
	}
	b.WriteString("</form>")

	if !p.NoResults {
		b.WriteString(`<div class="refind__table"><table>`)
		for _, r := range p.Rows {
			b.WriteString(r.html())
		}
		b.WriteString("</table></div>")
	}

	if p.PageLinks != nil {
		b.WriteString(PagerHTML(p.PageLinks...))
	}

	b.WriteString("</body></html>")
	return b.String()
}

func (r Row) html() string {
	var b strings.Builder
	b.WriteString(`<tr class="dd-table__main-item"><td>`)
	if r.Number != "" {
		fmt.Fprintf(&b, `<span class="dd-table__main-item_number">%s</span>`, html.EscapeString(r.Number))
	}
	b.WriteString("</td><td>")
	if r.Title != "" || r.Href != "" {
		fmt.Fprintf(&b, `<a class="lx_link" href="%s">%s</a>`, html.EscapeString(r.Href), html.EscapeString(r.Title))
	}
	if r.Badge != "" {
		fmt.Fprintf(&b, ` <span class="badge">%s</span>`, html.EscapeString(r.Badge))
	}
	b.WriteString("</td><td>")
	if r.IconClass != "" {
		fmt.Fprintf(&b, `<i class="fa %s"></i>`, html.EscapeString(r.IconClass))
	}
	b.WriteString("</td></tr>")
	return b.String()
}

// StateHTML renders the hidden postback inputs.
func StateHTML(viewState, generator, validation string) string {
	return fmt.Sprintf(
		`<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="%s" />`+
			`<input type="hidden" name="__VIEWSTATEGENERATOR" id="__VIEWSTATEGENERATOR" value="%s" />`+
			`<input type="hidden" name="__EVENTVALIDATION" id="__EVENTVALIDATION" value="%s" />`,
		html.EscapeString(viewState), html.EscapeString(generator), html.EscapeString(validation),
	)
}

// PagerHTML renders the pager table with one link per label.
func PagerHTML(labels ...string) string {
	var b strings.Builder
	b.WriteString(`<table id="ucFoundActsControl_rptPaging"><tr>`)
	for i, label := range labels {
		fmt.Fprintf(&b,
			`<td><a id="ucFoundActsControl_rptPaging_lbPaging_%d" class="btn_pgn_extend" href="javascript:void(0)">%s</a></td>`,
			i, html.EscapeString(label))
	}
	b.WriteString("</tr></table>")
	return b.String()
}

// PageLabels returns "1".."n".
func PageLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprint(i + 1)
	}
	return labels
}
