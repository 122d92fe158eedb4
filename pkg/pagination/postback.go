package pagination

import (
	"fmt"
)

// Hidden form fields carried between postbacks.
const (
	FieldEventTarget        = "__EVENTTARGET"
	FieldEventArgument      = "__EVENTARGUMENT"
	FieldViewState          = "__VIEWSTATE"
	FieldViewStateGenerator = "__VIEWSTATEGENERATOR"
	FieldEventValidation    = "__EVENTVALIDATION"
)

// StateFields lists the server-issued fields in the order they are looked up.
var StateFields = []string{
	FieldViewState,
	FieldViewStateGenerator,
	FieldEventValidation,
}

// Naming template of the pager's link buttons:
// {container}${pager}$ctl{NN}${link}.
const (
	containerControl = "ucFoundActsControl"
	pagerControl     = "rptPaging"
	linkControl      = "lbPaging"

	// firstPostbackPage is the page addressed by repeater item ctl00.
	firstPostbackPage = 2
)

// PostbackState holds the hidden state fields found in a rendered form,
// keyed by field name. A field whose control is missing from the page is
// absent from the map.
type PostbackState map[string]string

// Get returns the value of a state field and whether its control was present.
func (s PostbackState) Get(field string) (string, bool) {
	v, ok := s[field]
	return v, ok
}

// HasViewState reports whether the primary state token is present and non-empty.
// Without it the server cannot reconstruct the form and ignores the postback.
func (s PostbackState) HasViewState() bool {
	v, ok := s[FieldViewState]
	return ok && v != ""
}

// EventTarget returns the control identifier that selects the given page.
// Page 2 maps to ctl00, page 3 to ctl01, and so on.
func EventTarget(page int) string {
	return fmt.Sprintf("%s$%s$ctl%02d$%s", containerControl, pagerControl, page-firstPostbackPage, linkControl)
}

// Form builds the postback body that navigates to page. Absent state fields
// are submitted empty.
func Form(state PostbackState, page int) map[string]string {
	form := map[string]string{
		FieldEventTarget:   EventTarget(page),
		FieldEventArgument: "",
	}
	for _, field := range StateFields {
		form[field] = state[field]
	}
	return form
}
