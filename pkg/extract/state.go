package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/uzgidro/lex-parser/pkg/pagination"
)

// State copies the hidden postback fields out of a rendered form. A control
// that exists without a value attribute yields an empty string; a control
// that does not exist is left out of the map. State never fails.
func State(doc *goquery.Document) pagination.PostbackState {
	state := pagination.PostbackState{}
	for _, field := range pagination.StateFields {
		input := doc.Find(`input[name="` + field + `"]`).First()
		if input.Length() == 0 {
			continue
		}
		state[field] = input.AttrOr("value", "")
	}
	return state
}
