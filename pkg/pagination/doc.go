// Package pagination describes the postback contract the lex.uz search form
// uses to move between result pages.
//
// The registry renders page links as ASP.NET LinkButtons inside a repeater.
// Clicking one posts the whole form back with the hidden state fields the
// server rendered into the previous response, plus an event target naming
// the link that was clicked:
//
//	__EVENTTARGET        ucFoundActsControl$rptPaging$ctl00$lbPaging
//	__EVENTARGUMENT      (always empty)
//	__VIEWSTATE          echoed verbatim
//	__VIEWSTATEGENERATOR echoed verbatim
//	__EVENTVALIDATION    echoed verbatim
//
// Example usage:
//
//	state := extract.State(doc)
//	if !state.HasViewState() {
//		return client.ErrMissingUpstreamState
//	}
//	form := pagination.Form(state, 3)
//
// The package holds no state and performs no I/O.
package pagination
