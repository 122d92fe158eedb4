// Package extract turns lex.uz search result pages into typed records.
//
// Everything here is a pure function over a parsed document: no I/O, no
// state. Markup anomalies (a row without a number, a missing badge or icon,
// a page without a results table) degrade to documented defaults instead of
// failing, because an empty result set is a valid answer from the registry.
//
// The markup contract the selectors rely on:
//
//	div.refind__table > table                  results container
//	tr.dd-table__main-item                     one result row
//	span.dd-table__main-item_number            numeric row label
//	a.lx_link                                  title and document link
//	span.badge                                 document kind
//	i.fa.status_code_y                         "in force" icon
//	table#ucFoundActsControl_rptPaging         pager
//	a.btn_pgn_extend                           page link
//	input[name=__VIEWSTATE] (and friends)      postback state
package extract
