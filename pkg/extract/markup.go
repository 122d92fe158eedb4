package extract

// Selectors for the registry's result markup.
const (
	selectorResultsContainer = "div.refind__table"
	selectorResultsTable     = "table"
	selectorResultRow        = "tr.dd-table__main-item"
	selectorNumber           = "span.dd-table__main-item_number"
	selectorLink             = "a.lx_link"
	selectorBadge            = "span.badge"
	selectorStatusIcon       = "i.fa"
	selectorPager            = "table#ucFoundActsControl_rptPaging"
	selectorPageLink         = "a.btn_pgn_extend"

	// activeIconClass marks an act that is in force.
	activeIconClass = "status_code_y"
)
