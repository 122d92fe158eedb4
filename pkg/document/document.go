// Package document defines the records and result pages returned by the
// lex.uz search proxy.
package document

// Status is the binary validity marker of a legal act.
type Status string

const (
	// StatusActive marks an act that is currently in force.
	StatusActive Status = "active"

	// StatusInactive is the fallback for every other icon state, including a missing icon.
	StatusInactive Status = "inactive"
)

// Document is a single search hit.
type Document struct {
	// Number is the row label shown by the registry, nil when absent or not a positive integer.
	Number *int `json:"number"`

	// Title is the link text, empty when the row has no link.
	Title string `json:"title"`

	// URL is absolute when the registry emitted a root-relative href.
	URL string `json:"url"`

	// Badge is the short document-kind label (e.g. "Zakon"), nil when absent.
	Badge *string `json:"badge"`

	Status Status `json:"status"`
}

// SearchResult is one page of hits. It is the unit stored in the cache.
type SearchResult struct {
	Documents []Document `json:"documents"`

	// CurrentPage echoes the requested page, even if the registry rendered another one.
	CurrentPage int `json:"current_page"`

	// TotalPages is at least 1.
	TotalPages int `json:"total_pages"`
}

// Clone returns a copy whose document slice and optional fields do not
// alias the receiver.
func (r SearchResult) Clone() SearchResult {
	out := SearchResult{
		CurrentPage: r.CurrentPage,
		TotalPages:  r.TotalPages,
	}
	if r.Documents == nil {
		return out
	}
	out.Documents = make([]Document, len(r.Documents))
	for i, d := range r.Documents {
		if d.Number != nil {
			n := *d.Number
			d.Number = &n
		}
		if d.Badge != nil {
			b := *d.Badge
			d.Badge = &b
		}
		out.Documents[i] = d
	}
	return out
}

// IsActive reports whether the document is in force.
func (d Document) IsActive() bool {
	return d.Status == StatusActive
}
