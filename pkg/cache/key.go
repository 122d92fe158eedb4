package cache

import (
	"strconv"
)

// Key identifies a cached result page.
type Key struct {
	// Query is the search text as received; it is compared byte for byte.
	Query string

	// Page is the 1-based result page.
	Page int
}

// String generates a deterministic key string.
// Format: search:<page>:<query>
//
// The page comes first so a query containing ':' cannot collide with
// another key.
func (k Key) String() string {
	return "search:" + strconv.Itoa(k.Page) + ":" + k.Query
}
