package cache

import (
	"time"

	"github.com/uzgidro/lex-parser/pkg/document"
)

// Entry is a cached result page.
type Entry struct {
	// Result is the stored page.
	Result document.SearchResult

	// CachedAt is when the entry was inserted.
	CachedAt time.Time

	// seq orders entries inserted at the same instant.
	seq uint64
}

// Age returns how long the entry has been cached at now.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// olderThan reports whether e was inserted before other.
func (e *Entry) olderThan(other *Entry) bool {
	if e.CachedAt.Equal(other.CachedAt) {
		return e.seq < other.seq
	}
	return e.CachedAt.Before(other.CachedAt)
}
