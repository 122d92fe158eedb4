package cache

// OldestFirst bounds the store by evicting the entry with the oldest
// insertion time. Reads do not refresh an entry's position.
type OldestFirst struct {
	MaxEntries int
}

// NeedsEviction reports whether inserting a key requires making room first.
// Overwriting an existing key never does.
func (p OldestFirst) NeedsEviction(size int, newKey bool) bool {
	return newKey && size >= p.MaxEntries
}

// Victim returns the key of the oldest entry, or false for an empty store.
func (p OldestFirst) Victim(entries map[Key]*Entry) (Key, bool) {
	var (
		victim Key
		oldest *Entry
	)
	for k, e := range entries {
		if oldest == nil || e.olderThan(oldest) {
			victim, oldest = k, e
		}
	}
	return victim, oldest != nil
}
