// Package cache provides the bounded, time-expiring result cache that fronts
// the upstream driver.
//
// Entries are keyed by the exact (query, page) pair; no case or whitespace
// folding is applied. Two independent policies govern an entry's life:
//
//   - TTLPolicy is consulted at read time. An entry older than the TTL is
//     reported as a miss and removed as a side effect.
//   - OldestFirst is consulted at write time. When a new key would push the
//     store past its capacity, the entry with the oldest insertion time is
//     evicted first.
//
// Neither policy looks at the other's concern: eviction never considers
// expiry and expiry never considers capacity.
//
// # Basic Usage
//
//	store := cache.NewMemory(10*time.Minute, 1000)
//
//	key := cache.Key{Query: "kodeks", Page: 2}
//	if result, ok := store.Get(key); ok {
//		return result
//	}
//	result := fetch()
//	store.Set(key, result)
//
// # Metrics
//
// The store exports Prometheus metrics:
//
//   - lex_cache_hits_total - Cache hits
//   - lex_cache_misses_total - Cache misses (absent or expired)
//   - lex_cache_evictions_total{reason} - Removals by reason ("expired", "capacity")
//   - lex_cache_entries - Current number of entries
package cache
