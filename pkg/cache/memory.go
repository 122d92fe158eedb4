package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uzgidro/lex-parser/pkg/document"
)

// Memory is an in-process result store. It is safe for concurrent use;
// eviction and insertion happen under one lock, so concurrent Sets can
// never leave it above capacity.
type Memory struct {
	mu      sync.Mutex
	entries map[Key]*Entry
	seq     uint64

	expiry   TTLPolicy
	eviction OldestFirst
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures a Memory store.
type Option func(*Memory)

// WithClock replaces the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Memory) {
		m.logger = logger
	}
}

// NewMemory creates a store holding at most maxEntries results for ttl each.
func NewMemory(ttl time.Duration, maxEntries int, opts ...Option) *Memory {
	if ttl <= 0 {
		panic(fmt.Sprintf("cache ttl must be positive (got %s)", ttl))
	}
	if maxEntries < 1 {
		panic(fmt.Sprintf("cache max entries must be >= 1 (got %d)", maxEntries))
	}

	m := &Memory{
		entries:  make(map[Key]*Entry, maxEntries),
		expiry:   TTLPolicy{TTL: ttl},
		eviction: OldestFirst{MaxEntries: maxEntries},
		now:      time.Now,
		logger:   log.With().Str("component", "cache").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the result stored under key if it is still fresh.
// An expired entry is removed and reported as a miss.
func (m *Memory) Get(key Key) (document.SearchResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		CacheMisses.Inc()
		m.logger.Debug().Str("key", key.String()).Msg("Cache miss")
		return document.SearchResult{}, false
	}

	now := m.now()
	if !m.expiry.Fresh(entry, now) {
		delete(m.entries, key)
		CacheEvictions.WithLabelValues("expired").Inc()
		CacheEntries.Set(float64(len(m.entries)))
		CacheMisses.Inc()
		m.logger.Debug().
			Str("key", key.String()).
			Dur("age", entry.Age(now)).
			Msg("Cache entry expired")
		return document.SearchResult{}, false
	}

	CacheHits.Inc()
	m.logger.Debug().Str("key", key.String()).Msg("Cache hit")
	return entry.Result.Clone(), true
}

// Set stores result under key, evicting the oldest entry first if the key
// is new and the store is full. Overwriting a key resets its insertion time.
func (m *Memory) Set(key Key, result document.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.entries[key]
	if m.eviction.NeedsEviction(len(m.entries), !exists) {
		if victim, ok := m.eviction.Victim(m.entries); ok {
			delete(m.entries, victim)
			CacheEvictions.WithLabelValues("capacity").Inc()
			m.logger.Debug().
				Str("key", victim.String()).
				Int("max_entries", m.eviction.MaxEntries).
				Msg("Evicted oldest cache entry")
		}
	}

	m.seq++
	m.entries[key] = &Entry{
		Result:   result.Clone(),
		CachedAt: m.now(),
		seq:      m.seq,
	}
	CacheEntries.Set(float64(len(m.entries)))
}

// Delete removes the entry stored under key.
func (m *Memory) Delete(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	CacheEntries.Set(float64(len(m.entries)))
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
