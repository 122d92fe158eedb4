package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/uzgidro/lex-parser/pkg/document"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func result(page int) document.SearchResult {
	return document.SearchResult{
		Documents:   []document.Document{{Title: fmt.Sprintf("doc %d", page), Status: document.StatusActive}},
		CurrentPage: page,
		TotalPages:  page,
	}
}

func TestNewMemory_Panic(t *testing.T) {
	tests := []struct {
		name       string
		ttl        time.Duration
		maxEntries int
	}{
		{name: "zero ttl", ttl: 0, maxEntries: 1},
		{name: "negative ttl", ttl: -time.Second, maxEntries: 1},
		{name: "zero capacity", ttl: time.Minute, maxEntries: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("NewMemory should panic")
				}
			}()
			NewMemory(tt.ttl, tt.maxEntries)
		})
	}
}

func TestMemory_SetAndGet(t *testing.T) {
	store := NewMemory(time.Minute, 4)
	key := Key{Query: "kodeks", Page: 1}

	store.Set(key, result(1))

	got, ok := store.Get(key)
	if !ok {
		t.Fatal("Get after Set missed")
	}
	if got.CurrentPage != 1 || got.Documents[0].Title != "doc 1" {
		t.Errorf("Get() = %+v, want page 1", got)
	}
}

func TestMemory_Get_Missing(t *testing.T) {
	store := NewMemory(time.Minute, 4)
	if _, ok := store.Get(Key{Query: "nonexistent", Page: 1}); ok {
		t.Error("Get on empty store should miss")
	}
}

func TestMemory_Get_Expired(t *testing.T) {
	clock := newFakeClock()
	store := NewMemory(time.Minute, 4, WithClock(clock.Now))
	key := Key{Query: "exp", Page: 1}

	store.Set(key, result(1))

	clock.Advance(59 * time.Second)
	if _, ok := store.Get(key); !ok {
		t.Fatal("entry should still be fresh before the TTL")
	}

	clock.Advance(2 * time.Second)
	if _, ok := store.Get(key); ok {
		t.Error("entry should be expired after the TTL")
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (expired entry should be removed on read)", store.Len())
	}
}

func TestMemory_ExpiredCleanedOnAccess(t *testing.T) {
	clock := newFakeClock()
	store := NewMemory(time.Minute, 4, WithClock(clock.Now))

	store.Set(Key{Query: "old", Page: 1}, result(1))
	clock.Advance(40 * time.Second)
	store.Set(Key{Query: "fresh", Page: 1}, result(2))
	clock.Advance(30 * time.Second)

	if _, ok := store.Get(Key{Query: "old", Page: 1}); ok {
		t.Error("old entry should be expired")
	}
	if _, ok := store.Get(Key{Query: "fresh", Page: 1}); !ok {
		t.Error("fresh entry should still be served")
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestMemory_EvictsOldestOnOverflow(t *testing.T) {
	clock := newFakeClock()
	store := NewMemory(time.Hour, 4, WithClock(clock.Now))

	for i := 0; i < 4; i++ {
		store.Set(Key{Query: fmt.Sprintf("k%d", i), Page: 1}, result(i+1))
		clock.Advance(time.Second)
	}

	// Reading k0 must not save it: eviction is by insertion time only.
	if _, ok := store.Get(Key{Query: "k0", Page: 1}); !ok {
		t.Fatal("k0 should be present before overflow")
	}

	store.Set(Key{Query: "k_new", Page: 1}, result(99))

	if store.Len() != 4 {
		t.Errorf("Len() = %d, want 4", store.Len())
	}
	if _, ok := store.Get(Key{Query: "k0", Page: 1}); ok {
		t.Error("k0 should have been evicted")
	}
	for i := 1; i < 4; i++ {
		if _, ok := store.Get(Key{Query: fmt.Sprintf("k%d", i), Page: 1}); !ok {
			t.Errorf("k%d should have been preserved", i)
		}
	}
	got, ok := store.Get(Key{Query: "k_new", Page: 1})
	if !ok || got.CurrentPage != 99 {
		t.Errorf("k_new = %+v, %v, want page 99", got, ok)
	}
}

func TestMemory_EvictsByInsertionOrderWithFrozenClock(t *testing.T) {
	clock := newFakeClock()
	store := NewMemory(time.Hour, 2, WithClock(clock.Now))

	store.Set(Key{Query: "a", Page: 1}, result(1))
	store.Set(Key{Query: "b", Page: 1}, result(2))
	store.Set(Key{Query: "c", Page: 1}, result(3))

	if _, ok := store.Get(Key{Query: "a", Page: 1}); ok {
		t.Error("a should have been evicted")
	}
	if _, ok := store.Get(Key{Query: "b", Page: 1}); !ok {
		t.Error("b should have been preserved")
	}
}

func TestMemory_OverwriteDoesNotEvict(t *testing.T) {
	clock := newFakeClock()
	store := NewMemory(time.Minute, 2, WithClock(clock.Now))

	store.Set(Key{Query: "a", Page: 1}, result(1))
	store.Set(Key{Query: "b", Page: 1}, result(2))
	clock.Advance(50 * time.Second)
	store.Set(Key{Query: "a", Page: 1}, result(3))

	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}

	// The overwrite reset a's timestamp, so it outlives b.
	clock.Advance(20 * time.Second)
	if _, ok := store.Get(Key{Query: "b", Page: 1}); ok {
		t.Error("b should be expired")
	}
	got, ok := store.Get(Key{Query: "a", Page: 1})
	if !ok || got.CurrentPage != 3 {
		t.Errorf("a = %+v, %v, want overwritten page 3", got, ok)
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	store := NewMemory(time.Minute, 2)
	key := Key{Query: "q", Page: 1}

	in := result(1)
	store.Set(key, in)
	in.Documents[0].Title = "mutated after set"

	got, _ := store.Get(key)
	got.Documents[0].Title = "mutated after get"

	again, _ := store.Get(key)
	if again.Documents[0].Title != "doc 1" {
		t.Errorf("Title = %q, want doc 1", again.Documents[0].Title)
	}
}

func TestMemory_Delete(t *testing.T) {
	store := NewMemory(time.Minute, 2)
	key := Key{Query: "q", Page: 1}

	store.Set(key, result(1))
	store.Delete(key)

	if _, ok := store.Get(key); ok {
		t.Error("Get after Delete should miss")
	}
}

func TestMemory_ConcurrentSetNeverExceedsCapacity(t *testing.T) {
	const capacity = 8
	store := NewMemory(time.Minute, capacity)

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := Key{Query: fmt.Sprintf("w%d-%d", w, i), Page: 1}
				store.Set(key, result(1))
				store.Get(key)
				if n := store.Len(); n > capacity {
					t.Errorf("Len() = %d, exceeds capacity %d", n, capacity)
				}
			}
		}(w)
	}
	wg.Wait()

	if store.Len() != capacity {
		t.Errorf("Len() = %d, want %d", store.Len(), capacity)
	}
}
