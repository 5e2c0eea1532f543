package cache

import (
	"sync"
	"time"

	"pulsefit/coach-app/internal/domain"
)

// Snapshot is the composed per-user context the chat path grounds the
// assistant with. ActivePlan may be nil when the user has no plan yet.
type Snapshot struct {
	Profile    *domain.UserProfile
	ActivePlan *domain.TrainingPlan
}

// Clock abstracts time.Now so expiry is testable.
type Clock func() time.Time

type entry struct {
	snapshot   Snapshot
	insertedAt time.Time
}

// ContextCache memoizes composed user context for a fixed TTL. Eviction is
// lazy: an expired entry is removed on the next Get. There is no size bound;
// growth is bounded only by the number of distinct users per process
// lifetime.
type ContextCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	entries map[string]entry
}

// New constructs a cache with the given TTL. A nil clock defaults to
// time.Now.
func New(ttl time.Duration, now Clock) *ContextCache {
	if now == nil {
		now = time.Now
	}
	return &ContextCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Get returns the cached snapshot for the user if it is still fresh. An
// expired entry is evicted and reported as absent.
func (c *ContextCache) Get(userID string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[userID]
	if !found {
		return Snapshot{}, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, userID)
		return Snapshot{}, false
	}
	return e.snapshot, true
}

// Put inserts or overwrites the user's snapshot, restarting its TTL.
func (c *ContextCache) Put(userID string, snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = entry{snapshot: snapshot, insertedAt: c.now()}
}

// Len reports the number of live entries, expired or not.
func (c *ContextCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
