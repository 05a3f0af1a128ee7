package token

import (
	"sync"
	"time"
)

// Revocations lists signed-out token ids. An id only needs remembering until its token would expire.
type Revocations interface {
	Revoke(jti string, until time.Time)
	Revoked(jti string) bool
	Prune(now time.Time) int
}

type memoryRevocations struct {
	mu    sync.RWMutex
	until map[string]time.Time
}

func NewMemoryRevocations() Revocations {
	return &memoryRevocations{until: make(map[string]time.Time)}
}

func (r *memoryRevocations) Revoke(jti string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.until[jti] = until
}

func (r *memoryRevocations) Revoked(jti string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.until[jti]
	return ok
}

// Prune forgets ids whose token has expired by now and reports how many went.
func (r *memoryRevocations) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for jti, until := range r.until {
		if now.After(until) {
			delete(r.until, jti)
			n++
		}
	}
	return n
}
