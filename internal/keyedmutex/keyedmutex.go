// Package keyedmutex grants mutual exclusion per opaque string key.
package keyedmutex

import (
	"context"
	"sync"
)

// Registry hands out one lock per key. Entries are reference counted and
// removed once the last holder or waiter releases, so the table only grows
// with the number of keys currently contended, not with every key ever seen.
//
// Keys are opaque strings. Re-acquiring a held key on the same call path
// deadlocks; callers must not do that.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	// sem has capacity 1; holding the token means holding the lock.
	sem  chan struct{}
	refs int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Acquire blocks until the key is free and returns the release function.
// The release function is idempotent and must be called on every exit path.
func (r *Registry) Acquire(key string) func() {
	release, _ := r.AcquireCtx(context.Background(), key)
	return release
}

// AcquireCtx is Acquire with cancellation. On cancellation the waiter is
// unregistered and a nil release function is returned alongside ctx.Err().
func (r *Registry) AcquireCtx(ctx context.Context, key string) (func(), error) {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		r.entries[key] = e
	}
	e.refs++
	r.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		r.unref(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			<-e.sem
			r.unref(key, e)
		})
	}
	return release, nil
}

// Len reports the number of live entries. Used by tests and diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) unref(key string, e *entry) {
	r.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(r.entries, key)
	}
	r.mu.Unlock()
}
