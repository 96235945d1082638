// Package feed provides ChangeFeed implementations: an in-process fan-out and a
// Redis pub/sub bridge for sessions running in separate processes.
package feed

import (
	"context"
	"sort"
	"sync"

	"github.com/example/dealerops/internal/ports/secondary"
)

// LocalFeed delivers announcements synchronously to listeners in this process.
type LocalFeed struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]func(string)
	closed    bool
}

// NewLocalFeed creates an empty in-process feed.
func NewLocalFeed() *LocalFeed {
	return &LocalFeed{listeners: make(map[int]func(string))}
}

// Publish calls every listener with the collection name, in registration order.
func (f *LocalFeed) Publish(_ context.Context, collection string) error {
	for _, fn := range f.snapshot() {
		fn(collection)
	}
	return nil
}

// Listen registers fn. The returned Unsubscribe may be called more than once.
func (f *LocalFeed) Listen(fn func(string)) (secondary.Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}
	id := f.next
	f.next++
	f.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners, id)
			f.mu.Unlock()
		})
	}, nil
}

// Close drops all listeners; later Listen calls fail.
func (f *LocalFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.listeners = make(map[int]func(string))
	return nil
}

// snapshot copies the listeners so callbacks run without the lock held
// and may themselves subscribe or unsubscribe.
func (f *LocalFeed) snapshot() []func(string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]int, 0, len(f.listeners))
	for id := range f.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(string), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, f.listeners[id])
	}
	return fns
}

var _ secondary.ChangeFeed = (*LocalFeed)(nil)
