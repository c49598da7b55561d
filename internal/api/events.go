package api

import (
	"sort"
	"sync"
	"time"
)

// SessionInvalidated is published when the server rejects the stored session.
type SessionInvalidated struct {
	Reason error
	At     time.Time
}

// Events fans session events out to subscribers. The zero value is ready to use
// and a nil *Events drops everything.
type Events struct {
	mu   sync.Mutex
	next int
	subs map[int]func(SessionInvalidated)
}

// NewEvents creates an event bus.
func NewEvents() *Events {
	return &Events{}
}

// Subscribe registers fn and returns a function that removes it.
func (e *Events) Subscribe(fn func(SessionInvalidated)) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.subs == nil {
		e.subs = make(map[int]func(SessionInvalidated))
	}
	id := e.next
	e.next++
	e.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
		})
	}
}

// Publish delivers ev synchronously to every subscriber in subscription order.
func (e *Events) Publish(ev SessionInvalidated) {
	if e == nil {
		return
	}

	e.mu.Lock()
	ids := make([]int, 0, len(e.subs))
	for id := range e.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(SessionInvalidated), len(ids))
	for i, id := range ids {
		fns[i] = e.subs[id]
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
