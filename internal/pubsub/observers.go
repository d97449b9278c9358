package pubsub

import "sync"

// Handle identifies a registered observer for later removal.
// The zero value is never issued.
type Handle uint64

// Observers is an ordered list of callbacks invoked synchronously on Notify.
// Callbacks run in registration order. Removal is by handle identity and is
// idempotent: removing an unknown handle is a no-op.
type Observers[T any] struct {
	mu      sync.Mutex
	next    Handle
	entries []observerEntry[T]
}

type observerEntry[T any] struct {
	handle Handle
	fn     func(T)
}

// NewObservers creates an empty observer list.
func NewObservers[T any]() *Observers[T] {
	return &Observers[T]{}
}

// Add registers a callback and returns its handle.
// Nil callbacks are registered but never invoked.
func (o *Observers[T]) Add(fn func(T)) Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	o.entries = append(o.entries, observerEntry[T]{handle: o.next, fn: fn})
	return o.next
}

// Remove unregisters the callback with the given handle.
// Returns true if a callback was removed.
func (o *Observers[T]) Remove(h Handle) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, e := range o.entries {
		if e.handle == h {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Notify invokes every registered callback with v, in registration order.
// Callbacks registered or removed during Notify take effect on the next call.
func (o *Observers[T]) Notify(v T) {
	o.mu.Lock()
	snapshot := make([]observerEntry[T], len(o.entries))
	copy(snapshot, o.entries)
	o.mu.Unlock()

	for _, e := range snapshot {
		if e.fn != nil {
			e.fn(v)
		}
	}
}

// Clear unregisters all callbacks.
func (o *Observers[T]) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = nil
}

// Len returns the number of registered callbacks.
func (o *Observers[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}
