package session

import "sync"

// Bus fans session-change notifications out to subscribers. A subscriber
// registers once and receives both locally published changes and changes
// detected on the shared state file; it cannot tell the two apart, and does
// not need to.
type Bus struct {
	mu        sync.Mutex
	listeners map[int]func()
	nextID    int
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[int]func())}
}

// Subscribe registers listener and returns its unsubscribe func. After
// unsubscribe returns, the listener is never invoked again.
func (b *Bus) Subscribe(listener func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = listener

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Publish invokes every registered listener. Listeners run synchronously on
// the publishing goroutine; they are expected to be cheap (re-read a
// snapshot, flag a re-render) and must not call back into Subscribe's
// unsubscribe func from within themselves while holding their own locks.
func (b *Bus) Publish() {
	b.mu.Lock()
	snapshot := make([]func(), 0, len(b.listeners))
	for _, listener := range b.listeners {
		snapshot = append(snapshot, listener)
	}
	b.mu.Unlock()

	for _, listener := range snapshot {
		listener()
	}
}
