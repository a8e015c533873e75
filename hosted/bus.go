package hosted

import (
	"sync"

	"github.com/goliatone/go-portal"
)

// Bus delivers session events to subscribers in publish order on a
// background goroutine. The goroutine exits once the queue drains.
type Bus struct {
	mu      sync.Mutex
	subs    map[int]func(portal.SessionEvent)
	nextID  int
	queue   []portal.SessionEvent
	running bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[int]func(portal.SessionEvent){}}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(portal.SessionEvent)) func() {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish queues event without blocking the caller.
func (b *Bus) Publish(event portal.SessionEvent) {
	b.mu.Lock()
	b.queue = append(b.queue, event)
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	go b.drain()
}

func (b *Bus) drain() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.running = false
			b.mu.Unlock()
			return
		}
		event := b.queue[0]
		b.queue = b.queue[1:]
		subs := make([]func(portal.SessionEvent), 0, len(b.subs))
		for _, fn := range b.subs {
			subs = append(subs, fn)
		}
		b.mu.Unlock()

		for _, fn := range subs {
			fn(event)
		}
	}
}
