package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/balloon-scene/internal/models"
)

// subscriberBuffer is small on purpose: only the newest scene matters.
const subscriberBuffer = 1

// Broadcaster fans newly built scenes out to stream subscribers.
type Broadcaster struct {
	subscribers map[uint64]chan *models.Scene
	nextID      atomic.Uint64
	mu          sync.RWMutex
	closed      bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.Scene),
	}
}

// Subscribe registers a subscriber. After Close the returned channel is
// already closed.
func (b *Broadcaster) Subscribe() (uint64, <-chan *models.Scene) {
	id := b.nextID.Add(1)
	ch := make(chan *models.Scene, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Broadcast delivers s to every subscriber without blocking. A subscriber
// that still holds an undelivered scene has it replaced by s.
func (b *Broadcaster) Broadcast(s *models.Scene) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- s:
			continue
		default:
		}
		// drop the stale scene, then retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
