package eventbus

import (
	"sync"

	"campusmarket/internal/domain/entity"
)

const subscriberBuffer = 64

// Bus fans TradeEvents out to in-process subscribers. Publish never blocks;
// a subscriber that falls behind misses events.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan entity.TradeEvent]struct{}
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[chan entity.TradeEvent]struct{}),
	}
}

func (b *Bus) Publish(event entity.TradeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (b *Bus) Subscribe() (<-chan entity.TradeEvent, func()) {
	ch := make(chan entity.TradeEvent, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, unsubscribe
}
