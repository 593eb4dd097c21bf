package hostsfile

import "sync"

const subscriberBuffer = 16

// Subscription receives change events until Close is called.
type Subscription struct {
	C <-chan Event

	ch   chan Event
	b    *broadcaster
	once sync.Once
}

// Close unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.b.unsubscribe(s) })
}

// broadcaster fans events out to subscribers.
type broadcaster struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	closed      bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subscribers: make(map[*Subscription]struct{})}
}

func (b *broadcaster) subscribe() *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, b: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	b.subscribers[sub] = struct{}{}
	return sub
}

func (b *broadcaster) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[sub]; !ok {
		return
	}
	delete(b.subscribers, sub)
	close(sub.ch)
}

// publish sends ev to every subscriber without blocking; a subscriber with
// a full buffer misses the event. It returns how many subscribers received
// it and how many it was dropped for.
func (b *broadcaster) publish(ev Event) (delivered, dropped int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subscribers {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			dropped++
		}
	}
	return delivered, dropped
}

func (b *broadcaster) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// close closes every subscription; later subscribers get a closed channel.
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subscribers {
		delete(b.subscribers, sub)
		close(sub.ch)
	}
}
