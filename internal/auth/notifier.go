package auth

import (
	"sync"

	"github.com/psychmag/psychmag/internal/core"
	"github.com/psychmag/psychmag/internal/logger"
)

const subscriberBuffer = 32

// Notifier fans session events out to every subscriber. Publishing never
// blocks: an event is dropped for a subscriber whose buffer is full.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan core.SessionEvent
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan core.SessionEvent)}
}

// Subscribe registers a new listener. The returned cancel function closes the
// channel and is safe to call more than once.
func (n *Notifier) Subscribe() (<-chan core.SessionEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan core.SessionEvent, subscriberBuffer)
	n.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (n *Notifier) Publish(event core.SessionEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
			logger.Warningf("session event %s dropped: subscriber is not keeping up", event.Kind)
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
