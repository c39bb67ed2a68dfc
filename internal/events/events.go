// Package events provides the fire-and-forget notification bus that
// decouples the persistence layer from its observers (library sidebar,
// celebration banner). Publishing never blocks: slow subscribers miss
// events rather than stalling a save.
package events

import "sync"

type Type string

const (
	FavoriteAdded       Type = "favorite-added"
	FavoriteRemoved     Type = "favorite-removed"
	LibraryCleared      Type = "library-cleared"
	ConversationUpdated Type = "conversation-updated"
)

// Event carries a notification. Payload fields are set per type:
// PaperID for all library events, First only on FavoriteAdded.
type Event struct {
	Type    Type
	PaperID string
	// First marks the first successful save of the session, which
	// drives a one-time celebration distinct from later saves.
	First bool
}

// Broker distributes events to subscribers by type.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[Type][]chan Event
}

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[Type][]chan Event)}
}

// Subscribe returns a buffered channel receiving the given event types.
// With no types it receives everything.
func (b *Broker) Subscribe(types ...Type) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 16)
	if len(types) == 0 {
		types = []Type{"*"}
	}
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], ch)
	}
	return ch
}

// Publish sends an event to all matching subscribers without blocking.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[ev.Type] {
		select {
		case ch <- ev:
		default:
			// Subscriber buffer full, drop.
		}
	}
	for _, ch := range b.subscribers["*"] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Unsubscribe removes and closes a subscription channel.
func (b *Broker) Unsubscribe(target <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found chan Event
	for t, subs := range b.subscribers {
		for i, ch := range subs {
			if ch == target {
				b.subscribers[t] = append(subs[:i], subs[i+1:]...)
				found = ch
				break
			}
		}
		if len(b.subscribers[t]) == 0 {
			delete(b.subscribers, t)
		}
	}
	if found != nil {
		close(found)
	}
}
