// Package events broadcasts engine activity to live subscribers. The feed
// is best-effort observability for ops tooling; nothing in the request
// path depends on a subscriber keeping up.
package events

import (
	"sync"
	"time"
)

// Event types published by the dispatcher.
const (
	TypeCallIncoming = "call.incoming"
	TypeCallRouted   = "call.routed"
	TypeCallStatus   = "call.status"
	TypeChatInbound  = "chat.inbound"
	TypeChatReplied  = "chat.replied"
	TypeChatStatus   = "chat.status"
)

// Event is one engine activity record.
type Event struct {
	Type string            `json:"type"`
	At   time.Time         `json:"at"`
	Data map[string]string `json:"data,omitempty"`
}

// Bus fans events out to subscribers. Slow subscribers lose events rather
// than block publishers.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(eventType string, data map[string]string) {
	event := Event{Type: eventType, At: time.Now().UTC(), Data: data}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
	return ch, cancel
}
