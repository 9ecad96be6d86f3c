package broadcast

import (
	"log"
	"sync"
)

// Hub delivers envelopes to in-process subscribers, e.g. open SSE streams.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscription]struct{}
	buffer      int
}

type subscription struct {
	ch chan []byte
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subscribers: make(map[string]map[*subscription]struct{}),
		buffer:      buffer,
	}
}

// Subscribe returns a channel of encoded envelopes for topic and a function
// that ends the subscription and closes the channel.
func (h *Hub) Subscribe(topic string) (<-chan []byte, func()) {
	sub := &subscription{ch: make(chan []byte, h.buffer)}

	h.mu.Lock()
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[*subscription]struct{})
	}
	h.subscribers[topic][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[topic][sub]; !ok {
				return // already closed by Close
			}
			delete(h.subscribers[topic], sub)
			if len(h.subscribers[topic]) == 0 {
				delete(h.subscribers, topic)
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// WriteMessage never blocks: a subscriber whose buffer is full misses the message.
func (h *Hub) WriteMessage(topic string, msg []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[topic] {
		select {
		case sub.ch <- msg:
		default:
			log.Printf("[broadcast] subscriber on %s is lagging, dropping message", topic)
		}
	}
	return nil
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic, subs := range h.subscribers {
		for sub := range subs {
			close(sub.ch)
		}
		delete(h.subscribers, topic)
	}
	return nil
}
