package dispatch

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielgatis/go-termdesk/metrics"
)

// DefaultListenerBuffer is the per-listener channel size.
const DefaultListenerBuffer = 64

// Event is one forwarded key transition.
type Event struct {
	Action int  `json:"action"`
	Mods   int  `json:"mods"`
	Ctrl   bool `json:"ctrl"`
	Shift  bool `json:"shift"`
	Alt    bool `json:"alt"`
	AltGr  bool `json:"altgr"`
}

// Broadcaster fans events out to any number of listeners. Publish never
// blocks: a listener whose buffer is full misses the event.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[uuid.UUID]chan Event
	buffer    int
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewBroadcaster creates a broadcaster whose listeners buffer buffer
// events each (DefaultListenerBuffer when <= 0).
func NewBroadcaster(buffer int, logger *zap.Logger, m *metrics.Metrics) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultListenerBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		listeners: make(map[uuid.UUID]chan Event),
		buffer:    buffer,
		logger:    logger,
		metrics:   m,
	}
}

// Subscribe registers a listener.
func (b *Broadcaster) Subscribe() (uuid.UUID, <-chan Event) {
	id := uuid.New()
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	b.listeners[id] = ch
	n := len(b.listeners)
	b.mu.Unlock()

	b.metrics.SetListeners(n)
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Broadcaster) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	ch, ok := b.listeners[id]
	if ok {
		delete(b.listeners, id)
		close(ch)
	}
	n := len(b.listeners)
	b.mu.Unlock()

	b.metrics.SetListeners(n)
}

// Publish delivers ev to every listener.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.listeners {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("listener full, event dropped", zap.String("listener", id.String()))
			b.metrics.EventDropped()
		}
	}
}

// Len returns the number of listeners.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Close unsubscribes every listener.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	for id, ch := range b.listeners {
		delete(b.listeners, id)
		close(ch)
	}
	b.mu.Unlock()

	b.metrics.SetListeners(0)
}
