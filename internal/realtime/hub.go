// Package realtime fans analytics updates out to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dreamdigital/landing/internal/logging"
	"github.com/dreamdigital/landing/internal/models"
)

const (
	broadcastBuffer  = 64
	subscriberBuffer = 8
)

// Message is the JSON frame sent to subscribers
type Message struct {
	Type      string                 `json:"type"`
	Analytics models.AnalyticsRecord `json:"analytics"`
	SentAt    time.Time              `json:"sentAt"`
}

// Hub broadcasts encoded messages. Slow subscribers miss frames rather than
// stalling the publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	closed  bool

	broadcast chan []byte
	log       *zap.Logger
}

// NewHub returns a hub; call Run to start delivery
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[chan []byte]struct{}),
		broadcast: make(chan []byte, broadcastBuffer),
		log:       logging.Named("realtime"),
	}
}

// Encode builds the frame for rec
func Encode(rec models.AnalyticsRecord) ([]byte, error) {
	return json.Marshal(Message{Type: "analytics", Analytics: rec, SentAt: time.Now().UTC()})
}

// Publish queues rec for delivery. It never blocks.
func (h *Hub) Publish(rec models.AnalyticsRecord) {
	frame, err := Encode(rec)
	if err != nil {
		h.log.Error("failed to encode analytics frame", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- frame:
	default:
		h.log.Warn("realtime broadcast queue full, dropping frame")
	}
}

// Subscribe registers a subscriber. The returned cancel func is idempotent.
// The channel is closed when the hub stops or cancel is called.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}
		})
	}
}

// Clients returns the number of subscribers
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run delivers queued frames until ctx is done, then closes every subscriber
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return nil
		case frame := <-h.broadcast:
			h.fanOut(frame)
		}
	}
}

func (h *Hub) fanOut(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
			h.log.Debug("subscriber lagging, frame skipped")
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}
