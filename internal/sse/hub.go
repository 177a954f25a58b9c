package sse

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventPaymentCreated       EventType = "payment.created"
	EventPaymentStatusChanged EventType = "payment.status_changed"
)

// subscriberBuffer is how many undelivered events a slow stream may hold.
const subscriberBuffer = 64

// PaymentEvent is the payload broadcast to admin streams. The card number is
// never included.
type PaymentEvent struct {
	Event                EventType       `json:"event"`
	PaymentID            string          `json:"paymentId"`
	TransactionReference string          `json:"transactionReference"`
	Status               string          `json:"status"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	ProcessedBy          string          `json:"processedBy"`
	ReversedBy           *string         `json:"reversedBy,omitempty"`
	CancelledBy          *string         `json:"cancelledBy,omitempty"`
	OccurredAt           time.Time       `json:"occurredAt"`
}

// Subscriber is one open admin event stream.
type Subscriber struct {
	ID       string
	ClientID string
	Events   chan []byte

	dropped atomic.Int64
}

// Dropped reports how many events this stream missed because it fell behind.
func (s *Subscriber) Dropped() int64 {
	return s.dropped.Load()
}

// Hub fans payment events out to the open admin streams.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscriber)}
}

// Subscribe opens a stream owned by clientID.
func (h *Hub) Subscribe(clientID string) *Subscriber {
	sub := &Subscriber{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Events:   make(chan []byte, subscriberBuffer),
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()
	return sub
}

// Unsubscribe closes sub's channel. Calling it twice is harmless.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.ID]; ok {
		delete(h.subs, sub.ID)
		close(sub.Events)
	}
}

// Publish delivers event to every stream without blocking. Streams whose
// buffer is full miss the event.
func (h *Hub) Publish(event *PaymentEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.subs) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("payment_id", event.PaymentID).Msg("Failed to encode payment event")
		return
	}

	missed := 0
	for _, sub := range h.subs {
		select {
		case sub.Events <- data:
		default:
			sub.dropped.Add(1)
			missed++
		}
	}
	if missed > 0 {
		log.Warn().
			Str("payment_id", event.PaymentID).
			Str("event", string(event.Event)).
			Int("missed_streams", missed).
			Msg("Payment event dropped for slow admin streams")
	}
}

// SubscriberCount returns the number of open streams.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
