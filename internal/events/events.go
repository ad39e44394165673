package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	EventOrderCreated   = "order_created"
	EventProductAdded   = "product_added"
	EventProductDeleted = "product_deleted"
)

// OrderEventPayload is the snapshot of a committed order handed to subscribers.
type OrderEventPayload struct {
	OrderID    int64          `json:"order_id"`
	UserID     int64          `json:"user_id"`
	Items      map[string]int `json:"items"`
	TotalPrice int64          `json:"total_price"`
	PromoCode  string         `json:"promo_code,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ProductEventPayload records an admin change to the catalog.
type ProductEventPayload struct {
	Name     string `json:"name"`
	Price    int64  `json:"price,omitempty"`
	Category string `json:"category,omitempty"`
	Replaced bool   `json:"replaced,omitempty"`
	AdminID  int64  `json:"admin_id"`
}

// Event is a published fact with a JSON payload.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub. Handlers run synchronously in
// subscription order.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish runs every handler for the event type and joins their errors.
// A failing handler does not stop the others.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", event.Type, err))
		}
	}
	return errors.Join(errs...)
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}
