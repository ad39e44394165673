package events

import (
	"errors"
	"testing"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventOrderCreated, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	err := bus.PublishJSON(EventOrderCreated, OrderEventPayload{OrderID: 7, Items: map[string]int{"Non": 3}, TotalPrice: 13500})
	if err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if received.Type != EventOrderCreated {
		t.Errorf("expected type %s, got %s", EventOrderCreated, received.Type)
	}

	var decoded OrderEventPayload
	if err := received.Decode(&decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.OrderID != 7 || decoded.Items["Non"] != 3 || decoded.TotalPrice != 13500 {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe(EventProductAdded, func(_ *Event) error { count1++; return nil })
	bus.Subscribe(EventProductAdded, func(_ *Event) error { count2++; return nil })

	if err := bus.Publish(&Event{Type: EventProductAdded}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")
	var secondCalled bool

	bus.Subscribe(EventProductDeleted, func(_ *Event) error { return boom })
	bus.Subscribe(EventProductDeleted, func(_ *Event) error { secondCalled = true; return nil })

	err := bus.PublishJSON(EventProductDeleted, ProductEventPayload{Name: "Non"})
	if !errors.Is(err, boom) {
		t.Errorf("expected joined error to wrap boom, got %v", err)
	}
	if !secondCalled {
		t.Error("second handler was not called")
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	if err := bus.PublishJSON("unknown", map[string]string{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON(EventOrderCreated, nil); err != nil {
		t.Errorf("nil bus should be a no-op, got %v", err)
	}
}

func TestPublishJSONMarshalError(t *testing.T) {
	bus := NewEventBus()
	if err := bus.PublishJSON(EventOrderCreated, make(chan int)); err == nil {
		t.Error("expected marshal error")
	}
}
