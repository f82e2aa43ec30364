package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"checkin-backend/models"
)

func arrival(name string) models.ArrivalEvent {
	return models.ArrivalEvent{
		GuestID:     uuid.New(),
		DisplayName: name,
		ArrivedAt:   time.Now(),
		Method:      models.MethodScanned,
	}
}

func TestPublishFansOutToEventSubscribers(t *testing.T) {
	h := New(4)
	eventID := uuid.New()

	first := h.Subscribe(eventID)
	second := h.Subscribe(eventID)
	other := h.Subscribe(uuid.New())

	h.Publish(eventID, arrival("Ana"))

	for _, sub := range []*Subscriber{first, second} {
		select {
		case ev := <-sub.Events():
			if ev.DisplayName != "Ana" {
				t.Errorf("unexpected event delivered: %+v", ev)
			}
		default:
			t.Error("subscriber did not receive the publish")
		}
	}

	select {
	case ev := <-other.Events():
		t.Errorf("subscriber of another event received %+v", ev)
	default:
	}
}

func TestPublishPreservesOrderPerEvent(t *testing.T) {
	h := New(8)
	eventID := uuid.New()
	sub := h.Subscribe(eventID)

	names := []string{"Ana", "Luca", "Mara"}
	for _, name := range names {
		h.Publish(eventID, arrival(name))
	}

	for i, want := range names {
		ev := <-sub.Events()
		if ev.DisplayName != want {
			t.Fatalf("event %d: got %q, want %q", i, ev.DisplayName, want)
		}
	}
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	h := New(1)
	eventID := uuid.New()
	slow := h.Subscribe(eventID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Publish(eventID, arrival("Ana"))
		h.Publish(eventID, arrival("Luca"))
		h.Publish(eventID, arrival("Mara"))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	ev := <-slow.Events()
	if ev.DisplayName != "Ana" {
		t.Errorf("expected the first event to be buffered, got %q", ev.DisplayName)
	}
	select {
	case ev := <-slow.Events():
		t.Errorf("overflow events must be dropped, received %q", ev.DisplayName)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New(4)
	eventID := uuid.New()
	sub := h.Subscribe(eventID)

	h.Unsubscribe(sub)
	if _, ok := <-sub.Events(); ok {
		t.Error("expected channel to be closed after unsubscribe")
	}
	if h.SubscriberCount(eventID) != 0 {
		t.Errorf("expected 0 subscribers, got %d", h.SubscriberCount(eventID))
	}

	// Second unsubscribe must not panic on the closed channel.
	h.Unsubscribe(sub)

	// Publishing to an event with no subscribers is a no-op.
	h.Publish(eventID, arrival("Ana"))
}

func TestConcurrentSubscribePublishUnsubscribe(t *testing.T) {
	h := New(4)
	eventID := uuid.New()

	subs := make([]*Subscriber, 20)
	for i := range subs {
		subs[i] = h.Subscribe(eventID)
	}

	var drains sync.WaitGroup
	for _, sub := range subs {
		drains.Add(1)
		go func(s *Subscriber) {
			defer drains.Done()
			for range s.Events() {
			}
		}(sub)
	}

	var publishes sync.WaitGroup
	for i := 0; i < 50; i++ {
		publishes.Add(1)
		go func() {
			defer publishes.Done()
			h.Publish(eventID, arrival("Ana"))
		}()
	}
	publishes.Wait()

	for _, sub := range subs {
		h.Unsubscribe(sub)
	}
	drains.Wait()

	if h.SubscriberCount(eventID) != 0 {
		t.Errorf("expected all subscribers released, %d remain", h.SubscriberCount(eventID))
	}
}
