package events

import (
	"testing"
	"time"

	"github.com/govind/worker-portal-back/internal/domain"
)

func TestHubDeliversToMatchingSubscriberOnly(t *testing.T) {
	hub := NewHub()

	mine, cancelMine := hub.Subscribe("w1")
	defer cancelMine()
	other, cancelOther := hub.Subscribe("w2")
	defer cancelOther()

	hub.Publish(domain.Event{
		EventID:  "e1",
		Kind:     domain.EventKindAssigned,
		WorkerID: "w1",
	})

	select {
	case event := <-mine:
		if event.EventID != "e1" {
			t.Fatalf("expected event e1, got %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected event delivered to matching subscriber")
	}

	select {
	case event := <-other:
		t.Fatalf("unexpected delivery to other worker's subscriber: %+v", event)
	default:
	}
}

func TestHubFanOutToMultipleSubscribers(t *testing.T) {
	hub := NewHub()

	first, cancelFirst := hub.Subscribe("w1")
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe("w1")
	defer cancelSecond()

	hub.Publish(domain.Event{EventID: "e1", WorkerID: "w1"})

	for _, ch := range []<-chan domain.Event{first, second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("expected fan-out delivery to every subscriber")
		}
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	_, cancel := hub.Subscribe("w1")
	if count := hub.SubscriberCount("w1"); count != 1 {
		t.Fatalf("expected 1 subscriber, got %d", count)
	}

	cancel()
	if count := hub.SubscriberCount("w1"); count != 0 {
		t.Fatalf("expected 0 subscribers after cancel, got %d", count)
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()

	_, cancel := hub.Subscribe("w1")
	defer cancel()

	// Nothing drains the channel; publishing past the buffer must
	// drop instead of hanging.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			hub.Publish(domain.Event{EventID: "e", WorkerID: "w1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	hub.Publish(domain.Event{EventID: "e1", WorkerID: "nobody"})
}
