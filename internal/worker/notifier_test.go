package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/govind/worker-portal-back/internal/domain"
	"github.com/govind/worker-portal-back/internal/events"
	"github.com/govind/worker-portal-back/internal/repository"
)

type fakeSMSGateway struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (g *fakeSMSGateway) Send(_ context.Context, phone, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.sent = append(g.sent, phone)
	return nil
}

func (g *fakeSMSGateway) sentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) SendAssignment(_ context.Context, to, _ string, _ domain.AssignmentDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func seedWorker(t *testing.T, store repository.Store, worker domain.Worker) {
	t.Helper()
	if err := store.CreateWorker(context.Background(), &worker); err != nil {
		t.Fatalf("seed worker: %v", err)
	}
}

func assignmentMessage(t *testing.T, workerID string) domain.QueueMessage {
	t.Helper()

	payload, err := json.Marshal(domain.AssignmentDetails{
		JobID:      "j1",
		Location:   "Market Road",
		GuideName:  "Suresh",
		GuidePhone: "9123456789",
	})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}
	return domain.QueueMessage{
		EventID:     "e1",
		Kind:        domain.EventKindAssigned,
		WorkerID:    workerID,
		Payload:     payload,
		RequestedAt: time.Now().UTC(),
	}
}

func TestNotifierDeliversBothChannels(t *testing.T) {
	store := repository.NewMemoryStore()
	seedWorker(t, store, domain.Worker{ID: "w1", Name: "Raju", Phone: "9876543210", Email: "raju@example.com"})

	sms := &fakeSMSGateway{}
	mailer := &fakeMailer{}
	notifier := NewNotifier(nil, store, sms, mailer, nil, nil)

	if err := notifier.handle(context.Background(), assignmentMessage(t, "w1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sms.sentCount() != 1 {
		t.Fatalf("expected 1 sms, got %d", sms.sentCount())
	}
	if mailer.sentCount() != 1 {
		t.Fatalf("expected 1 email, got %d", mailer.sentCount())
	}
}

func TestNotifierChannelsAreIndependent(t *testing.T) {
	store := repository.NewMemoryStore()
	seedWorker(t, store, domain.Worker{ID: "w1", Name: "Raju", Phone: "9876543210", Email: "raju@example.com"})

	sms := &fakeSMSGateway{err: errors.New("provider down")}
	mailer := &fakeMailer{}
	notifier := NewNotifier(nil, store, sms, mailer, nil, nil)

	err := notifier.handle(context.Background(), assignmentMessage(t, "w1"))
	if err == nil {
		t.Fatalf("expected error surfaced for redelivery")
	}
	// The sms failure must not stop the email.
	if mailer.sentCount() != 1 {
		t.Fatalf("expected email delivered despite sms failure, got %d", mailer.sentCount())
	}
}

func TestNotifierSkipsEmailWhenAddressMissing(t *testing.T) {
	store := repository.NewMemoryStore()
	seedWorker(t, store, domain.Worker{ID: "w1", Name: "Raju", Phone: "9876543210"})

	sms := &fakeSMSGateway{}
	mailer := &fakeMailer{}
	notifier := NewNotifier(nil, store, sms, mailer, nil, nil)

	if err := notifier.handle(context.Background(), assignmentMessage(t, "w1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sms.sentCount() != 1 {
		t.Fatalf("expected sms delivered, got %d", sms.sentCount())
	}
	if mailer.sentCount() != 0 {
		t.Fatalf("expected no email for worker without address, got %d", mailer.sentCount())
	}
}

func TestNotifierDropsEventForDeletedWorker(t *testing.T) {
	store := repository.NewMemoryStore()
	notifier := NewNotifier(nil, store, &fakeSMSGateway{}, &fakeMailer{}, nil, nil)

	// A nil error acks the message so it is not redelivered forever.
	if err := notifier.handle(context.Background(), assignmentMessage(t, "gone")); err != nil {
		t.Fatalf("expected deleted worker to ack, got %v", err)
	}
}

func TestNotifierDropsUnknownKind(t *testing.T) {
	store := repository.NewMemoryStore()
	sms := &fakeSMSGateway{}
	notifier := NewNotifier(nil, store, sms, &fakeMailer{}, nil, nil)

	message := assignmentMessage(t, "w1")
	message.Kind = "assignment.unknown"
	if err := notifier.handle(context.Background(), message); err != nil {
		t.Fatalf("expected unknown kind to ack, got %v", err)
	}
	if sms.sentCount() != 0 {
		t.Fatalf("expected no delivery for unknown kind")
	}
}

func TestNotifierPublishesToHub(t *testing.T) {
	store := repository.NewMemoryStore()
	seedWorker(t, store, domain.Worker{ID: "w1", Name: "Raju", Phone: "9876543210"})

	hub := events.NewHub()
	subscription, cancel := hub.Subscribe("w1")
	defer cancel()

	notifier := NewNotifier(nil, store, &fakeSMSGateway{}, &fakeMailer{}, hub, nil)
	if err := notifier.handle(context.Background(), assignmentMessage(t, "w1")); err != nil {
		t.Fatalf("handle: %v", err)
	}

	select {
	case event := <-subscription:
		if event.EventID != "e1" || event.WorkerID != "w1" {
			t.Fatalf("unexpected event %+v", event)
		}
		if event.Details == nil || event.Details.JobID != "j1" {
			t.Fatalf("expected assignment details on event, got %+v", event.Details)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected event published to hub")
	}
}
