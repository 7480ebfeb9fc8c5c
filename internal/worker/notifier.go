package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/govind/worker-portal-back/internal/domain"
	"github.com/govind/worker-portal-back/internal/events"
	"github.com/govind/worker-portal-back/internal/notify"
	"github.com/govind/worker-portal-back/internal/policy"
	"github.com/govind/worker-portal-back/internal/queue"
	"github.com/govind/worker-portal-back/internal/repository"
)

// Notifier consumes assignment events and fans them out to the SMS and
// email channels plus the push hub. The two delivery channels are
// independent: one failing never stops the other, and neither outcome
// reaches the caller that made the assignment. Failed deliveries are
// redelivered by the queue and eventually dead-lettered.
type Notifier struct {
	consumer queue.Consumer
	store    repository.Store
	sms      notify.SMSGateway
	mailer   notify.Mailer
	hub      *events.Hub
	logger   *log.Logger
}

func NewNotifier(
	consumer queue.Consumer,
	store repository.Store,
	sms notify.SMSGateway,
	mailer notify.Mailer,
	hub *events.Hub,
	logger *log.Logger,
) *Notifier {
	return &Notifier{
		consumer: consumer,
		store:    store,
		sms:      sms,
		mailer:   mailer,
		hub:      hub,
		logger:   logger,
	}
}

func (n *Notifier) Start(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := n.consumer.Consume(ctx, n.handle)
		if err == nil || ctx.Err() != nil {
			return
		}
		if n.logger != nil {
			n.logger.Printf("notifier consume loop error: %v", err)
		}

		timer := time.NewTimer(2 * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (n *Notifier) handle(ctx context.Context, message domain.QueueMessage) error {
	if message.Kind != domain.EventKindAssigned {
		if n.logger != nil {
			n.logger.Printf("notifier dropped unknown event kind=%s event_id=%s", message.Kind, message.EventID)
		}
		return nil
	}

	worker, err := n.store.GetWorker(ctx, message.WorkerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Worker deleted between the write and delivery; nothing to notify.
			return nil
		}
		return fmt.Errorf("load worker %s: %w", message.WorkerID, err)
	}

	var details domain.AssignmentDetails
	if err := json.Unmarshal(message.Payload, &details); err != nil {
		return fmt.Errorf("decode assignment payload: %w", err)
	}

	var deliveryErrs []error

	if worker.Phone != "" {
		body := notify.AssignmentSMS(worker.Name, details)
		if err := n.sms.Send(ctx, worker.Phone, body); err != nil {
			deliveryErrs = append(deliveryErrs, fmt.Errorf("sms: %w", err))
			if n.logger != nil {
				n.logger.Printf(
					"sms dispatch failed worker_id=%s err=%s",
					worker.ID,
					policy.MaskPII(err.Error()),
				)
			}
		}
	}

	if worker.Email != "" {
		if err := n.mailer.SendAssignment(ctx, worker.Email, worker.Name, details); err != nil {
			deliveryErrs = append(deliveryErrs, fmt.Errorf("email: %w", err))
			if n.logger != nil {
				n.logger.Printf(
					"email dispatch failed worker_id=%s err=%s",
					worker.ID,
					policy.MaskPII(err.Error()),
				)
			}
		}
	}

	if n.hub != nil {
		n.hub.Publish(domain.Event{
			EventID:    message.EventID,
			Kind:       message.Kind,
			WorkerID:   worker.ID,
			Details:    &details,
			OccurredAt: message.RequestedAt,
		})
	}

	if len(deliveryErrs) > 0 {
		return errors.Join(deliveryErrs...)
	}

	if n.logger != nil {
		n.logger.Printf("assignment notified worker_id=%s event_id=%s", worker.ID, message.EventID)
	}
	return nil
}
