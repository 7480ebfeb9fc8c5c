package queue

import (
	"context"

	"github.com/govind/worker-portal-back/internal/domain"
)

// Producer sends notification events to a queue backend.
type Producer interface {
	Enqueue(ctx context.Context, message domain.QueueMessage) error
}

// Consumer receives notification events and executes handlers.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, domain.QueueMessage) error) error
}
