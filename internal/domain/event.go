package domain

import (
	"encoding/json"
	"time"
)

type EventKind string

const (
	// EventKindAssigned is emitted after an assignment write commits.
	// Unassignment is silent: it produces no event.
	EventKindAssigned EventKind = "assignment.assigned"
)

// Event is the domain event delivered to push subscribers.
type Event struct {
	EventID    string             `json:"event_id"`
	Kind       EventKind          `json:"kind"`
	WorkerID   string             `json:"worker_id"`
	Details    *AssignmentDetails `json:"details,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// QueueMessage is the transport format sent to queue backends.
type QueueMessage struct {
	EventID     string          `json:"event_id"`
	Kind        EventKind       `json:"kind"`
	WorkerID    string          `json:"worker_id"`
	Payload     json.RawMessage `json:"payload"`
	Attempt     int             `json:"attempt"`
	RequestedAt time.Time       `json:"requested_at"`
}
