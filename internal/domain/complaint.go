package domain

import "time"

// Complaint is an append-only worker issue report. WorkerID is stored
// as submitted; it is not validated against the worker directory.
type Complaint struct {
	ID        string    `json:"id"`
	WorkerID  string    `json:"workerId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
