package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/govind/worker-portal-back/internal/domain"
)

var ErrNotFound = errors.New("resource not found")

// Store abstracts persistence for the three collections. Jobs are
// append-only, workers support the full assignment lifecycle and
// complaints are an append-only log kept apart from the main document.
type Store interface {
	ListJobs(ctx context.Context) ([]domain.Job, error)
	CreateJob(ctx context.Context, job *domain.Job) error

	ListWorkers(ctx context.Context) ([]domain.Worker, error)
	GetWorker(ctx context.Context, workerID string) (*domain.Worker, error)
	CreateWorker(ctx context.Context, worker *domain.Worker) error
	UpdateWorker(ctx context.Context, worker *domain.Worker) error
	DeleteWorker(ctx context.Context, workerID string) error

	ListComplaints(ctx context.Context) ([]domain.Complaint, error)
	AppendComplaint(ctx context.Context, complaint *domain.Complaint) error
}

// MemoryStore keeps everything in process memory for tests and as the
// last-resort fallback when no durable backend can be initialized.
type MemoryStore struct {
	mu         sync.RWMutex
	jobs       []domain.Job
	workers    []domain.Worker
	complaints []domain.Complaint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:       make([]domain.Job, 0),
		workers:    make([]domain.Worker, 0),
		complaints: make([]domain.Complaint, 0),
	}
}

func (s *MemoryStore) ListJobs(_ context.Context) ([]domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Job(nil), s.jobs...), nil
}

func (s *MemoryStore) CreateJob(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, *job)
	return nil
}

func (s *MemoryStore) ListWorkers(_ context.Context) ([]domain.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workers := make([]domain.Worker, 0, len(s.workers))
	for _, worker := range s.workers {
		workers = append(workers, cloneWorker(worker))
	}
	return workers, nil
}

func (s *MemoryStore) GetWorker(_ context.Context, workerID string) (*domain.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, worker := range s.workers {
		if worker.ID == workerID {
			clone := cloneWorker(worker)
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateWorker(_ context.Context, worker *domain.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, cloneWorker(*worker))
	return nil
}

func (s *MemoryStore) UpdateWorker(_ context.Context, worker *domain.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for index := range s.workers {
		if s.workers[index].ID == worker.ID {
			s.workers[index] = cloneWorker(*worker)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteWorker(_ context.Context, workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for index := range s.workers {
		if s.workers[index].ID == workerID {
			s.workers = append(s.workers[:index], s.workers[index+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListComplaints(_ context.Context) ([]domain.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Complaint(nil), s.complaints...), nil
}

func (s *MemoryStore) AppendComplaint(_ context.Context, complaint *domain.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints = append(s.complaints, *complaint)
	return nil
}

func cloneWorker(worker domain.Worker) domain.Worker {
	clone := worker
	if worker.AssignedJobID != nil {
		jobID := *worker.AssignedJobID
		clone.AssignedJobID = &jobID
	}
	if worker.AssignmentDetails != nil {
		details := *worker.AssignmentDetails
		clone.AssignmentDetails = &details
	}
	return clone
}
