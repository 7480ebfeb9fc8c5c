package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/govind/worker-portal-back/internal/domain"
	"github.com/govind/worker-portal-back/internal/queue"
	"github.com/govind/worker-portal-back/internal/repository"
)

// ErrDuplicatePhone marks a registration reusing an existing phone
// number. Uniqueness is checked only here, never on later updates.
var ErrDuplicatePhone = errors.New("worker already registered")

type WorkersService struct {
	store    repository.Store
	producer queue.Producer
	ids      idSource
	logger   *log.Logger
}

func NewWorkersService(store repository.Store, producer queue.Producer, logger *log.Logger) *WorkersService {
	return &WorkersService{store: store, producer: producer, logger: logger}
}

// List returns the full worker directory, degrading to empty on store
// failure like the job listing does.
func (s *WorkersService) List(ctx context.Context) []domain.Worker {
	workers, err := s.store.ListWorkers(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("list workers failed, serving empty collection err=%v", err)
		}
		return []domain.Worker{}
	}
	return workers
}

func (s *WorkersService) Register(ctx context.Context, registration domain.Registration) (*domain.Worker, error) {
	if strings.TrimSpace(registration.Name) == "" ||
		strings.TrimSpace(registration.Phone) == "" ||
		strings.TrimSpace(registration.Skill) == "" ||
		strings.TrimSpace(registration.Location) == "" {
		return nil, ErrMissingFields
	}

	workers, err := s.store.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("check existing workers: %w", err)
	}
	for _, existing := range workers {
		if existing.Phone == registration.Phone {
			return nil, ErrDuplicatePhone
		}
	}

	worker := &domain.Worker{
		ID:            strconv.FormatInt(s.ids.next(), 10),
		Name:          registration.Name,
		Phone:         registration.Phone,
		Email:         registration.Email,
		Skill:         registration.Skill,
		Location:      registration.Location,
		AssignedJobID: nil,
	}

	if err := s.store.CreateWorker(ctx, worker); err != nil {
		return nil, fmt.Errorf("create worker: %w", err)
	}
	return worker, nil
}

// Assign sets or clears a worker's assignment. Both fields move
// together. Success is decided by the store write alone; the
// notification event emitted afterwards is best effort.
func (s *WorkersService) Assign(
	ctx context.Context,
	workerID string,
	details *domain.AssignmentDetails,
) (*domain.Worker, error) {
	if strings.TrimSpace(workerID) == "" {
		return nil, ErrMissingFields
	}

	worker, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}

	if details != nil {
		jobID := details.JobID
		copied := *details
		worker.AssignedJobID = &jobID
		worker.AssignmentDetails = &copied
	} else {
		worker.AssignedJobID = nil
		worker.AssignmentDetails = nil
	}

	if err := s.store.UpdateWorker(ctx, worker); err != nil {
		return nil, fmt.Errorf("update worker: %w", err)
	}

	if details != nil {
		s.emitAssigned(ctx, worker)
	}
	return worker, nil
}

// Unassign clears the assignment. Self-service completion goes through
// the same path; neither emits an event.
func (s *WorkersService) Unassign(ctx context.Context, workerID string) (*domain.Worker, error) {
	return s.Assign(ctx, workerID, nil)
}

func (s *WorkersService) Delete(ctx context.Context, workerID string) error {
	if strings.TrimSpace(workerID) == "" {
		return ErrMissingFields
	}
	return s.store.DeleteWorker(ctx, workerID)
}

func (s *WorkersService) emitAssigned(ctx context.Context, worker *domain.Worker) {
	if s.producer == nil {
		return
	}

	payload, err := json.Marshal(worker.AssignmentDetails)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("encode assignment event failed worker_id=%s err=%v", worker.ID, err)
		}
		return
	}

	message := domain.QueueMessage{
		EventID:     uuid.NewString(),
		Kind:        domain.EventKindAssigned,
		WorkerID:    worker.ID,
		Payload:     payload,
		Attempt:     0,
		RequestedAt: time.Now().UTC(),
	}

	// The assignment already committed; a failed enqueue only costs
	// the notification, never the assignment.
	if err := s.producer.Enqueue(ctx, message); err != nil && s.logger != nil {
		s.logger.Printf("emit assignment event failed worker_id=%s err=%v", worker.ID, err)
	}
}
