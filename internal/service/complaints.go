package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/govind/worker-portal-back/internal/domain"
	"github.com/govind/worker-portal-back/internal/repository"
)

type ComplaintsService struct {
	store  repository.Store
	ids    idSource
	logger *log.Logger
}

func NewComplaintsService(store repository.Store, logger *log.Logger) *ComplaintsService {
	return &ComplaintsService{store: store, logger: logger}
}

func (s *ComplaintsService) List(ctx context.Context) []domain.Complaint {
	complaints, err := s.store.ListComplaints(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("list complaints failed, serving empty collection err=%v", err)
		}
		return []domain.Complaint{}
	}
	return complaints
}

// Append records a complaint. The worker reference is stored as
// submitted; the original never validated it against the directory.
func (s *ComplaintsService) Append(
	ctx context.Context,
	workerID string,
	complaintType string,
	message string,
) (*domain.Complaint, error) {
	complaint := &domain.Complaint{
		ID:        strconv.FormatInt(s.ids.next(), 10),
		WorkerID:  workerID,
		Type:      complaintType,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := s.store.AppendComplaint(ctx, complaint); err != nil {
		return nil, fmt.Errorf("append complaint: %w", err)
	}
	return complaint, nil
}
