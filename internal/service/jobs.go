package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/govind/worker-portal-back/internal/domain"
	"github.com/govind/worker-portal-back/internal/repository"
)

// ErrMissingFields marks a request missing a required field.
var ErrMissingFields = errors.New("missing required fields")

type JobsService struct {
	store  repository.Store
	ids    idSource
	logger *log.Logger
}

func NewJobsService(store repository.Store, logger *log.Logger) *JobsService {
	return &JobsService{store: store, logger: logger}
}

// List returns the full job collection. Store failures degrade to an
// empty listing: browsing must keep working when the backing file is
// unreadable.
func (s *JobsService) List(ctx context.Context) []domain.Job {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("list jobs failed, serving empty collection err=%v", err)
		}
		return []domain.Job{}
	}
	return jobs
}

type CreateJobInput struct {
	Title    string
	Salary   string
	Location string
	Time     string
	Color    string
	Category string
	Phone    string
}

func (s *JobsService) Create(ctx context.Context, input CreateJobInput) (*domain.Job, error) {
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Salary) == "" ||
		strings.TrimSpace(input.Location) == "" ||
		strings.TrimSpace(input.Time) == "" {
		return nil, ErrMissingFields
	}

	color := input.Color
	if color == "" {
		color = "bg-blue-500 text-blue-700"
	}
	phone := input.Phone
	if phone == "" {
		phone = domain.DefaultContactPhone
	}

	job := &domain.Job{
		ID:       s.ids.next(),
		Title:    input.Title,
		Salary:   input.Salary,
		Location: input.Location,
		Time:     input.Time,
		Color:    color,
		Category: input.Category,
		Phone:    phone,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}
