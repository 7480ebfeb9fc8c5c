package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/govind/worker-portal-back/internal/domain"
)

const (
	storeFileName      = "db.json"
	complaintsFileName = "complaints.json"
)

// document is the on-disk layout of the main store: exactly two
// top-level collections, pretty-printed for hand inspection.
type document struct {
	Workers []domain.Worker `json:"workers"`
	Jobs    []domain.Job    `json:"jobs"`
}

// FileStore persists the whole document to a JSON file on every write.
// A missing file is an empty store, not an error; an unreadable or
// malformed file degrades to the empty default without overwriting it.
// All access is serialized behind one mutex and writes go through a
// temp file + rename, so torn writes and in-process lost updates
// cannot occur. Cross-process writers still race; the Postgres backend
// is the answer when that matters.
type FileStore struct {
	mu             sync.Mutex
	storePath      string
	complaintsPath string
	logger         *log.Logger
}

func NewFileStore(dataDir string, logger *log.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{
		storePath:      filepath.Join(dataDir, storeFileName),
		complaintsPath: filepath.Join(dataDir, complaintsFileName),
		logger:         logger,
	}, nil
}

func (s *FileStore) ListJobs(_ context.Context) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	return append([]domain.Job(nil), doc.Jobs...), nil
}

func (s *FileStore) CreateJob(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	doc.Jobs = append(doc.Jobs, *job)
	return s.save(doc)
}

func (s *FileStore) ListWorkers(_ context.Context) ([]domain.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	workers := make([]domain.Worker, 0, len(doc.Workers))
	for _, worker := range doc.Workers {
		workers = append(workers, cloneWorker(worker))
	}
	return workers, nil
}

func (s *FileStore) GetWorker(_ context.Context, workerID string) (*domain.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for _, worker := range doc.Workers {
		if worker.ID == workerID {
			clone := cloneWorker(worker)
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) CreateWorker(_ context.Context, worker *domain.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	doc.Workers = append(doc.Workers, cloneWorker(*worker))
	return s.save(doc)
}

func (s *FileStore) UpdateWorker(_ context.Context, worker *domain.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for index := range doc.Workers {
		if doc.Workers[index].ID == worker.ID {
			doc.Workers[index] = cloneWorker(*worker)
			return s.save(doc)
		}
	}
	return ErrNotFound
}

func (s *FileStore) DeleteWorker(_ context.Context, workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for index := range doc.Workers {
		if doc.Workers[index].ID == workerID {
			doc.Workers = append(doc.Workers[:index], doc.Workers[index+1:]...)
			return s.save(doc)
		}
	}
	return ErrNotFound
}

func (s *FileStore) ListComplaints(_ context.Context) ([]domain.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Complaint(nil), s.loadComplaints()...), nil
}

func (s *FileStore) AppendComplaint(_ context.Context, complaint *domain.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	complaints := append(s.loadComplaints(), *complaint)
	return writeJSONFile(s.complaintsPath, complaints)
}

func (s *FileStore) load() document {
	empty := document{Workers: []domain.Worker{}, Jobs: []domain.Job{}}

	raw, err := os.ReadFile(s.storePath)
	if os.IsNotExist(err) {
		// Fabricate and persist the empty default so the file exists
		// from the first read onwards.
		if writeErr := writeJSONFile(s.storePath, empty); writeErr != nil && s.logger != nil {
			s.logger.Printf("file store init failed path=%s err=%v", s.storePath, writeErr)
		}
		return empty
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("file store read failed path=%s err=%v", s.storePath, err)
		}
		return empty
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		if s.logger != nil {
			s.logger.Printf("file store parse failed path=%s err=%v", s.storePath, err)
		}
		return empty
	}
	if doc.Workers == nil {
		doc.Workers = []domain.Worker{}
	}
	if doc.Jobs == nil {
		doc.Jobs = []domain.Job{}
	}
	return doc
}

func (s *FileStore) save(doc document) error {
	if err := writeJSONFile(s.storePath, doc); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

func (s *FileStore) loadComplaints() []domain.Complaint {
	raw, err := os.ReadFile(s.complaintsPath)
	if os.IsNotExist(err) {
		if writeErr := writeJSONFile(s.complaintsPath, []domain.Complaint{}); writeErr != nil && s.logger != nil {
			s.logger.Printf("complaints log init failed path=%s err=%v", s.complaintsPath, writeErr)
		}
		return []domain.Complaint{}
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("complaints log read failed path=%s err=%v", s.complaintsPath, err)
		}
		return []domain.Complaint{}
	}

	var complaints []domain.Complaint
	if err := json.Unmarshal(raw, &complaints); err != nil {
		if s.logger != nil {
			s.logger.Printf("complaints log parse failed path=%s err=%v", s.complaintsPath, err)
		}
		return []domain.Complaint{}
	}
	return complaints
}

func writeJSONFile(path string, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	temp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(encoded); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
