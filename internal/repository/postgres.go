package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/govind/worker-portal-back/internal/domain"
)

// PostgresStore is the durable backend for deployments where the
// flat-file lost-update window across processes is unacceptable. Each
// operation is a single row-level statement.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			salary TEXT NOT NULL,
			location TEXT NOT NULL,
			job_time TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS workers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			skill TEXT NOT NULL,
			location TEXT NOT NULL,
			assigned_job_id TEXT,
			assignment_details JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS complaints (
			id TEXT PRIMARY KEY,
			worker_id TEXT NOT NULL,
			complaint_type TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, statement := range statements {
		if _, err := s.pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) ListJobs(ctx context.Context) ([]domain.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, salary, location, job_time, color, category, phone
		FROM jobs
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.Job, 0)
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.Title,
			&job.Salary,
			&job.Location,
			&job.Time,
			&job.Color,
			&job.Category,
			&job.Phone,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *domain.Job) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO jobs (id, title, salary, location, job_time, color, category, phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, job.ID, job.Title, job.Salary, job.Location, job.Time, job.Color, job.Category, job.Phone)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListWorkers(ctx context.Context) ([]domain.Worker, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, phone, email, skill, location, assigned_job_id, assignment_details
		FROM workers
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}
	defer rows.Close()

	workers := make([]domain.Worker, 0)
	for rows.Next() {
		worker, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, *worker)
	}
	return workers, rows.Err()
}

func (s *PostgresStore) GetWorker(ctx context.Context, workerID string) (*domain.Worker, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, phone, email, skill, location, assigned_job_id, assignment_details
		FROM workers
		WHERE id = $1
	`, workerID)

	worker, err := scanWorker(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return worker, nil
}

func (s *PostgresStore) CreateWorker(ctx context.Context, worker *domain.Worker) error {
	details, err := encodeDetails(worker.AssignmentDetails)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO workers (id, name, phone, email, skill, location, assigned_job_id, assignment_details)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, worker.ID, worker.Name, worker.Phone, worker.Email, worker.Skill, worker.Location, worker.AssignedJobID, details)
	if err != nil {
		return fmt.Errorf("insert worker: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateWorker(ctx context.Context, worker *domain.Worker) error {
	details, err := encodeDetails(worker.AssignmentDetails)
	if err != nil {
		return err
	}
	command, err := s.pool.Exec(ctx, `
		UPDATE workers
		SET name = $2,
			phone = $3,
			email = $4,
			skill = $5,
			location = $6,
			assigned_job_id = $7,
			assignment_details = $8
		WHERE id = $1
	`, worker.ID, worker.Name, worker.Phone, worker.Email, worker.Skill, worker.Location, worker.AssignedJobID, details)
	if err != nil {
		return fmt.Errorf("update worker: %w", err)
	}
	if command.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteWorker(ctx context.Context, workerID string) error {
	command, err := s.pool.Exec(ctx, `DELETE FROM workers WHERE id = $1`, workerID)
	if err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	if command.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, worker_id, complaint_type, message, created_at
		FROM complaints
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query complaints: %w", err)
	}
	defer rows.Close()

	complaints := make([]domain.Complaint, 0)
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.WorkerID,
			&complaint.Type,
			&complaint.Message,
			&complaint.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		complaints = append(complaints, complaint)
	}
	return complaints, rows.Err()
}

func (s *PostgresStore) AppendComplaint(ctx context.Context, complaint *domain.Complaint) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO complaints (id, worker_id, complaint_type, message, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, complaint.ID, complaint.WorkerID, complaint.Type, complaint.Message, complaint.Timestamp)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func scanWorker(row pgx.Row) (*domain.Worker, error) {
	var (
		worker  domain.Worker
		details []byte
	)
	if err := row.Scan(
		&worker.ID,
		&worker.Name,
		&worker.Phone,
		&worker.Email,
		&worker.Skill,
		&worker.Location,
		&worker.AssignedJobID,
		&details,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan worker: %w", err)
	}

	if len(details) > 0 {
		var decoded domain.AssignmentDetails
		if err := json.Unmarshal(details, &decoded); err != nil {
			return nil, fmt.Errorf("decode assignment details: %w", err)
		}
		worker.AssignmentDetails = &decoded
	}
	return &worker, nil
}

func encodeDetails(details *domain.AssignmentDetails) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode assignment details: %w", err)
	}
	return encoded, nil
}
