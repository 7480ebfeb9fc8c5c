package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/govind/worker-portal-back/internal/config"
	"github.com/govind/worker-portal-back/internal/domain"
	"github.com/govind/worker-portal-back/internal/watcher"
)

func main() {
	logger := log.New(os.Stdout, "[watcher] ", log.LstdFlags|log.LUTC)
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		logger.Printf("failed loading .env files: %v", err)
	}
	cfg := config.LoadWatcher()

	if cfg.WorkerID == "" {
		logger.Fatalf("WORKER_ID is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agent, err := watcher.New(watcher.Config{
		BaseURL:      cfg.APIBaseURL,
		WorkerID:     cfg.WorkerID,
		CacheFile:    cfg.CacheFile,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
		OnAssignment: func(worker domain.Worker) {
			details := worker.AssignmentDetails
			if details == nil {
				logger.Printf("new assignment for %s (job %s)", worker.Name, deref(worker.AssignedJobID))
				return
			}
			logger.Printf(
				"new assignment for %s: job %s at %s, report to %s (%s) at %s, salary %s",
				worker.Name,
				details.JobID,
				details.Location,
				details.GuideName,
				details.GuidePhone,
				details.ReportingTime,
				details.Salary,
			)
			if details.Instructions != "" {
				logger.Printf("instructions: %s", details.Instructions)
			}
		},
	})
	if err != nil {
		logger.Fatalf("watcher setup failed: %v", err)
	}

	logger.Printf(
		"watching worker_id=%s api=%s poll=%s cache=%s",
		cfg.WorkerID,
		cfg.APIBaseURL,
		cfg.PollInterval,
		cfg.CacheFile,
	)
	agent.Run(ctx)
	logger.Printf("watcher stopped")
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
