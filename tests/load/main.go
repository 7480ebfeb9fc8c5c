package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/govind/worker-portal-back/internal/events"
	httpserver "github.com/govind/worker-portal-back/internal/http"
	"github.com/govind/worker-portal-back/internal/http/handlers"
	"github.com/govind/worker-portal-back/internal/notify"
	"github.com/govind/worker-portal-back/internal/otp"
	"github.com/govind/worker-portal-back/internal/queue"
	"github.com/govind/worker-portal-back/internal/repository"
	"github.com/govind/worker-portal-back/internal/service"
	"github.com/govind/worker-portal-back/internal/worker"
)

type scenarioResult struct {
	Name          string   `json:"name"`
	Total         int      `json:"total"`
	Success       int      `json:"success"`
	Errors        int      `json:"errors"`
	P50MS         float64  `json:"p50_ms"`
	P95MS         float64  `json:"p95_ms"`
	P99MS         float64  `json:"p99_ms"`
	MaxMS         float64  `json:"max_ms"`
	ThroughputRPS float64  `json:"throughput_rps"`
	ErrorSamples  []string `json:"error_samples,omitempty"`
}

type runResult struct {
	GeneratedAtUTC string           `json:"generated_at_utc"`
	Environment    string           `json:"environment"`
	Results        []scenarioResult `json:"results"`
	SLOEvaluation  map[string]bool  `json:"slo_evaluation"`
}

type benchmarkEnv struct {
	server *httptest.Server
	cancel context.CancelFunc
}

func main() {
	registrationsTotal := flag.Int("registrations-total", 200, "total worker registrations")
	registrationsConcurrency := flag.Int("registrations-concurrency", 16, "concurrency for registrations")
	jobsTotal := flag.Int("jobs-total", 150, "total job creations")
	jobsConcurrency := flag.Int("jobs-concurrency", 16, "concurrency for job creations")
	assignmentsTotal := flag.Int("assignments-total", 150, "total assignment updates")
	assignmentsConcurrency := flag.Int("assignments-concurrency", 16, "concurrency for assignment updates")
	pollsTotal := flag.Int("polls-total", 400, "total worker list polls")
	pollsConcurrency := flag.Int("polls-concurrency", 32, "concurrency for worker list polls")
	complaintsTotal := flag.Int("complaints-total", 100, "total complaint submissions")
	complaintsConcurrency := flag.Int("complaints-concurrency", 12, "concurrency for complaint submissions")
	outputPath := flag.String("output", "", "optional path to persist benchmark results JSON")
	flag.Parse()

	env, err := startBenchmarkEnvironment()
	if err != nil {
		log.Fatalf("failed to start local benchmark environment: %v", err)
	}
	defer env.cancel()
	defer env.server.Close()

	client := &http.Client{Timeout: 10 * time.Second}

	registrationsScenario := runScenario("workers_register", *registrationsTotal, *registrationsConcurrency, func(index int) error {
		payload := map[string]any{
			"name":     fmt.Sprintf("Worker %d", index),
			"phone":    fmt.Sprintf("98%08d", index),
			"skill":    []string{"plumbing", "painting", "masonry", "loading"}[index%4],
			"location": []string{"Guntur", "Vijayawada", "Tenali"}[index%3],
		}
		return postJSON(client, env.server.URL+"/workers/register", payload, http.StatusOK)
	})

	jobsScenario := runScenario("jobs_create", *jobsTotal, *jobsConcurrency, func(index int) error {
		payload := map[string]any{
			"title":    fmt.Sprintf("Job %d", index),
			"salary":   fmt.Sprintf("%d/day", 500+(index%5)*50),
			"location": "Market Road, Guntur",
			"time":     "7 AM - 4 PM",
		}
		return postJSON(client, env.server.URL+"/jobs", payload, http.StatusCreated)
	})

	// Assignments need real worker ids; take them from the directory.
	workerIDs, err := fetchWorkerIDs(client, env.server.URL)
	if err != nil || len(workerIDs) == 0 {
		log.Fatalf("failed to fetch worker ids for assignment scenario: %v", err)
	}

	assignmentsScenario := runScenario("workers_assign", *assignmentsTotal, *assignmentsConcurrency, func(index int) error {
		payload := map[string]any{
			"workerId": workerIDs[index%len(workerIDs)],
			"assignmentDetails": map[string]any{
				"jobId":         fmt.Sprintf("job-%d", index),
				"location":      "Market Road, Guntur",
				"guideName":     "Suresh",
				"guidePhone":    "9123456789",
				"reportingTime": "8:00 AM",
				"salary":        "700/day",
			},
		}
		return putJSON(client, env.server.URL+"/workers", payload, http.StatusOK)
	})

	pollsScenario := runScenario("workers_list", *pollsTotal, *pollsConcurrency, func(int) error {
		return getJSON(client, env.server.URL+"/workers", http.StatusOK)
	})

	complaintsScenario := runScenario("complaints_submit", *complaintsTotal, *complaintsConcurrency, func(index int) error {
		payload := map[string]any{
			"workerId": workerIDs[index%len(workerIDs)],
			"type":     []string{"payment", "safety", "other"}[index%3],
			"message":  fmt.Sprintf("issue report %d", index),
		}
		return postJSON(client, env.server.URL+"/complaints", payload, http.StatusCreated)
	})

	results := []scenarioResult{
		registrationsScenario,
		jobsScenario,
		assignmentsScenario,
		pollsScenario,
		complaintsScenario,
	}

	slo := map[string]bool{
		"workers_list_p95_le_200ms":   pollsScenario.P95MS <= 200,
		"workers_assign_p95_le_500ms": assignmentsScenario.P95MS <= 500,
	}

	report := runResult{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Environment:    "local-httptest",
		Results:        results,
		SLOEvaluation:  slo,
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal benchmark report: %v", err)
	}

	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, encoded, 0o644); err != nil {
			log.Fatalf("failed to write output file: %v", err)
		}
	}

	_, _ = fmt.Fprintln(os.Stdout, string(encoded))
}

func startBenchmarkEnvironment() (*benchmarkEnv, error) {
	ctx, cancel := context.WithCancel(context.Background())
	logger := log.New(io.Discard, "", 0)

	store := repository.NewMemoryStore()
	localQueue := queue.NewLocalQueue(4096, 3, logger)
	hub := events.NewHub()
	sms := notify.NewLogSMSGateway(logger)
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{}, logger)
	codes := otp.NewStore(otp.Config{TTL: time.Minute})

	jobsService := service.NewJobsService(store, logger)
	workersService := service.NewWorkersService(store, localQueue, logger)
	complaintsService := service.NewComplaintsService(store, logger)
	verificationService := service.NewVerificationService(workersService, codes, sms, logger)

	api := handlers.NewAPI(handlers.Dependencies{
		Jobs:         jobsService,
		Workers:      workersService,
		Complaints:   complaintsService,
		Verification: verificationService,
		Hub:          hub,
	})
	router := httpserver.NewRouter(httpserver.RouterDependencies{
		API:            api,
		Logger:         logger,
		AuthToken:      "",
		RateLimitRPS:   20000,
		RateLimitBurst: 20000,
	})

	notifier := worker.NewNotifier(localQueue, store, sms, mailer, hub, logger)
	go notifier.Start(ctx)

	server := httptest.NewServer(router)
	return &benchmarkEnv{
		server: server,
		cancel: cancel,
	}, nil
}

func fetchWorkerIDs(client *http.Client, baseURL string) ([]string, error) {
	response, err := client.Get(baseURL + "/workers")
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from worker list", response.StatusCode)
	}

	var workers []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(response.Body).Decode(&workers); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(workers))
	for _, item := range workers {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func runScenario(
	name string,
	total int,
	concurrency int,
	requestFn func(index int) error,
) scenarioResult {
	if total <= 0 {
		return scenarioResult{Name: name}
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	startedAt := time.Now()
	type sample struct {
		durationMS float64
		err        string
	}

	jobs := make(chan int, total)
	results := make(chan sample, total)
	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				requestStart := time.Now()
				err := requestFn(index)
				s := sample{
					durationMS: float64(time.Since(requestStart).Microseconds()) / 1000.0,
				}
				if err != nil {
					s.err = err.Error()
				}
				results <- s
			}
		}()
	}
	wg.Wait()
	close(results)

	durations := make([]float64, 0, total)
	errorSamples := make([]string, 0, 5)
	success := 0
	errorsCount := 0
	for item := range results {
		durations = append(durations, item.durationMS)
		if item.err == "" {
			success++
			continue
		}
		errorsCount++
		if len(errorSamples) < 5 {
			errorSamples = append(errorSamples, item.err)
		}
	}

	sort.Float64s(durations)
	elapsedSeconds := time.Since(startedAt).Seconds()
	throughput := 0.0
	if elapsedSeconds > 0 {
		throughput = float64(total) / elapsedSeconds
	}

	return scenarioResult{
		Name:          name,
		Total:         total,
		Success:       success,
		Errors:        errorsCount,
		P50MS:         percentile(durations, 0.50),
		P95MS:         percentile(durations, 0.95),
		P99MS:         percentile(durations, 0.99),
		MaxMS:         percentile(durations, 1.00),
		ThroughputRPS: round2(throughput),
		ErrorSamples:  errorSamples,
	}
}

func sendJSON(
	client *http.Client,
	method string,
	url string,
	payload any,
	expectedStatus int,
) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	request, err := http.NewRequest(method, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != expectedStatus {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("unexpected status %d (expected %d): %s", response.StatusCode, expectedStatus, string(body))
	}
	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}

func postJSON(client *http.Client, url string, payload any, expectedStatus int) error {
	return sendJSON(client, http.MethodPost, url, payload, expectedStatus)
}

func putJSON(client *http.Client, url string, payload any, expectedStatus int) error {
	return sendJSON(client, http.MethodPut, url, payload, expectedStatus)
}

func getJSON(client *http.Client, url string, expectedStatus int) error {
	request, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != expectedStatus {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("unexpected status %d (expected %d): %s", response.StatusCode, expectedStatus, string(body))
	}
	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return round2(values[0])
	}
	if p >= 1 {
		return round2(values[len(values)-1])
	}
	rank := int(math.Ceil(float64(len(values))*p)) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(values) {
		rank = len(values) - 1
	}
	return round2(values[rank])
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
