package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
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

type capturingSMS struct {
	mu       sync.Mutex
	messages map[string][]string
}

func (g *capturingSMS) Send(_ context.Context, phone, message string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.messages == nil {
		g.messages = make(map[string][]string)
	}
	g.messages[phone] = append(g.messages[phone], message)
	return nil
}

func (g *capturingSMS) count(phone string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.messages[phone])
}

func (g *capturingSMS) last(phone string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	sent := g.messages[phone]
	if len(sent) == 0 {
		return ""
	}
	return sent[len(sent)-1]
}

type integrationRuntime struct {
	server *httptest.Server
	sms    *capturingSMS
	cancel context.CancelFunc
}

func startIntegrationRuntime(t *testing.T) integrationRuntime {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	logger := log.New(io.Discard, "", 0)

	store := repository.NewMemoryStore()
	localQueue := queue.NewLocalQueue(2048, 3, logger)
	hub := events.NewHub()
	sms := &capturingSMS{}
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
	return integrationRuntime{
		server: server,
		sms:    sms,
		cancel: func() {
			cancel()
			server.Close()
		},
	}
}

func doJSON(
	t *testing.T,
	client *http.Client,
	method string,
	url string,
	payload any,
) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}
	request, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if err != nil {
		t.Fatalf("execute request: %v", err)
	}
	defer response.Body.Close()

	raw, _ := io.ReadAll(response.Body)
	if len(raw) == 0 {
		return response.StatusCode, map[string]any{}
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode response body (%d): %s", response.StatusCode, string(raw))
	}
	return response.StatusCode, decoded
}

func getJSONList(t *testing.T, client *http.Client, url string) (int, []map[string]any) {
	t.Helper()

	response, err := client.Get(url)
	if err != nil {
		t.Fatalf("execute get request: %v", err)
	}
	defer response.Body.Close()

	raw, _ := io.ReadAll(response.Body)
	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode list body (%d): %s", response.StatusCode, string(raw))
	}
	return response.StatusCode, decoded
}

func registerWorker(t *testing.T, client *http.Client, baseURL, name, phone string) string {
	t.Helper()

	status, body := doJSON(t, client, http.MethodPost, baseURL+"/workers/register", map[string]any{
		"name":     name,
		"phone":    phone,
		"email":    "raju@example.com",
		"skill":    "plumbing",
		"location": "Guntur",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 from registration, got %d body=%+v", status, body)
	}
	registered, ok := body["worker"].(map[string]any)
	if !ok {
		t.Fatalf("expected worker payload, got %+v", body)
	}
	id, _ := registered["id"].(string)
	if id == "" {
		t.Fatalf("expected worker id, got %+v", registered)
	}
	return id
}

func TestAssignmentLifecycle(t *testing.T) {
	runtime := startIntegrationRuntime(t)
	defer runtime.cancel()

	client := runtime.server.Client()
	baseURL := runtime.server.URL

	workerID := registerWorker(t, client, baseURL, "Raju", "9876543210")

	// Fresh registration shows up unassigned.
	status, workers := getJSONList(t, client, baseURL+"/workers")
	if status != http.StatusOK || len(workers) != 1 {
		t.Fatalf("expected one worker listed, got %d body=%+v", status, workers)
	}
	if workers[0]["assignedJobId"] != nil {
		t.Fatalf("expected null assignedJobId for new worker, got %+v", workers[0])
	}

	jobStatus, job := doJSON(t, client, http.MethodPost, baseURL+"/jobs", map[string]any{
		"title":    "Construction Helper",
		"salary":   "700/day",
		"location": "Market Road, Guntur",
		"time":     "7 AM - 4 PM",
	})
	if jobStatus != http.StatusCreated {
		t.Fatalf("expected 201 from job creation, got %d body=%+v", jobStatus, job)
	}
	jobID := fmt.Sprintf("%.0f", job["id"].(float64))

	assignStatus, assignBody := doJSON(t, client, http.MethodPut, baseURL+"/workers", map[string]any{
		"workerId": workerID,
		"assignmentDetails": map[string]any{
			"jobId":         jobID,
			"location":      "Market Road, Guntur",
			"guideName":     "Suresh",
			"guidePhone":    "9123456789",
			"reportingTime": "8:00 AM",
			"instructions":  "Bring safety boots",
			"salary":        "700/day",
		},
	})
	if assignStatus != http.StatusOK {
		t.Fatalf("expected 200 from assignment, got %d body=%+v", assignStatus, assignBody)
	}
	if success, _ := assignBody["success"].(bool); !success {
		t.Fatalf("expected success=true, got %+v", assignBody)
	}

	// Assignment is visible to the next listing poll.
	_, workers = getJSONList(t, client, baseURL+"/workers")
	if workers[0]["assignedJobId"] != jobID {
		t.Fatalf("expected assignedJobId=%s visible, got %+v", jobID, workers[0])
	}
	details, ok := workers[0]["assignmentDetails"].(map[string]any)
	if !ok || details["guideName"] != "Suresh" {
		t.Fatalf("expected assignment details visible, got %+v", workers[0])
	}

	// The notifier delivers an assignment SMS out of band.
	deadline := time.Now().Add(3 * time.Second)
	for runtime.sms.count("9876543210") == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if message := runtime.sms.last("9876543210"); !strings.Contains(message, "assigned a job") {
		t.Fatalf("expected assignment sms, got %q", message)
	}

	// Clearing removes both fields together.
	clearStatus, clearBody := doJSON(t, client, http.MethodPut, baseURL+"/workers", map[string]any{
		"workerId":          workerID,
		"assignmentDetails": nil,
	})
	if clearStatus != http.StatusOK {
		t.Fatalf("expected 200 from unassignment, got %d body=%+v", clearStatus, clearBody)
	}
	_, workers = getJSONList(t, client, baseURL+"/workers")
	if workers[0]["assignedJobId"] != nil {
		t.Fatalf("expected cleared assignedJobId, got %+v", workers[0])
	}
	if _, present := workers[0]["assignmentDetails"]; present {
		t.Fatalf("expected assignmentDetails omitted after clear, got %+v", workers[0])
	}
}

func TestDuplicatePhoneRejected(t *testing.T) {
	runtime := startIntegrationRuntime(t)
	defer runtime.cancel()

	client := runtime.server.Client()
	baseURL := runtime.server.URL

	registerWorker(t, client, baseURL, "Raju", "9876543210")

	status, body := doJSON(t, client, http.MethodPost, baseURL+"/workers/register", map[string]any{
		"name":     "Someone Else",
		"phone":    "9876543210",
		"skill":    "painting",
		"location": "Vijayawada",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate phone, got %d body=%+v", status, body)
	}
	envelope, ok := body["error"].(map[string]any)
	if !ok || envelope["code"] != "duplicate_phone" {
		t.Fatalf("expected duplicate_phone error envelope, got %+v", body)
	}

	_, workers := getJSONList(t, client, baseURL+"/workers")
	if len(workers) != 1 {
		t.Fatalf("expected collection unchanged, got %d workers", len(workers))
	}
}

func TestJobCreationValidation(t *testing.T) {
	runtime := startIntegrationRuntime(t)
	defer runtime.cancel()

	client := runtime.server.Client()
	baseURL := runtime.server.URL

	status, body := doJSON(t, client, http.MethodPost, baseURL+"/jobs", map[string]any{
		"title":    "Loading Work",
		"salary":   "600/day",
		"location": "Guntur",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing time, got %d body=%+v", status, body)
	}

	listStatus, jobs := getJSONList(t, client, baseURL+"/jobs")
	if listStatus != http.StatusOK || len(jobs) != 0 {
		t.Fatalf("expected empty job collection after rejected create, got %+v", jobs)
	}
}

func TestComplaintRoundTrip(t *testing.T) {
	runtime := startIntegrationRuntime(t)
	defer runtime.cancel()

	client := runtime.server.Client()
	baseURL := runtime.server.URL

	status, created := doJSON(t, client, http.MethodPost, baseURL+"/complaints", map[string]any{
		"workerId": "w1",
		"type":     "payment",
		"message":  "wage not paid for Monday shift",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from complaint, got %d body=%+v", status, created)
	}
	if created["id"] == "" || created["timestamp"] == nil {
		t.Fatalf("expected server-issued id and timestamp, got %+v", created)
	}

	listStatus, complaints := getJSONList(t, client, baseURL+"/complaints")
	if listStatus != http.StatusOK || len(complaints) != 1 {
		t.Fatalf("expected one complaint listed, got %+v", complaints)
	}
	if complaints[0]["message"] != "wage not paid for Monday shift" {
		t.Fatalf("expected complaint content preserved, got %+v", complaints[0])
	}
}

func TestPhoneVerificationFlow(t *testing.T) {
	runtime := startIntegrationRuntime(t)
	defer runtime.cancel()

	client := runtime.server.Client()
	baseURL := runtime.server.URL

	beginStatus, beginBody := doJSON(t, client, http.MethodPost, baseURL+"/workers/otp", map[string]any{
		"name":     "Raju",
		"phone":    "9876543210",
		"skill":    "plumbing",
		"location": "Guntur",
	})
	if beginStatus != http.StatusOK {
		t.Fatalf("expected 200 from otp request, got %d body=%+v", beginStatus, beginBody)
	}

	// No worker record until the code is confirmed.
	_, workers := getJSONList(t, client, baseURL+"/workers")
	if len(workers) != 0 {
		t.Fatalf("expected no worker before verification, got %d", len(workers))
	}

	message := runtime.sms.last("9876543210")
	if message == "" {
		t.Fatalf("expected verification sms sent")
	}
	code := message[len(message)-6:]

	wrongStatus, wrongBody := doJSON(t, client, http.MethodPost, baseURL+"/workers/verify", map[string]any{
		"phone": "9876543210",
		"otp":   "xxxxxx",
	})
	if wrongStatus != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong code, got %d body=%+v", wrongStatus, wrongBody)
	}

	verifyStatus, verifyBody := doJSON(t, client, http.MethodPost, baseURL+"/workers/verify", map[string]any{
		"phone": "9876543210",
		"otp":   code,
	})
	if verifyStatus != http.StatusOK {
		t.Fatalf("expected 200 from verification, got %d body=%+v", verifyStatus, verifyBody)
	}

	_, workers = getJSONList(t, client, baseURL+"/workers")
	if len(workers) != 1 || workers[0]["phone"] != "9876543210" {
		t.Fatalf("expected verified worker registered, got %+v", workers)
	}

	// The code is single use.
	replayStatus, _ := doJSON(t, client, http.MethodPost, baseURL+"/workers/verify", map[string]any{
		"phone": "9876543210",
		"otp":   code,
	})
	if replayStatus != http.StatusBadRequest {
		t.Fatalf("expected 400 on replayed code, got %d", replayStatus)
	}
}

func TestAssignmentEventStream(t *testing.T) {
	runtime := startIntegrationRuntime(t)
	defer runtime.cancel()

	client := runtime.server.Client()
	baseURL := runtime.server.URL

	workerID := registerWorker(t, client, baseURL, "Raju", "9876543210")

	streamCtx, cancelStream := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStream()

	request, err := http.NewRequestWithContext(streamCtx, http.MethodGet, baseURL+"/workers/events?id="+workerID, nil)
	if err != nil {
		t.Fatalf("build stream request: %v", err)
	}
	response, err := client.Do(request)
	if err != nil {
		t.Fatalf("open event stream: %v", err)
	}
	defer response.Body.Close()
	if contentType := response.Header.Get("Content-Type"); contentType != "text/event-stream" {
		t.Fatalf("expected event stream content type, got %q", contentType)
	}

	received := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(response.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data: ") {
				received <- strings.TrimPrefix(line, "data: ")
				return
			}
		}
	}()

	// Give the subscriber a moment to attach before assigning.
	time.Sleep(100 * time.Millisecond)

	assignStatus, assignBody := doJSON(t, client, http.MethodPut, baseURL+"/workers", map[string]any{
		"workerId": workerID,
		"assignmentDetails": map[string]any{
			"jobId":     "j1",
			"location":  "Market Road",
			"guideName": "Suresh",
		},
	})
	if assignStatus != http.StatusOK {
		t.Fatalf("expected 200 from assignment, got %d body=%+v", assignStatus, assignBody)
	}

	select {
	case data := <-received:
		var event map[string]any
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			t.Fatalf("decode stream event: %s", data)
		}
		if event["worker_id"] != workerID {
			t.Fatalf("expected event for worker %s, got %+v", workerID, event)
		}
		details, ok := event["details"].(map[string]any)
		if !ok || details["jobId"] != "j1" {
			t.Fatalf("expected assignment details in event, got %+v", event)
		}
	case <-time.After(4 * time.Second):
		t.Fatalf("timeout waiting for assignment event on stream")
	}
}
