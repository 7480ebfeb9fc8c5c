package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/govind/worker-portal-back/internal/domain"
)

const defaultPollInterval = 5 * time.Second

// Config wires a Watcher to one worker's view of the portal.
type Config struct {
	BaseURL      string
	WorkerID     string
	CacheFile    string
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       *log.Logger

	// OnAssignment fires exactly once per unassigned-to-assigned
	// transition. All other record changes update the cache silently.
	OnAssignment func(worker domain.Worker)
}

// Watcher approximates push updates for one worker session: it polls
// the worker directory, locates its own record and diffs it against
// the cached copy. The cache is persisted so a restart does not replay
// a notification for an assignment already seen.
type Watcher struct {
	cfg    Config
	cached *domain.Worker
}

func New(cfg Config) (*Watcher, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.WorkerID == "" {
		return nil, fmt.Errorf("worker id is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	watcher := &Watcher{cfg: cfg}
	watcher.loadCache()
	return watcher, nil
}

// Run polls until the context is cancelled. Poll failures are
// swallowed: the previous cached state stands until the next
// successful fetch.
func (w *Watcher) Run(ctx context.Context) {
	w.pollOnce(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

func (w *Watcher) pollOnce(ctx context.Context) {
	workers, err := w.fetchWorkers(ctx)
	if err != nil {
		if w.cfg.Logger != nil {
			w.cfg.Logger.Printf("poll failed, keeping cached state err=%v", err)
		}
		return
	}

	var fresh *domain.Worker
	for index := range workers {
		if workers[index].ID == w.cfg.WorkerID {
			fresh = &workers[index]
			break
		}
	}
	if fresh == nil {
		// Record missing (deleted or not yet visible); nothing changes.
		return
	}

	w.Observe(*fresh)
}

// Observe applies the transition rule to a freshly fetched record. It
// is exported so a push-fed session can share the same diff logic.
func (w *Watcher) Observe(fresh domain.Worker) {
	previouslyAssigned := w.cached != nil && w.cached.AssignedJobID != nil
	nowAssigned := fresh.AssignedJobID != nil

	// A session with no cached baseline adopts the record silently;
	// an assignment that predates the session is not news.
	if w.cached != nil && !previouslyAssigned && nowAssigned && w.cfg.OnAssignment != nil {
		w.cfg.OnAssignment(fresh)
	}

	if w.cached == nil || !reflect.DeepEqual(*w.cached, fresh) {
		copied := fresh
		w.cached = &copied
		w.saveCache()
	}
}

// Cached returns the last persisted view of the worker record.
func (w *Watcher) Cached() *domain.Worker {
	if w.cached == nil {
		return nil
	}
	copied := *w.cached
	return &copied
}

func (w *Watcher) fetchWorkers(ctx context.Context) ([]domain.Worker, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.BaseURL+"/workers", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	response, err := w.cfg.HTTPClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetch workers: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch workers: status %d", response.StatusCode)
	}

	var workers []domain.Worker
	if err := json.NewDecoder(response.Body).Decode(&workers); err != nil {
		return nil, fmt.Errorf("decode workers: %w", err)
	}
	return workers, nil
}

func (w *Watcher) loadCache() {
	if w.cfg.CacheFile == "" {
		return
	}

	raw, err := os.ReadFile(w.cfg.CacheFile)
	if err != nil {
		if !os.IsNotExist(err) && w.cfg.Logger != nil {
			w.cfg.Logger.Printf("cache read failed path=%s err=%v", w.cfg.CacheFile, err)
		}
		return
	}

	var cached domain.Worker
	if err := json.Unmarshal(raw, &cached); err != nil {
		if w.cfg.Logger != nil {
			w.cfg.Logger.Printf("cache parse failed path=%s err=%v", w.cfg.CacheFile, err)
		}
		return
	}
	if cached.ID != w.cfg.WorkerID {
		// Stale cache from a different session.
		return
	}
	w.cached = &cached
}

func (w *Watcher) saveCache() {
	if w.cfg.CacheFile == "" || w.cached == nil {
		return
	}

	encoded, err := json.MarshalIndent(w.cached, "", "  ")
	if err != nil {
		return
	}

	dir := filepath.Dir(w.cfg.CacheFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if w.cfg.Logger != nil {
			w.cfg.Logger.Printf("cache dir create failed path=%s err=%v", dir, err)
		}
		return
	}

	temp, err := os.CreateTemp(dir, filepath.Base(w.cfg.CacheFile)+".tmp-*")
	if err != nil {
		if w.cfg.Logger != nil {
			w.cfg.Logger.Printf("cache write failed path=%s err=%v", w.cfg.CacheFile, err)
		}
		return
	}
	tempPath := temp.Name()
	if _, err := temp.Write(encoded); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return
	}
	if err := os.Rename(tempPath, w.cfg.CacheFile); err != nil {
		os.Remove(tempPath)
		if w.cfg.Logger != nil {
			w.cfg.Logger.Printf("cache replace failed path=%s err=%v", w.cfg.CacheFile, err)
		}
	}
}
