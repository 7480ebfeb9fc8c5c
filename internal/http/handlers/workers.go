package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/govind/worker-portal-back/internal/domain"
	"github.com/govind/worker-portal-back/internal/repository"
	"github.com/govind/worker-portal-back/internal/service"
)

type assignRequest struct {
	WorkerID          string                    `json:"workerId"`
	AssignmentDetails *domain.AssignmentDetails `json:"assignmentDetails"`
}

func (api *API) Workers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, api.workersService.List(r.Context()))
	case http.MethodPut:
		api.assignWorker(w, r)
	case http.MethodDelete:
		api.deleteWorker(w, r)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (api *API) RegisterWorker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var registration domain.Registration
	if err := decodeJSON(r, &registration); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	worker, err := api.workersService.Register(r.Context(), registration)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeError(w, r, http.StatusBadRequest, "invalid_request", "name, phone, skill and location are required")
		case errors.Is(err, service.ErrDuplicatePhone):
			writeError(w, r, http.StatusBadRequest, "duplicate_phone", "worker already registered")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to register worker")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "worker registered successfully",
		"worker":  worker,
	})
}

func (api *API) assignWorker(w http.ResponseWriter, r *http.Request) {
	var request assignRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}
	if strings.TrimSpace(request.WorkerID) == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "workerId is required")
		return
	}

	worker, err := api.workersService.Assign(r.Context(), request.WorkerID, request.AssignmentDetails)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "not_found", "worker not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to update worker")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"worker":  worker,
	})
}

func (api *API) deleteWorker(w http.ResponseWriter, r *http.Request) {
	workerID := strings.TrimSpace(r.URL.Query().Get("id"))
	if workerID == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "worker id is required")
		return
	}

	if err := api.workersService.Delete(r.Context(), workerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "not_found", "worker not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to delete worker")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
