package handlers

import (
	"errors"
	"net/http"

	"github.com/govind/worker-portal-back/internal/service"
)

type createJobRequest struct {
	Title    string `json:"title"`
	Salary   string `json:"salary"`
	Location string `json:"location"`
	Time     string `json:"time"`
	Color    string `json:"color,omitempty"`
	Category string `json:"category,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (api *API) Jobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, api.jobsService.List(r.Context()))
	case http.MethodPost:
		api.createJob(w, r)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (api *API) createJob(w http.ResponseWriter, r *http.Request) {
	var request createJobRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	job, err := api.jobsService.Create(r.Context(), service.CreateJobInput{
		Title:    request.Title,
		Salary:   request.Salary,
		Location: request.Location,
		Time:     request.Time,
		Color:    request.Color,
		Category: request.Category,
		Phone:    request.Phone,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "title, salary, location and time are required")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to create job")
		return
	}

	writeJSON(w, http.StatusCreated, job)
}
