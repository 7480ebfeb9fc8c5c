package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/govind/worker-portal-back/internal/events"
	"github.com/govind/worker-portal-back/internal/http/middleware"
	"github.com/govind/worker-portal-back/internal/service"
)

var errInvalidPayload = errors.New("invalid payload")

type API struct {
	jobsService         *service.JobsService
	workersService      *service.WorkersService
	complaintsService   *service.ComplaintsService
	verificationService *service.VerificationService
	hub                 *events.Hub
}

type Dependencies struct {
	Jobs         *service.JobsService
	Workers      *service.WorkersService
	Complaints   *service.ComplaintsService
	Verification *service.VerificationService
	Hub          *events.Hub
}

func NewAPI(deps Dependencies) *API {
	return &API{
		jobsService:         deps.Jobs,
		workersService:      deps.Workers,
		complaintsService:   deps.Complaints,
		verificationService: deps.Verification,
		hub:                 deps.Hub,
	}
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, statusCode int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	payload := errorPayload{RequestID: middleware.GetRequestID(r.Context())}
	payload.Error.Code = code
	payload.Error.Message = message
	writeJSON(w, statusCode, payload)
}

func decodeJSON(r *http.Request, value any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(value); err != nil {
		return errInvalidPayload
	}
	return nil
}
