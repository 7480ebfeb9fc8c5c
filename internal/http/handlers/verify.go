package handlers

import (
	"errors"
	"net/http"

	"github.com/govind/worker-portal-back/internal/domain"
	"github.com/govind/worker-portal-back/internal/service"
)

type verifyRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// BeginVerification parks a registration behind a verification code
// delivered over SMS.
func (api *API) BeginVerification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var registration domain.Registration
	if err := decodeJSON(r, &registration); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	if err := api.verificationService.Begin(r.Context(), registration); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeError(w, r, http.StatusBadRequest, "invalid_request", "name, phone, skill and location are required")
		case errors.Is(err, service.ErrDuplicatePhone):
			writeError(w, r, http.StatusBadRequest, "duplicate_phone", "worker already registered")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to start verification")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "verification code sent"})
}

func (api *API) VerifyWorker(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var request verifyRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	worker, err := api.verificationService.Verify(r.Context(), request.Phone, request.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeError(w, r, http.StatusBadRequest, "invalid_request", "phone and otp are required")
		case errors.Is(err, service.ErrCodeExpired):
			writeError(w, r, http.StatusBadRequest, "code_expired", "OTP expired or not found")
		case errors.Is(err, service.ErrCodeMismatch):
			writeError(w, r, http.StatusBadRequest, "code_mismatch", "invalid OTP")
		case errors.Is(err, service.ErrDuplicatePhone):
			writeError(w, r, http.StatusBadRequest, "duplicate_phone", "worker already registered")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to verify worker")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "worker verified and registered",
		"worker":  worker,
	})
}
