package handlers

import "net/http"

type complaintRequest struct {
	WorkerID string `json:"workerId"`
	Type     string `json:"type"`
	Message  string `json:"message"`
}

func (api *API) Complaints(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, api.complaintsService.List(r.Context()))
	case http.MethodPost:
		api.appendComplaint(w, r)
	default:
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (api *API) appendComplaint(w http.ResponseWriter, r *http.Request) {
	var request complaintRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON payload")
		return
	}

	complaint, err := api.complaintsService.Append(r.Context(), request.WorkerID, request.Type, request.Message)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", "failed to record complaint")
		return
	}

	writeJSON(w, http.StatusCreated, complaint)
}
