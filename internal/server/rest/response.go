package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/bookreview/internal/common"
)

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Status: status})
}

// statusOverride pins the HTTP status for one sentinel on one route.
type statusOverride struct {
	err    error
	status int
}

// statusFor maps a service error to an HTTP status. Overrides are checked
// first, in order.
func statusFor(err error, overrides ...statusOverride) int {
	for _, o := range overrides {
		if errors.Is(err, o.err) {
			return o.status
		}
	}

	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError logs unexpected failures and answers with the mapped
// status. The error text is echoed to the caller.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, overrides ...statusOverride) {
	status := statusFor(err, overrides...)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}
