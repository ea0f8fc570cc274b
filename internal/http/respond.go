package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
)

// errorBody is the uniform error envelope.
type errorBody struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, field, message string) {
	respondJSON(w, status, errorBody{Error: apiError{Field: field, Message: message}})
}

// respondServiceError maps the domain error taxonomy onto status codes:
// validation errors are 422 with the offending field, NotFound is 404
// without revealing whether the record exists for another user, and
// anything else is a 500 with no internals leaked.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusUnprocessableEntity, verr.Field, verr.Msg)
	case errors.Is(err, core.ErrNotFound):
		respondError(w, http.StatusNotFound, "", "not found")
	default:
		s.logger.ErrorContext(r.Context(), "Request failed",
			"error", err, "path", r.URL.Path)
		respondError(w, http.StatusInternalServerError, "", "internal error")
	}
}

// decodeBody parses a JSON request body into dst, limited to 1 MiB.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "", "malformed request body")
		return false
	}
	return true
}
