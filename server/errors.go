package server

import (
	"encoding/json"
	"net/http"

	"melodify/logger"
)

// APIError is an error that maps onto an HTTP status and a JSON body.
type APIError struct {
	Status  int
	Message string
	cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func badRequest(msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: msg}
}

func unauthorized(msg string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: msg}
}

func notFound(msg string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: msg}
}

// internalError passes the backing service message through to the client.
func internalError(err error) *APIError {
	msg := "Internal server error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &APIError{Status: http.StatusInternalServerError, Message: msg, cause: err}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, apiErr *APIError) {
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.ErrorField(apiErr.cause))
	}
	writeJSON(w, apiErr.Status, map[string]string{"error": apiErr.Message})
}
