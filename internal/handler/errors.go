package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"userposts/internal/repository"
	"userposts/internal/validation"
)

// ErrorResponse - standard error body
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse - error body for rejected input, one message per field
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// WriteError - sends an error message as JSON
func WriteError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	writeSuccess(w, r, ErrorResponse{Error: message}, statusCode)
}

// writeSuccess - sends data as JSON, indented when the request asks for ?pretty
func writeSuccess(w http.ResponseWriter, r *http.Request, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	if r != nil && r.URL.Query().Has("pretty") {
		encoder.SetIndent("", "  ")
	}
	encoder.Encode(data)
}

// fail maps an error from the service layer to a response. Validation errors
// are client errors, store failures carry their raw message, anything else
// gets the operation's fallback message.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var validationErr *validation.Error
	var persistenceErr *repository.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		writeSuccess(w, r, ValidationErrorResponse{Error: "validation failed", Fields: validationErr.Fields}, http.StatusBadRequest)
	case errors.As(err, &persistenceErr):
		h.Logger.ErrorContext(r.Context(), "persistence error", slog.String("op", persistenceErr.Op), slog.String("error", err.Error()))
		WriteError(w, r, persistenceErr.Error(), http.StatusInternalServerError)
	default:
		h.Logger.ErrorContext(r.Context(), fallback, slog.String("error", err.Error()))
		WriteError(w, r, fallback, http.StatusInternalServerError)
	}
}

// recoverWith turns a panic inside a handler into a 500 with the fallback message.
func (h *Handlers) recoverWith(w http.ResponseWriter, r *http.Request, fallback string) {
	if rec := recover(); rec != nil {
		h.Logger.ErrorContext(r.Context(), "handler panic", slog.String("panic", fmt.Sprint(rec)), slog.String("path", r.URL.Path))
		WriteError(w, r, fallback, http.StatusInternalServerError)
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return validation.Field("body", "request body must be valid JSON: "+err.Error())
	}
	return nil
}
