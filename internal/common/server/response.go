package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteError maps a domain error to its HTTP status and writes the JSON body.
// Unknown errors become 500 with a generic message so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		WriteJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		WriteJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		WriteJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		WriteJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// DecodeJSON decodes a request body into dst, rejecting unknown fields.
// Malformed bodies surface as validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", apperr.ErrValidation)
	}
	return nil
}
