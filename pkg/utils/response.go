package utils

import (
	"errors"
	"io"
	"net/http"

	"orderflow-backend/pkg/errs"
	"orderflow-backend/pkg/logger"

	"github.com/goccy/go-json"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteDomainError maps err to its HTTP status and public message. Internal
// failures are logged with the request logger; their detail never leaves
// the process.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	WriteError(w, status, errs.PublicMessage(err))
}

// DecodeJSON reads a JSON body into dst. Unknown fields are ignored.
// ErrEmptyBody is returned by DecodeJSON when the body holds no JSON value,
// whatever the Content-Length says.
var ErrEmptyBody = errs.NewValidationError("body", "Request body is required")

func DecodeJSON(r *http.Request, dst interface{}) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return errs.NewValidationErrorWithCause("body", "Invalid request body", err)
	}
	return nil
}
