package api

import (
	"encoding/json"
	"net/http"
)

// Error is the JSON body of every failed request.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeMethodNotAllow  = "method_not_allowed"
	ErrCodeTooLarge        = "request_too_large"
	ErrCodeUnsupportedType = "unsupported_media_type"
	ErrCodeInternal        = "internal_error"
	ErrCodeUnavailable     = "unavailable"
)

var codeStatus = map[string]int{
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeMethodNotAllow:  http.StatusMethodNotAllowed,
	ErrCodeTooLarge:        http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedType: http.StatusUnsupportedMediaType,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v) //nolint:errcheck // client may be gone
	}
}

// writeError answers with the status belonging to code. Unknown codes are
// reported as 500.
func writeError(w http.ResponseWriter, code, message string) {
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}
