// Package httputil centralizes domain error translation to HTTP responses so
// every handler emits the same JSON error envelope.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "dexrank/pkg/domain-errors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeInvalidInput:       http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeTimeout:            http.StatusGatewayTimeout,
	dErrors.CodeInternal:           http.StatusInternalServerError,
	dErrors.CodeInvariantViolation: http.StatusInternalServerError,
}

// WriteError renders err as a JSON error envelope. Internal errors omit the
// description so infrastructure detail never leaks to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := map[string]string{"error": string(code)}
	if status < http.StatusInternalServerError {
		body["error_description"] = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
