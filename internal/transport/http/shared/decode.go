package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"hospitalhr/internal/transport/http/api"
)

// DecodeJSON decodes a single JSON object body and writes the failure
// response itself. Unknown fields are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
		case errors.Is(err, io.EOF):
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "request body is required", requestID)
		default:
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", requestID)
		}
		return false
	}
	if decoder.More() {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "request body must contain a single JSON object", requestID)
		return false
	}
	return true
}
