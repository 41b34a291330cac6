package shared

import (
	"errors"
	"net/http"

	"hospitalhr/internal/domain/identity"
	"hospitalhr/internal/domain/probation"
	"hospitalhr/internal/domain/records"
	"hospitalhr/internal/platform/logging"
	"hospitalhr/internal/platform/upstream"
	"hospitalhr/internal/transport/http/api"
)

// FailError maps a domain error onto the response envelope.
func FailError(w http.ResponseWriter, r *http.Request, err error, requestID string) {
	if issues, ok := IssuesFrom(err); ok {
		FailValidation(w, requestID, issues)
		return
	}

	var statusErr *upstream.StatusError
	switch {
	case errors.Is(err, identity.ErrInvalidRef):
		api.Fail(w, http.StatusBadRequest, "invalid_ref", "employee reference is invalid", requestID)
	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, probation.ErrNotFound),
		errors.Is(err, records.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "not found", requestID)
	case errors.Is(err, probation.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), requestID)
	case errors.Is(err, probation.ErrConflict):
		api.Fail(w, http.StatusConflict, "version_conflict", "record was modified, reload and retry", requestID)
	case errors.Is(err, probation.ErrAlreadyExists):
		api.Fail(w, http.StatusConflict, "already_exists", "probation record already exists", requestID)
	case errors.Is(err, probation.ErrIdempotencyConflict):
		api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", requestID)
	case errors.As(err, &statusErr), errors.Is(err, upstream.ErrNotFound), errors.Is(err, upstream.ErrUnavailable):
		logging.From(r.Context()).Warn("upstream call failed", "err", err)
		api.Fail(w, http.StatusBadGateway, "upstream_error", "upstream service failed", requestID)
	default:
		logging.From(r.Context()).Error("request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal error", requestID)
	}
}
