package probation

import "errors"

var (
	ErrNotFound            = errors.New("probation: record not found")
	ErrAlreadyExists       = errors.New("probation: record already exists")
	ErrInvalidTransition   = errors.New("probation: invalid transition")
	ErrConflict            = errors.New("probation: record was modified concurrently")
	ErrIdempotencyConflict = errors.New("probation: idempotency key reused with a different request")
)
