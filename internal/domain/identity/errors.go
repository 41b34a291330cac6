package identity

import "errors"

var (
	ErrNotFound   = errors.New("identity: employee not found")
	ErrInvalidRef = errors.New("identity: invalid employee reference")
)
