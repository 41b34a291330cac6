package identity

import (
	"fmt"
	"strings"
)

const userRefPrefix = "user_"

type SourceSystem string

const (
	SourceOnboarding     SourceSystem = "Onboarding"
	SourceUserManagement SourceSystem = "UserManagement"
)

// Ref is an employee reference parsed once at the boundary. A bare value is
// an onboarding application id; a user_ prefixed value is a user-management id.
type Ref struct {
	Source SourceSystem
	ID     string
}

func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, fmt.Errorf("%w: empty reference", ErrInvalidRef)
	}
	if id, ok := strings.CutPrefix(raw, userRefPrefix); ok {
		if strings.TrimSpace(id) == "" {
			return Ref{}, fmt.Errorf("%w: %q has no user id", ErrInvalidRef, raw)
		}
		return Ref{Source: SourceUserManagement, ID: id}, nil
	}
	return Ref{Source: SourceOnboarding, ID: raw}, nil
}

func OnboardingRef(applicationID string) Ref {
	return Ref{Source: SourceOnboarding, ID: applicationID}
}

func UserRef(userID string) Ref {
	return Ref{Source: SourceUserManagement, ID: userID}
}

func (r Ref) String() string {
	switch r.Source {
	case SourceUserManagement:
		return userRefPrefix + r.ID
	default:
		return r.ID
	}
}
