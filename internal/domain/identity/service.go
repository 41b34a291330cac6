package identity

import (
	"context"
	"strings"

	"hospitalhr/internal/platform/logging"
	"hospitalhr/internal/requestctx"
)

type OnboardingSource interface {
	ListApplications(ctx context.Context) ([]Application, error)
}

type UserDirectory interface {
	ListUsers(ctx context.Context, tenant string) ([]User, error)
}

// FailureRecorder counts upstream sources that failed during a call.
type FailureRecorder interface {
	RecordSourceFailure(source string)
}

type Service struct {
	Onboarding    OnboardingSource
	Users         UserDirectory
	DefaultTenant string
	Failures      FailureRecorder
}

func NewService(onboarding OnboardingSource, users UserDirectory, defaultTenant string) *Service {
	return &Service{Onboarding: onboarding, Users: users, DefaultTenant: defaultTenant}
}

// ResolveRaw parses raw and resolves it.
func (s *Service) ResolveRaw(ctx context.Context, raw string) (*Profile, error) {
	ref, err := ParseRef(raw)
	if err != nil {
		return nil, err
	}
	return s.Resolve(ctx, ref)
}

// Resolve finds the source that owns ref. The onboarding pipeline is
// consulted first; a failing source counts as no match so an outage in one
// system never hides employees owned by the other.
func (s *Service) Resolve(ctx context.Context, ref Ref) (*Profile, error) {
	if ref.Source == SourceOnboarding {
		if profile := s.fromOnboarding(ctx, ref.ID); profile != nil {
			return profile, nil
		}
	}
	if profile := s.fromUsers(ctx, ref.ID); profile != nil {
		return profile, nil
	}
	return nil, ErrNotFound
}

func (s *Service) fromOnboarding(ctx context.Context, applicationID string) *Profile {
	if s.Onboarding == nil {
		return nil
	}
	apps, err := s.Onboarding.ListApplications(ctx)
	if err != nil {
		s.sourceFailed(ctx, "onboarding", err)
		return nil
	}
	for _, app := range apps {
		if app.ApplicationID.String() == applicationID {
			return profileFromApplication(app)
		}
	}
	return nil
}

func (s *Service) fromUsers(ctx context.Context, userID string) *Profile {
	if s.Users == nil {
		return nil
	}
	users, err := s.Users.ListUsers(ctx, s.tenant(ctx))
	if err != nil {
		s.sourceFailed(ctx, "user_management", err)
		return nil
	}
	for _, user := range users {
		if user.ID.String() == strings.TrimSpace(userID) && user.IsEmployee() {
			return profileFromUser(user)
		}
	}
	return nil
}

func (s *Service) tenant(ctx context.Context) string {
	if tenant := requestctx.GetTenantID(ctx); tenant != "" {
		return tenant
	}
	return s.DefaultTenant
}

func (s *Service) sourceFailed(ctx context.Context, source string, err error) {
	logging.From(ctx).Warn("identity source lookup failed", "source", source, "err", err)
	if s.Failures != nil {
		s.Failures.RecordSourceFailure(source)
	}
}
