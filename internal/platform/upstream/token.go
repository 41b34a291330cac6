package upstream

import (
	"context"
	"time"

	"hospitalhr/internal/domain/auth"
	"hospitalhr/internal/requestctx"
)

// CallerTokens forwards the caller's bearer token and falls back to a
// short-lived service token for background work.
type CallerTokens struct {
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func (t CallerTokens) Token(ctx context.Context) (string, error) {
	if token := requestctx.GetBearerToken(ctx); token != "" {
		return token, nil
	}
	if t.Secret == "" {
		return "", nil
	}
	now := time.Now()
	if t.Now != nil {
		now = t.Now()
	}
	ttl := t.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return auth.GenerateToken(t.Secret, auth.Claims{
		UserID:   "hospitalhr",
		TenantID: requestctx.GetTenantID(ctx),
		RoleName: auth.RoleService,
	}, ttl, now)
}
