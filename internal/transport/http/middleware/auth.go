package middleware

import (
	"context"
	"net/http"
	"strings"

	"hospitalhr/internal/domain/auth"
	"hospitalhr/internal/requestctx"
	"hospitalhr/internal/transport/http/api"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Auth attaches the caller when a valid bearer token is present. Requests
// without one continue anonymously; RequireUser rejects them where needed.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "invalid_token", "token is invalid or expired", GetRequestID(r.Context()))
				return
			}

			ctx := WithUser(r.Context(), auth.UserContext{
				UserID:       claims.UserID,
				TenantID:     claims.TenantID,
				RoleName:     claims.RoleName,
				EmployeeCode: claims.EmployeeCode,
				Token:        token,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// WithUser stores the caller and the values upstream clients read from the
// request context.
func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUser, user)
	if user.TenantID != "" {
		ctx = requestctx.WithTenantID(ctx, user.TenantID)
	}
	if user.Token != "" {
		ctx = requestctx.WithBearerToken(ctx, user.Token)
	}
	return ctx
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
