package requestctx

import "context"

type ctxKey string

const (
	requestIDKey   ctxKey = "request_id"
	tenantIDKey    ctxKey = "tenant_id"
	bearerTokenKey ctxKey = "bearer_token"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

func GetTenantID(ctx context.Context) string {
	if value, ok := ctx.Value(tenantIDKey).(string); ok {
		return value
	}
	return ""
}

// WithBearerToken keeps the caller's raw token so upstream calls can be
// made on the caller's behalf.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

func GetBearerToken(ctx context.Context) string {
	if value, ok := ctx.Value(bearerTokenKey).(string); ok {
		return value
	}
	return ""
}
