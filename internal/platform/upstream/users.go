package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"hospitalhr/internal/domain/identity"
)

const SourceUserManagement = "user_management"

type UserClient struct {
	*Client
}

func NewUserClient(baseURL string, timeout time.Duration, tokens TokenSource) *UserClient {
	return &UserClient{Client: NewClient(SourceUserManagement, baseURL, timeout, tokens)}
}

func (c *UserClient) ListUsers(ctx context.Context, tenant string) ([]identity.User, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/users/"+url.PathEscape(tenant)+"/list", &raw); err != nil {
		return nil, err
	}
	users, err := decodeMany[identity.User](ctx, c.Name, "users", raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decode users: %w", c.Name, err)
	}
	return users, nil
}
