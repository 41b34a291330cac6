package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"hospitalhr/internal/domain/identity"
	"hospitalhr/internal/domain/records"
)

const SourceOnboarding = "onboarding"

type OnboardingClient struct {
	*Client
}

func NewOnboardingClient(baseURL string, timeout time.Duration, tokens TokenSource) *OnboardingClient {
	return &OnboardingClient{Client: NewClient(SourceOnboarding, baseURL, timeout, tokens)}
}

func (c *OnboardingClient) ListApplications(ctx context.Context) ([]identity.Application, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/onboarding/list", &raw); err != nil {
		return nil, err
	}
	apps, err := decodeMany[identity.Application](ctx, c.Name, "applications", raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decode applications: %w", c.Name, err)
	}
	return apps, nil
}

func (c *OnboardingClient) ListDocuments(ctx context.Context, applicationID string) ([]records.OnboardingDocument, error) {
	var raw json.RawMessage
	err := c.get(ctx, "/onboarding/"+url.PathEscape(applicationID)+"/documents", &raw)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	docs, err := decodeMany[records.OnboardingDocument](ctx, c.Name, "documents", raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decode documents: %w", c.Name, err)
	}
	return docs, nil
}
