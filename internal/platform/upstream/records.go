package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"hospitalhr/internal/domain/records"
	"hospitalhr/internal/platform/logging"
)

const SourceRecordStore = "record_store"

type RecordClient struct {
	*Client
}

func NewRecordClient(baseURL string, timeout time.Duration, tokens TokenSource) *RecordClient {
	return &RecordClient{Client: NewClient(SourceRecordStore, baseURL, timeout, tokens)}
}

func entityPath(kind, employeeRef string) string {
	return "/entity/" + kind + "/" + url.PathEscape(employeeRef)
}

// Entity returns the raw payload of any record kind. A missing entity is
// records.ErrNotFound.
func (c *RecordClient) Entity(ctx context.Context, kind, employeeRef string) (json.RawMessage, error) {
	if !records.IsKind(kind) {
		return nil, fmt.Errorf("%s: unknown entity kind %q", c.Name, kind)
	}
	var raw json.RawMessage
	if err := c.get(ctx, entityPath(kind, employeeRef), &raw); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %s", records.ErrNotFound, kind, employeeRef)
		}
		return nil, err
	}
	return raw, nil
}

func (c *RecordClient) ListEducation(ctx context.Context, employeeRef string) ([]records.Education, error) {
	return listEntity[records.Education](ctx, c, records.KindEducation, employeeRef)
}

func (c *RecordClient) ListExperience(ctx context.Context, employeeRef string) ([]records.Experience, error) {
	return listEntity[records.Experience](ctx, c, records.KindExperience, employeeRef)
}

func (c *RecordClient) ListCertifications(ctx context.Context, employeeRef string) ([]records.Certification, error) {
	return listEntity[records.Certification](ctx, c, records.KindCertifications, employeeRef)
}

// GetMedical accepts the medical profile as an object or as a one-element list.
func (c *RecordClient) GetMedical(ctx context.Context, employeeRef string) (*records.Medical, error) {
	items, err := listEntity[records.Medical](ctx, c, records.KindMedical, employeeRef)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: medical %s", records.ErrNotFound, employeeRef)
	}
	return &items[0], nil
}

func (c *RecordClient) SaveMedical(ctx context.Context, employeeRef string, medical records.Medical) error {
	if medical.Licenses == nil {
		medical.Licenses = []records.License{}
	}
	return c.put(ctx, entityPath(records.KindMedical, employeeRef), medical, nil)
}

func (c *RecordClient) LicenseAlerts(ctx context.Context) ([]records.LicenseAlert, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/medical/license-alerts", &raw); err != nil {
		return nil, err
	}
	alerts, err := decodeMany[records.LicenseAlert](ctx, c.Name, "license alerts", unwrap(raw, "alerts"))
	if err != nil {
		return nil, fmt.Errorf("%s: decode license alerts: %w", c.Name, err)
	}
	return alerts, nil
}

// listEntity treats a 404 as an empty list for list-shaped kinds.
func listEntity[T any](ctx context.Context, c *RecordClient, kind, employeeRef string) ([]T, error) {
	var raw json.RawMessage
	err := c.get(ctx, entityPath(kind, employeeRef), &raw)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := decodeMany[T](ctx, c.Name, kind, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", c.Name, kind, err)
	}
	return items, nil
}

// decodeMany accepts a list, a single object or null. List rows are decoded
// one at a time; a row that does not decode is logged and skipped.
func decodeMany[T any](ctx context.Context, source, what string, raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		var item T
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return nil, err
		}
		return []T{item}, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, err
	}
	items := make([]T, 0, len(rows))
	for i, row := range rows {
		var item T
		if err := json.Unmarshal(row, &item); err != nil {
			logging.From(ctx).Warn("skipping malformed upstream row",
				"source", source, "kind", what, "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
