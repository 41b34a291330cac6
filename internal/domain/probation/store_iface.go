package probation

import "context"

// ListFilter selects records. An empty TenantID matches every tenant.
type ListFilter struct {
	TenantID string
	Statuses []Status
}

type StoreAPI interface {
	Create(ctx context.Context, r Record) (Record, error)
	Get(ctx context.Context, tenantID, employeeRef string) (Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, error)
	// Replace writes r if the stored version still equals expectedVersion and
	// returns the stored row with its bumped version.
	Replace(ctx context.Context, r Record, expectedVersion int) (Record, error)
}
