package probation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"hospitalhr/internal/domain/audit"
	"hospitalhr/internal/domain/core"
	"hospitalhr/internal/domain/identity"
	"hospitalhr/internal/platform/idempotency"
)

// memStore keys records by employee ref within tenant "t1" for brevity;
// records of other tenants are kept under tenant|ref.
type memStore struct {
	records  map[string]Record
	replaces int
}

func storeKey(tenantID, ref string) string {
	if tenantID == "t1" {
		return ref
	}
	return tenantID + "|" + ref
}

func newMemStore(records ...Record) *memStore {
	s := &memStore{records: map[string]Record{}}
	for _, r := range records {
		if r.Version == 0 {
			r.Version = 1
		}
		if r.TenantID == "" {
			r.TenantID = "t1"
		}
		s.records[storeKey(r.TenantID, r.EmployeeRef)] = r
	}
	return s
}

func (s *memStore) Create(_ context.Context, r Record) (Record, error) {
	key := storeKey(r.TenantID, r.EmployeeRef)
	if _, ok := s.records[key]; ok {
		return Record{}, ErrAlreadyExists
	}
	r.Version = 1
	s.records[key] = r
	return r, nil
}

func (s *memStore) Get(_ context.Context, tenantID, ref string) (Record, error) {
	r, ok := s.records[storeKey(tenantID, ref)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (s *memStore) List(_ context.Context, filter ListFilter) ([]Record, error) {
	var out []Record
	for _, r := range s.records {
		if filter.TenantID != "" && r.TenantID != filter.TenantID {
			continue
		}
		if len(filter.Statuses) == 0 {
			out = append(out, r)
			continue
		}
		for _, status := range filter.Statuses {
			if r.Status == status {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (s *memStore) Replace(_ context.Context, r Record, expected int) (Record, error) {
	key := storeKey(r.TenantID, r.EmployeeRef)
	current, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	if current.Version != expected {
		return Record{}, ErrConflict
	}
	s.replaces++
	r.Version = expected + 1
	s.records[key] = r
	return r, nil
}

type memAudit struct {
	entries []audit.Entry
}

func (a *memAudit) Record(_ context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return nil
}

type memKeys struct {
	hashes    map[string]string
	responses map[string]json.RawMessage
}

func newMemKeys() *memKeys {
	return &memKeys{hashes: map[string]string{}, responses: map[string]json.RawMessage{}}
}

func (k *memKeys) id(scope idempotency.Scope) string {
	return scope.TenantID + "|" + scope.UserID + "|" + scope.Endpoint + "|" + scope.Key
}

func (k *memKeys) Claim(_ context.Context, scope idempotency.Scope, hash string) (json.RawMessage, bool, error) {
	stored, ok := k.hashes[k.id(scope)]
	if !ok {
		k.hashes[k.id(scope)] = hash
		return nil, false, nil
	}
	if stored != hash {
		return nil, false, idempotency.ErrConflict
	}
	response, ok := k.responses[k.id(scope)]
	if !ok {
		return nil, false, idempotency.ErrInProgress
	}
	return response, true, nil
}

func (k *memKeys) Complete(_ context.Context, scope idempotency.Scope, response json.RawMessage) error {
	if _, ok := k.responses[k.id(scope)]; ok {
		return idempotency.ErrConflict
	}
	k.responses[k.id(scope)] = response
	return nil
}

// serialTx runs one transaction at a time, like row locks on the claimed key.
type serialTx struct {
	mu sync.Mutex
}

func (tx *serialTx) Within(ctx context.Context, fn func(context.Context) error) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return fn(ctx)
}

type fakeResolver struct {
	known map[string]string
}

func (f fakeResolver) ResolveRaw(_ context.Context, raw string) (*identity.Profile, error) {
	ref, ok := f.known[raw]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return &identity.Profile{EmployeeRef: ref}, nil
}

var actor = Actor{UserID: "u1", TenantID: "t1", RequestID: "req-1"}

func newTestService(store *memStore) (*Service, *memAudit) {
	auditor := &memAudit{}
	svc := NewService(store, auditor, newMemKeys(), nil)
	svc.Now = func() time.Time { return day(2024, 6, 1) }
	return svc, auditor
}

func seeded() Record {
	r, _ := NewRecord("EMP001", day(2024, 1, 1), 6)
	return r
}

func TestServiceCreate(t *testing.T) {
	store := newMemStore()
	svc, auditor := newTestService(store)

	view, err := svc.Create(context.Background(), actor, CreateInput{EmployeeRef: "EMP001", DateOfJoining: "2024-01-01", ProbationMonths: 6})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.DaysRemaining != 30 || view.Label != "30 days remaining" || view.TenantID != "t1" {
		t.Fatalf("unexpected view %+v", view)
	}
	if len(auditor.entries) != 1 || auditor.entries[0].Action != ActionCreate {
		t.Fatalf("expected create audit, got %+v", auditor.entries)
	}

	if _, err := svc.Create(context.Background(), actor, CreateInput{EmployeeRef: "EMP001", DateOfJoining: "2024-01-01", ProbationMonths: 6}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	_, err := svc.Create(context.Background(), actor, CreateInput{EmployeeRef: "EMP001", DateOfJoining: "01/01/2024", ProbationMonths: 6})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceExtendThenEnd(t *testing.T) {
	store := newMemStore(seeded())
	svc, auditor := newTestService(store)
	ctx := context.Background()

	view, err := svc.Extend(ctx, actor, "EMP001", TransitionInput{Months: 3})
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if view.Status != StatusExtended || view.DaysRemaining != 122 || view.Version != 2 {
		t.Fatalf("unexpected view %+v", view)
	}

	view, err = svc.End(ctx, actor, "EMP001", TransitionInput{Version: 2})
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if view.Status != StatusConfirmed {
		t.Fatalf("expected Confirmed, got %s", view.Status)
	}

	if _, err := svc.End(ctx, actor, "EMP001", TransitionInput{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if store.records["EMP001"].Status != StatusConfirmed || store.records["EMP001"].Version != 3 {
		t.Fatalf("record must be unchanged, got %+v", store.records["EMP001"])
	}
	if len(auditor.entries) != 2 || auditor.entries[1].Action != ActionEnd {
		t.Fatalf("unexpected audit trail %+v", auditor.entries)
	}
}

func TestServiceStaleVersion(t *testing.T) {
	svc, _ := newTestService(newMemStore(seeded()))
	if _, err := svc.Extend(context.Background(), actor, "EMP001", TransitionInput{Months: 1, Version: 7}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestServiceIdempotentExtend(t *testing.T) {
	store := newMemStore(seeded())
	svc, _ := newTestService(store)
	ctx := context.Background()
	input := TransitionInput{Months: 1, IdempotencyKey: "click-1"}

	first, err := svc.Extend(ctx, actor, "EMP001", input)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	second, err := svc.Extend(ctx, actor, "EMP001", input)
	if err != nil {
		t.Fatalf("replayed extend: %v", err)
	}
	if store.replaces != 1 {
		t.Fatalf("expected a single write, got %d", store.replaces)
	}
	if !second.ExtensionEndDate.Equal(*first.ExtensionEndDate) || !first.ExtensionEndDate.Equal(day(2024, 8, 1)) {
		t.Fatalf("expected one month extension, got %v and %v", first.ExtensionEndDate, second.ExtensionEndDate)
	}

	if _, err := svc.Extend(ctx, actor, "EMP001", TransitionInput{Months: 2, IdempotencyKey: "click-1"}); !errors.Is(err, ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict, got %v", err)
	}
}

func TestServiceWithoutKeyCompounds(t *testing.T) {
	store := newMemStore(seeded())
	svc, _ := newTestService(store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Extend(ctx, actor, "EMP001", TransitionInput{Months: 1}); err != nil {
			t.Fatalf("extend %d: %v", i, err)
		}
	}
	if got := store.records["EMP001"].ExtensionEndDate; !got.Equal(day(2024, 9, 1)) {
		t.Fatalf("expected 2024-09-01, got %v", got)
	}
}

func TestServiceTerminateMissing(t *testing.T) {
	svc, _ := newTestService(newMemStore())
	if _, err := svc.Terminate(context.Background(), actor, "EMP404", TransitionInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceListRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(newMemStore(seeded()))
	if _, err := svc.List(context.Background(), "t1", []Status{"Paused"}); err == nil {
		t.Fatalf("expected validation error")
	}
	views, err := svc.List(context.Background(), "t1", []Status{StatusInProgress})
	if err != nil || len(views) != 1 {
		t.Fatalf("expected one view, got %v %v", views, err)
	}
}

func TestServiceConcurrentSameKeyAppliesOnce(t *testing.T) {
	store := newMemStore(seeded())
	svc := NewService(store, &memAudit{}, newMemKeys(), &serialTx{})
	svc.Now = func() time.Time { return day(2024, 6, 1) }
	input := TransitionInput{Months: 1, IdempotencyKey: "double-click"}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Extend(context.Background(), actor, "EMP001", input)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if store.replaces != 1 {
		t.Fatalf("expected a single write, got %d", store.replaces)
	}
	if got := store.records["EMP001"].ExtensionEndDate; !got.Equal(day(2024, 8, 1)) {
		t.Fatalf("expected 2024-08-01, got %v", got)
	}
}

func TestServiceCreateResolvesEmployee(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)
	svc.Employees = fakeResolver{known: map[string]string{"42": "42"}}

	view, err := svc.Create(context.Background(), actor, CreateInput{EmployeeRef: " 42 ", DateOfJoining: "2024-01-01", ProbationMonths: 6})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.EmployeeRef != "42" {
		t.Fatalf("expected trimmed ref 42, got %q", view.EmployeeRef)
	}

	_, err = svc.Create(context.Background(), actor, CreateInput{EmployeeRef: "user_99", DateOfJoining: "2024-01-01", ProbationMonths: 6})
	if !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("expected identity.ErrNotFound, got %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("unknown employee must not be stored, got %+v", store.records)
	}
}

func TestServiceScopesRecordsByTenant(t *testing.T) {
	other := seeded()
	other.TenantID = "t2"
	store := newMemStore(seeded(), other)
	svc, _ := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "t3", "EMP001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign tenant, got %v", err)
	}
	views, err := svc.List(ctx, "t2", nil)
	if err != nil || len(views) != 1 || views[0].TenantID != "t2" {
		t.Fatalf("unexpected views %+v %v", views, err)
	}

	if _, err := svc.Extend(ctx, actor, "EMP001", TransitionInput{Months: 1}); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if store.records["t2|EMP001"].Status != StatusInProgress {
		t.Fatalf("other tenant's record must be untouched, got %+v", store.records["t2|EMP001"])
	}

	report, err := svc.DueSweep(ctx, 30)
	if err != nil || report.Checked != 2 {
		t.Fatalf("sweep must cover every tenant, got %+v %v", report, err)
	}
}

func TestDueSweep(t *testing.T) {
	dueSoon, _ := NewRecord("EMP001", day(2024, 1, 1), 6)
	overdue, _ := NewRecord("EMP002", day(2024, 1, 1), 3)
	later, _ := NewRecord("EMP003", day(2024, 6, 1), 6)
	done, _ := NewRecord("EMP004", day(2024, 1, 1), 3)
	done, _ = End(done)

	svc, _ := newTestService(newMemStore(dueSoon, overdue, later, done))
	report, err := svc.DueSweep(context.Background(), 30)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Checked != 3 {
		t.Fatalf("expected 3 open records checked, got %d", report.Checked)
	}
	if len(report.Due) != 1 || report.Due[0].EmployeeRef != "EMP001" {
		t.Fatalf("unexpected due %+v", report.Due)
	}
	if len(report.Overdue) != 1 || report.Overdue[0].EmployeeRef != "EMP002" {
		t.Fatalf("unexpected overdue %+v", report.Overdue)
	}
}
