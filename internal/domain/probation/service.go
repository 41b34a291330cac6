package probation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"hospitalhr/internal/domain/audit"
	"hospitalhr/internal/domain/core"
	"hospitalhr/internal/domain/identity"
	"hospitalhr/internal/platform/idempotency"
	"hospitalhr/internal/platform/logging"
)

const (
	ActionCreate    = "probation.create"
	ActionExtend    = "probation.extend"
	ActionEnd       = "probation.end"
	ActionTerminate = "probation.terminate"

	EntityType = "probation"
)

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// IdempotencyStore claims keys inside the transaction of the keyed write.
type IdempotencyStore interface {
	Claim(ctx context.Context, scope idempotency.Scope, requestHash string) (json.RawMessage, bool, error)
	Complete(ctx context.Context, scope idempotency.Scope, response json.RawMessage) error
}

// EmployeeResolver confirms that an employee ref belongs to a known
// employee and returns its canonical form.
type EmployeeResolver interface {
	ResolveRaw(ctx context.Context, raw string) (*identity.Profile, error)
}

type Transactor interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

// TransitionInput carries the optional client-side guards of a transition.
// Version 0 skips the stale-read check; the store still compares versions.
type TransitionInput struct {
	Months         int    `json:"months,omitempty"`
	Version        int    `json:"version,omitempty"`
	IdempotencyKey string `json:"-"`
}

type Service struct {
	Store       StoreAPI
	Employees   EmployeeResolver
	Audit       AuditRecorder
	Idempotency IdempotencyStore
	Tx          Transactor
	Now         func() time.Time
}

func NewService(store StoreAPI, auditor AuditRecorder, keys IdempotencyStore, tx Transactor) *Service {
	return &Service{Store: store, Audit: auditor, Idempotency: keys, Tx: tx, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) Create(ctx context.Context, actor Actor, input CreateInput) (View, error) {
	joining, err := core.ParseDate(input.DateOfJoining)
	if err != nil {
		verr := &core.ValidationError{}
		verr.Add("dateOfJoining", "must be a valid date in YYYY-MM-DD format")
		return View{}, verr.Err()
	}
	employeeRef := strings.TrimSpace(input.EmployeeRef)
	if s.Employees != nil && employeeRef != "" {
		profile, err := s.Employees.ResolveRaw(ctx, employeeRef)
		if err != nil {
			return View{}, err
		}
		employeeRef = profile.EmployeeRef
	}
	record, err := NewRecord(employeeRef, joining, input.ProbationMonths)
	if err != nil {
		return View{}, err
	}
	record.TenantID = actor.TenantID

	var created Record
	err = s.within(ctx, func(ctx context.Context) error {
		created, err = s.Store.Create(ctx, record)
		if err != nil {
			return err
		}
		return s.record(ctx, actor, ActionCreate, created.EmployeeRef, nil, created)
	})
	if err != nil {
		return View{}, err
	}
	return NewView(created, s.now()), nil
}

func (s *Service) Get(ctx context.Context, tenantID, employeeRef string) (View, error) {
	r, err := s.Store.Get(ctx, tenantID, strings.TrimSpace(employeeRef))
	if err != nil {
		return View{}, err
	}
	return NewView(r, s.now()), nil
}

func (s *Service) List(ctx context.Context, tenantID string, statuses []Status) ([]View, error) {
	for _, status := range statuses {
		if !status.Valid() {
			verr := &core.ValidationError{}
			verr.Add("status", "must be one of InProgress, Extended, Confirmed, Terminated")
			return nil, verr.Err()
		}
	}
	records, err := s.Store.List(ctx, ListFilter{TenantID: tenantID, Statuses: statuses})
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]View, 0, len(records))
	for _, r := range records {
		out = append(out, NewView(r, now))
	}
	return out, nil
}

func (s *Service) Extend(ctx context.Context, actor Actor, employeeRef string, input TransitionInput) (View, error) {
	return s.transition(ctx, actor, ActionExtend, employeeRef, input, func(r Record) (Record, error) {
		return Extend(r, input.Months)
	})
}

func (s *Service) End(ctx context.Context, actor Actor, employeeRef string, input TransitionInput) (View, error) {
	return s.transition(ctx, actor, ActionEnd, employeeRef, input, End)
}

func (s *Service) Terminate(ctx context.Context, actor Actor, employeeRef string, input TransitionInput) (View, error) {
	return s.transition(ctx, actor, ActionTerminate, employeeRef, input, Terminate)
}

// transition reads, applies and replaces one record. The idempotency key is
// claimed in the same transaction, so a repeated key with the same payload
// returns the first response without reapplying even when both requests
// arrive together.
func (s *Service) transition(ctx context.Context, actor Actor, action, employeeRef string, input TransitionInput, apply func(Record) (Record, error)) (View, error) {
	employeeRef = strings.TrimSpace(employeeRef)
	scope := idempotency.Scope{
		TenantID: actor.TenantID,
		UserID:   actor.UserID,
		Endpoint: action + ":" + employeeRef,
		Key:      strings.TrimSpace(input.IdempotencyKey),
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return View{}, err
	}
	hash := idempotency.RequestHash(payload)

	var (
		view     View
		replayed bool
	)
	err = s.within(ctx, func(ctx context.Context) error {
		stored, found, err := s.claim(ctx, scope, hash)
		if err != nil {
			return err
		}
		if found {
			replayed = true
			return json.Unmarshal(stored, &view)
		}

		current, err := s.Store.Get(ctx, actor.TenantID, employeeRef)
		if err != nil {
			return err
		}
		if input.Version > 0 && input.Version != current.Version {
			return ErrConflict
		}
		next, err := apply(current)
		if err != nil {
			return err
		}
		updated, err := s.Store.Replace(ctx, next, current.Version)
		if err != nil {
			return err
		}
		if err := s.record(ctx, actor, action, employeeRef, current, updated); err != nil {
			return err
		}
		view = NewView(updated, s.now())
		return s.remember(ctx, scope, view)
	})
	if err != nil {
		return View{}, err
	}
	if replayed {
		// The countdown is relative to now, not to the first response.
		return NewView(view.Record, s.now()), nil
	}

	logging.From(ctx).Info("probation transition applied",
		"action", action,
		"employeeRef", employeeRef,
		"status", string(view.Status),
		"version", view.Version,
	)
	return view, nil
}

func (s *Service) claim(ctx context.Context, scope idempotency.Scope, hash string) (json.RawMessage, bool, error) {
	if s.Idempotency == nil || scope.Key == "" {
		return nil, false, nil
	}
	stored, found, err := s.Idempotency.Claim(ctx, scope, hash)
	if errors.Is(err, idempotency.ErrConflict) || errors.Is(err, idempotency.ErrInProgress) {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, found, err
}

func (s *Service) remember(ctx context.Context, scope idempotency.Scope, view View) error {
	if s.Idempotency == nil || scope.Key == "" {
		return nil
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	if err := s.Idempotency.Complete(ctx, scope, payload); err != nil {
		if errors.Is(err, idempotency.ErrConflict) {
			return ErrIdempotencyConflict
		}
		return err
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor Actor, action, employeeRef string, before, after any) error {
	if s.Audit == nil {
		return nil
	}
	return s.Audit.Record(ctx, audit.Entry{
		TenantID:   actor.TenantID,
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: EntityType,
		EntityID:   employeeRef,
		RequestID:  actor.RequestID,
		IP:         actor.IP,
		Before:     before,
		After:      after,
	})
}

func (s *Service) within(ctx context.Context, fn func(context.Context) error) error {
	if s.Tx == nil {
		return fn(ctx)
	}
	return s.Tx.Within(ctx, fn)
}

// DueSweep reports open probations whose effective deadline is within
// withinDays of now or already past.
func (s *Service) DueSweep(ctx context.Context, withinDays int) (SweepReport, error) {
	records, err := s.Store.List(ctx, ListFilter{Statuses: []Status{StatusInProgress, StatusExtended}})
	if err != nil {
		return SweepReport{}, err
	}
	now := s.now()
	report := SweepReport{Checked: len(records), Due: []View{}, Overdue: []View{}}
	for _, r := range records {
		view := NewView(r, now)
		switch {
		case view.DaysRemaining < 0:
			report.Overdue = append(report.Overdue, view)
		case view.DaysRemaining <= withinDays:
			report.Due = append(report.Due, view)
		}
	}
	return report, nil
}
