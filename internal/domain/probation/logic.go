package probation

import (
	"fmt"
	"strings"
	"time"

	"hospitalhr/internal/domain/core"
)

const MaxExtensionMonths = 12

// NewRecord starts an InProgress probation and derives its end date once.
func NewRecord(employeeRef string, dateOfJoining time.Time, months int) (Record, error) {
	verr := &core.ValidationError{}
	if strings.TrimSpace(employeeRef) == "" {
		verr.Add("employeeRef", "is required")
	}
	if dateOfJoining.IsZero() {
		verr.Add("dateOfJoining", "must be a valid date in YYYY-MM-DD format")
	}
	if months <= 0 {
		verr.Add("probationMonths", "must be positive")
	}
	if err := verr.Err(); err != nil {
		return Record{}, err
	}
	joining := core.Midnight(dateOfJoining)
	return Record{
		EmployeeRef:      strings.TrimSpace(employeeRef),
		DateOfJoining:    joining,
		ProbationMonths:  months,
		ProbationEndDate: joining.AddDate(0, months, 0),
		Status:           StatusInProgress,
	}, nil
}

// EffectiveEndDate is the extension deadline while Extended, else the
// original probation end date.
func (r Record) EffectiveEndDate() time.Time {
	if r.Status == StatusExtended && r.ExtensionEndDate != nil {
		return *r.ExtensionEndDate
	}
	return r.ProbationEndDate
}

// DaysRemaining may be negative once the deadline has passed.
func DaysRemaining(r Record, now time.Time) int {
	return core.DaysUntil(r.EffectiveEndDate(), now)
}

func Label(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("%d days overdue", -days)
	case days == -1:
		return "1 day overdue"
	case days == 0:
		return "Due today"
	case days == 1:
		return "1 day remaining"
	default:
		return fmt.Sprintf("%d days remaining", days)
	}
}

func NewView(r Record, now time.Time) View {
	days := DaysRemaining(r, now)
	return View{Record: r, DaysRemaining: days, Label: Label(days)}
}

// Extend pushes the effective deadline out by months. Extensions compound
// on the most recent deadline.
func Extend(r Record, months int) (Record, error) {
	if months <= 0 || months > MaxExtensionMonths {
		verr := &core.ValidationError{}
		verr.Add("months", fmt.Sprintf("must be between 1 and %d", MaxExtensionMonths))
		return r, verr.Err()
	}
	if r.Status != StatusInProgress && r.Status != StatusExtended {
		return r, fmt.Errorf("%w: cannot extend a %s probation", ErrInvalidTransition, r.Status)
	}
	next := r
	deadline := r.EffectiveEndDate().AddDate(0, months, 0)
	next.ExtensionEndDate = &deadline
	next.Status = StatusExtended
	return next, nil
}

// End confirms the employee.
func End(r Record) (Record, error) {
	if r.Status != StatusInProgress && r.Status != StatusExtended {
		return r, fmt.Errorf("%w: cannot end a %s probation", ErrInvalidTransition, r.Status)
	}
	next := r
	next.Status = StatusConfirmed
	return next, nil
}

// Terminate is the administrative exit from any non-terminal state.
func Terminate(r Record) (Record, error) {
	if r.Status.Terminal() {
		return r, fmt.Errorf("%w: cannot terminate a %s probation", ErrInvalidTransition, r.Status)
	}
	next := r
	next.Status = StatusTerminated
	return next, nil
}
