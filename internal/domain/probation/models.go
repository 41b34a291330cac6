package probation

import "time"

type Status string

const (
	StatusInProgress Status = "InProgress"
	StatusExtended   Status = "Extended"
	StatusConfirmed  Status = "Confirmed"
	StatusTerminated Status = "Terminated"
)

var Statuses = []Status{StatusInProgress, StatusExtended, StatusConfirmed, StatusTerminated}

func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusTerminated
}

func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Record is one employee's probation. ProbationEndDate is fixed at creation;
// ExtensionEndDate is only set by Extend.
type Record struct {
	TenantID         string     `json:"tenantId"`
	EmployeeRef      string     `json:"employeeRef"`
	DateOfJoining    time.Time  `json:"dateOfJoining"`
	ProbationMonths  int        `json:"probationMonths"`
	ProbationEndDate time.Time  `json:"probationEndDate"`
	ExtensionEndDate *time.Time `json:"extensionEndDate"`
	Status           Status     `json:"status"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// View is a record with its countdown as of the time it was built.
type View struct {
	Record
	DaysRemaining int    `json:"daysRemaining"`
	Label         string `json:"label"`
}

type CreateInput struct {
	EmployeeRef     string `json:"employeeRef"`
	DateOfJoining   string `json:"dateOfJoining"`
	ProbationMonths int    `json:"probationMonths"`
}

// Actor identifies who performed a transition, for audit and idempotency.
type Actor struct {
	UserID    string
	TenantID  string
	RequestID string
	IP        string
}

type SweepReport struct {
	Checked int    `json:"checked"`
	Due     []View `json:"due"`
	Overdue []View `json:"overdue"`
}
