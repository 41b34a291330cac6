package identity

import (
	"strings"
	"time"

	"hospitalhr/internal/domain/core"
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusOther     Status = "Other"
)

// Defaults for fields that only exist in the onboarding pipeline.
const (
	DefaultWorkLocation     = "N/A"
	DefaultReportingManager = "N/A"
	DefaultShift            = "General"
	DefaultProbationTerm    = "3 Months"
)

// Profile is the normalized, read-only view of one employee. Fields the
// owning source does not carry are nil.
type Profile struct {
	EmployeeRef      string       `json:"employeeRef"`
	DisplayName      *string      `json:"displayName"`
	Email            *string      `json:"email"`
	JobTitle         *string      `json:"jobTitle"`
	Department       *string      `json:"department"`
	EmployeeCode     *string      `json:"employeeCode"`
	JoiningDate      *time.Time   `json:"joiningDate"`
	WorkLocation     *string      `json:"workLocation"`
	ReportingManager *string      `json:"reportingManager"`
	Shift            *string      `json:"shift"`
	ProbationTerm    *string      `json:"probationTerm"`
	Status           Status       `json:"status"`
	SourceSystem     SourceSystem `json:"sourceSystem"`

	// ApplicationID is set only for onboarding-sourced profiles.
	ApplicationID string `json:"applicationId,omitempty"`
}

// OwnedBy reports whether the account identified by userID and employeeCode
// is the employee this profile describes.
func (p *Profile) OwnedBy(userID, employeeCode string) bool {
	if p == nil {
		return false
	}
	if p.SourceSystem == SourceUserManagement && strings.TrimSpace(userID) != "" && p.EmployeeRef == UserRef(strings.TrimSpace(userID)).String() {
		return true
	}
	code := strings.TrimSpace(employeeCode)
	return code != "" && p.EmployeeCode != nil && strings.EqualFold(strings.TrimSpace(*p.EmployeeCode), code)
}

// Application is one hired candidate from the onboarding pipeline.
type Application struct {
	ApplicationID    core.ID   `json:"application_id"`
	CandidateName    string    `json:"candidate_name"`
	Email            string    `json:"email"`
	JobTitle         string    `json:"job_title"`
	Department       string    `json:"department"`
	EmployeeCode     core.ID   `json:"employee_code"`
	JoiningDate      core.Date `json:"joining_date"`
	WorkLocation     string    `json:"work_location"`
	ReportingManager string    `json:"reporting_manager"`
	Shift            string    `json:"shift"`
	ProbationPeriod  string    `json:"probation_period"`
	Status           string    `json:"status"`
}

// User is an active account from the user-management directory.
type User struct {
	ID             core.ID   `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Designation    string    `json:"designation"`
	DepartmentName string    `json:"department_name"`
	EmployeeCode   core.ID   `json:"employee_code"`
	JoiningDate    core.Date `json:"joining_date"`
}

func (u User) IsEmployee() bool {
	return !u.EmployeeCode.Empty()
}

func profileFromApplication(app Application) *Profile {
	return &Profile{
		EmployeeRef:      OnboardingRef(app.ApplicationID.String()).String(),
		DisplayName:      core.Optional(app.CandidateName),
		Email:            core.Optional(app.Email),
		JobTitle:         core.Optional(app.JobTitle),
		Department:       core.Optional(app.Department),
		EmployeeCode:     core.Optional(app.EmployeeCode.String()),
		JoiningDate:      app.JoiningDate.Ptr(),
		WorkLocation:     core.Optional(app.WorkLocation),
		ReportingManager: core.Optional(app.ReportingManager),
		Shift:            core.Optional(app.Shift),
		ProbationTerm:    core.Optional(app.ProbationPeriod),
		Status:           applicationStatus(app.Status),
		SourceSystem:     SourceOnboarding,
		ApplicationID:    app.ApplicationID.String(),
	}
}

func profileFromUser(user User) *Profile {
	return &Profile{
		EmployeeRef:      UserRef(user.ID.String()).String(),
		DisplayName:      core.Optional(user.Name),
		Email:            core.Optional(user.Email),
		JobTitle:         core.Optional(user.Designation),
		Department:       core.Optional(user.DepartmentName),
		EmployeeCode:     core.Optional(user.EmployeeCode.String()),
		JoiningDate:      user.JoiningDate.Ptr(),
		WorkLocation:     core.OptionalOr("", DefaultWorkLocation),
		ReportingManager: core.OptionalOr("", DefaultReportingManager),
		Shift:            core.OptionalOr("", DefaultShift),
		ProbationTerm:    core.OptionalOr("", DefaultProbationTerm),
		Status:           StatusActive,
		SourceSystem:     SourceUserManagement,
	}
}

func applicationStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return StatusActive
	case "completed":
		return StatusCompleted
	default:
		return StatusOther
	}
}
