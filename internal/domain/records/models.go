package records

import (
	"strings"

	"hospitalhr/internal/domain/core"
)

// Entity kinds served by the record store under /entity/{kind}/{employeeRef}.
const (
	KindEducation      = "education"
	KindExperience     = "experience"
	KindMedical        = "medical"
	KindCertifications = "certifications"
	KindIDDocs         = "id-docs"
	KindSalary         = "salary"
	KindFamily         = "family"
	KindSkills         = "skills"
	KindBankDetails    = "bank-details"
	KindExit           = "exit"
)

var Kinds = []string{
	KindEducation,
	KindExperience,
	KindMedical,
	KindCertifications,
	KindIDDocs,
	KindSalary,
	KindFamily,
	KindSkills,
	KindBankDetails,
	KindExit,
}

func IsKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsSensitive reports whether kind carries pay, banking or identity data
// that only HR may read.
func IsSensitive(kind string) bool {
	switch kind {
	case KindSalary, KindBankDetails, KindIDDocs:
		return true
	default:
		return false
	}
}

type Education struct {
	ID              core.ID `json:"id"`
	Degree          string  `json:"degree"`
	University      string  `json:"university"`
	YearOfPassing   string  `json:"year_of_passing"`
	CertificateFile string  `json:"certificate_file"`
}

type Experience struct {
	ID               core.ID   `json:"id"`
	CompanyName      string    `json:"company_name"`
	JobTitle         string    `json:"job_title"`
	FromDate         core.Date `json:"from_date"`
	ToDate           core.Date `json:"to_date"`
	ExperienceLetter string    `json:"experience_letter"`
}

type Certification struct {
	ID                core.ID   `json:"id"`
	CertificationName string    `json:"certification_name"`
	IssuedBy          string    `json:"issued_by"`
	IssueDate         core.Date `json:"issue_date"`
	ExpiryDate        core.Date `json:"expiry_date"`
	CertificateFile   string    `json:"certificate_file"`
}

// Medical is the single medical profile of an employee. Licenses are
// embedded and only change through a full save of the profile.
type Medical struct {
	ID              core.ID   `json:"id"`
	BloodGroup      string    `json:"blood_group,omitempty"`
	Allergies       string    `json:"allergies,omitempty"`
	CertificateName string    `json:"certificate_name,omitempty"`
	CertificateFile string    `json:"certificate_file,omitempty"`
	Licenses        []License `json:"licenses"`
}

// CertificateRef is the blob reference of the medical certificate, falling
// back to its file name for records uploaded before file ids existed.
func (m Medical) CertificateRef() string {
	if ref := strings.TrimSpace(m.CertificateFile); ref != "" {
		return ref
	}
	return strings.TrimSpace(m.CertificateName)
}

type LicenseStatus string

const (
	LicenseActive    LicenseStatus = "Active"
	LicenseExpired   LicenseStatus = "Expired"
	LicenseSuspended LicenseStatus = "Suspended"
	LicenseRenewed   LicenseStatus = "Renewed"
)

var LicenseStatuses = []LicenseStatus{LicenseActive, LicenseExpired, LicenseSuspended, LicenseRenewed}

type License struct {
	LicenseType      string        `json:"license_type"`
	LicenseNumber    string        `json:"license_number"`
	IssuingAuthority string        `json:"issuing_authority"`
	IssueDate        core.Date     `json:"issue_date"`
	ExpiryDate       core.Date     `json:"expiry_date"`
	Status           LicenseStatus `json:"status"`
}

// EmployeeLicense is a license tagged with its owning employee.
type EmployeeLicense struct {
	EmployeeRef string `json:"employee_id"`
	License
}

// LicenseAlert is one row of the pre-flattened organisation-wide feed.
type LicenseAlert struct {
	EmployeeRef     core.ID   `json:"employee_id"`
	LicenseType     string    `json:"license_type"`
	LicenseNumber   string    `json:"license_number"`
	ExpiryDate      core.Date `json:"expiry_date"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	AlertLevel      string    `json:"alert_level"`
}

// OnboardingDocument is a file uploaded during onboarding.
type OnboardingDocument struct {
	ID           core.ID        `json:"id"`
	DocumentType string         `json:"document_type"`
	FileName     string         `json:"file_name"`
	Status       string         `json:"status"`
	UploadedAt   core.Timestamp `json:"uploaded_at"`
}
