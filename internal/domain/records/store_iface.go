package records

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("records: not found")

// Reader is the read side of the record store for document-bearing entities.
type Reader interface {
	ListEducation(ctx context.Context, employeeRef string) ([]Education, error)
	ListExperience(ctx context.Context, employeeRef string) ([]Experience, error)
	GetMedical(ctx context.Context, employeeRef string) (*Medical, error)
	ListCertifications(ctx context.Context, employeeRef string) ([]Certification, error)
}

type MedicalStore interface {
	GetMedical(ctx context.Context, employeeRef string) (*Medical, error)
	SaveMedical(ctx context.Context, employeeRef string, medical Medical) error
}

type LicenseFeed interface {
	LicenseAlerts(ctx context.Context) ([]LicenseAlert, error)
}

type OnboardingDocuments interface {
	ListDocuments(ctx context.Context, applicationID string) ([]OnboardingDocument, error)
}
