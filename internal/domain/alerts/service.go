package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hospitalhr/internal/domain/records"
)

type Service struct {
	Medical           records.MedicalStore
	Feed              records.LicenseFeed
	WarningWindowDays int
	Now               func() time.Time
}

func NewService(medical records.MedicalStore, feed records.LicenseFeed, warningWindowDays int) *Service {
	return &Service{Medical: medical, Feed: feed, WarningWindowDays: warningWindowDays, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// ConfiguredWindow asks for the service's configured warning window. Any
// non-negative window, zero included, is used as given.
const ConfiguredWindow = -1

func (s *Service) window(override int) int {
	if override >= 0 {
		return override
	}
	if s.WarningWindowDays > 0 {
		return s.WarningWindowDays
	}
	return DefaultWarningWindowDays
}

// EmployeeLicenses returns an employee's licenses with their alert states.
// A missing medical profile yields an empty list.
func (s *Service) EmployeeLicenses(ctx context.Context, employeeRef string, windowDays int) ([]LicenseView, error) {
	medical, err := s.Medical.GetMedical(ctx, employeeRef)
	if errors.Is(err, records.ErrNotFound) {
		return []LicenseView{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load medical profile: %w", err)
	}
	if medical == nil {
		return []LicenseView{}, nil
	}
	states := ComputeLicenseAlerts(medical.Licenses, s.now(), s.window(windowDays))
	out := make([]LicenseView, len(medical.Licenses))
	for i, license := range medical.Licenses {
		out[i] = LicenseView{License: license, Alert: states[i]}
	}
	return out, nil
}

// SaveLicenses validates licenses and replaces them in the employee's
// medical profile with a single full save.
func (s *Service) SaveLicenses(ctx context.Context, employeeRef string, licenses []records.License) error {
	if err := ValidateLicenses(licenses); err != nil {
		return err
	}
	medical, err := s.Medical.GetMedical(ctx, employeeRef)
	if err != nil && !errors.Is(err, records.ErrNotFound) {
		return fmt.Errorf("load medical profile: %w", err)
	}
	profile := records.Medical{}
	if medical != nil {
		profile = *medical
	}
	profile.Licenses = licenses
	if err := s.Medical.SaveMedical(ctx, employeeRef, profile); err != nil {
		return fmt.Errorf("save medical profile: %w", err)
	}
	return nil
}

// OrganizationFeed fetches the organisation-wide alert rows and buckets
// them. Rows the upstream left unclassified are tiered locally.
func (s *Service) OrganizationFeed(ctx context.Context, windowDays int) (Feed, error) {
	rows, err := s.Feed.LicenseAlerts(ctx)
	if err != nil {
		return Feed{}, fmt.Errorf("load license alerts: %w", err)
	}
	var leveled []records.LicenseAlert
	var unleveled []records.EmployeeLicense
	for _, row := range rows {
		if strings.TrimSpace(row.AlertLevel) != "" {
			leveled = append(leveled, row)
			continue
		}
		unleveled = append(unleveled, records.EmployeeLicense{
			EmployeeRef: row.EmployeeRef.String(),
			License: records.License{
				LicenseType:   row.LicenseType,
				LicenseNumber: row.LicenseNumber,
				ExpiryDate:    row.ExpiryDate,
			},
		})
	}
	feed := BuildFeed(leveled)
	local := ComputeFeed(unleveled, s.now(), s.window(windowDays))
	feed.Critical = append(feed.Critical, local.Critical...)
	feed.Warning = append(feed.Warning, local.Warning...)
	return feed, nil
}
