package alerts

import (
	"strconv"
	"strings"
	"time"

	"hospitalhr/internal/domain/core"
	"hospitalhr/internal/domain/records"
)

// ClassifyTier maps days-until-expiry onto a tier. A negative window falls
// back to DefaultWarningWindowDays.
func ClassifyTier(daysUntilExpiry, warningWindowDays int) Tier {
	if warningWindowDays < 0 {
		warningWindowDays = DefaultWarningWindowDays
	}
	switch {
	case daysUntilExpiry <= 0:
		return TierCritical
	case daysUntilExpiry <= warningWindowDays:
		return TierWarning
	default:
		return TierNormal
	}
}

// Compute derives the alert state of one license at now.
func Compute(license records.License, now time.Time, warningWindowDays int) AlertState {
	if !license.ExpiryDate.Valid {
		return AlertState{Tier: TierNormal}
	}
	days := core.DaysUntil(license.ExpiryDate.Time, now)
	return AlertState{
		DaysUntilExpiry: days,
		Tier:            ClassifyTier(days, warningWindowDays),
		ExpiryKnown:     true,
	}
}

// ComputeLicenseAlerts returns one state per license, in input order.
func ComputeLicenseAlerts(licenses []records.License, now time.Time, warningWindowDays int) []AlertState {
	out := make([]AlertState, len(licenses))
	for i, license := range licenses {
		out[i] = Compute(license, now, warningWindowDays)
	}
	return out
}

// ComputeFeed classifies licenses across employees and buckets them.
func ComputeFeed(licenses []records.EmployeeLicense, now time.Time, warningWindowDays int) Feed {
	feed := Feed{Critical: []FeedEntry{}, Warning: []FeedEntry{}}
	for _, item := range licenses {
		state := Compute(item.License, now, warningWindowDays)
		if !state.ExpiryKnown {
			continue
		}
		entry := FeedEntry{
			EmployeeRef:     item.EmployeeRef,
			LicenseType:     item.LicenseType,
			LicenseNumber:   item.LicenseNumber,
			ExpiryDate:      item.ExpiryDate.Ptr(),
			DaysUntilExpiry: state.DaysUntilExpiry,
			Tier:            state.Tier,
		}
		feed.add(entry)
	}
	return feed
}

// BuildFeed buckets the pre-classified upstream alerts by their level.
// Rows with any other level are dropped.
func BuildFeed(rows []records.LicenseAlert) Feed {
	feed := Feed{Critical: []FeedEntry{}, Warning: []FeedEntry{}}
	for _, row := range rows {
		entry := FeedEntry{
			EmployeeRef:     row.EmployeeRef.String(),
			LicenseType:     row.LicenseType,
			LicenseNumber:   row.LicenseNumber,
			ExpiryDate:      row.ExpiryDate.Ptr(),
			DaysUntilExpiry: row.DaysUntilExpiry,
		}
		switch strings.ToLower(strings.TrimSpace(row.AlertLevel)) {
		case LevelCritical:
			entry.Tier = TierCritical
		case LevelWarning:
			entry.Tier = TierWarning
		default:
			continue
		}
		feed.add(entry)
	}
	return feed
}

func (f *Feed) add(entry FeedEntry) {
	switch entry.Tier {
	case TierCritical:
		f.Critical = append(f.Critical, entry)
	case TierWarning:
		f.Warning = append(f.Warning, entry)
	}
}

// ValidateLicenses checks a license list before it is saved.
func ValidateLicenses(licenses []records.License) error {
	verr := &core.ValidationError{}
	for i, license := range licenses {
		field := func(name string) string {
			return "licenses[" + strconv.Itoa(i) + "]." + name
		}
		if strings.TrimSpace(license.LicenseType) == "" {
			verr.Add(field("license_type"), "is required")
		}
		if strings.TrimSpace(license.LicenseNumber) == "" {
			verr.Add(field("license_number"), "is required")
		}
		if !license.ExpiryDate.Valid {
			verr.Add(field("expiry_date"), "must be a valid date in YYYY-MM-DD format")
		}
		if license.IssueDate.Valid && license.ExpiryDate.Valid && license.ExpiryDate.Time.Before(license.IssueDate.Time) {
			verr.Add(field("expiry_date"), "must be on or after issue_date")
		}
		if !validStatus(license.Status) {
			verr.Add(field("status"), "must be one of Active, Expired, Suspended, Renewed")
		}
	}
	return verr.Err()
}

func validStatus(status records.LicenseStatus) bool {
	for _, allowed := range records.LicenseStatuses {
		if status == allowed {
			return true
		}
	}
	return false
}
