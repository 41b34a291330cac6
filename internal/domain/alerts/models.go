package alerts

import (
	"time"

	"hospitalhr/internal/domain/records"
)

type Tier string

const (
	TierNormal   Tier = "Normal"
	TierWarning  Tier = "Warning"
	TierCritical Tier = "Critical"
)

const DefaultWarningWindowDays = 30

// Alert levels used by the pre-flattened upstream feed.
const (
	LevelCritical = "critical"
	LevelWarning  = "warning"
)

// AlertState is derived from a license expiry date and never stored.
type AlertState struct {
	DaysUntilExpiry int  `json:"daysUntilExpiry"`
	Tier            Tier `json:"tier"`
	ExpiryKnown     bool `json:"expiryKnown"`
}

type LicenseView struct {
	records.License
	Alert AlertState `json:"alert"`
}

type FeedEntry struct {
	EmployeeRef     string     `json:"employeeRef"`
	LicenseType     string     `json:"licenseType"`
	LicenseNumber   string     `json:"licenseNumber"`
	ExpiryDate      *time.Time `json:"expiryDate"`
	DaysUntilExpiry int        `json:"daysUntilExpiry"`
	Tier            Tier       `json:"tier"`
}

// Feed is the organisation-wide alert list. Normal-tier licenses are never
// part of it.
type Feed struct {
	Critical []FeedEntry `json:"critical"`
	Warning  []FeedEntry `json:"warning"`
}

func (f Feed) Len() int {
	return len(f.Critical) + len(f.Warning)
}
