package core

import (
	"encoding/json"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC3339, a zoneless timestamp or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Date is a nullable calendar date exchanged as YYYY-MM-DD.
type Date struct {
	Time  time.Time
	Valid bool
}

func NewDate(t time.Time) Date {
	return Date{Time: Midnight(t), Valid: true}
}

// UnmarshalJSON never fails: anything that is not a parseable date string
// decodes as null.
func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, ok := lenientDate(data)
	if !ok {
		*d = Date{}
		return nil
	}
	*d = NewDate(parsed)
	return nil
}

func lenientDate(data []byte) (time.Time, bool) {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return time.Time{}, false
	}
	parsed, err := ParseDate(raw)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed, true
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format("2006-01-02"))
}

func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// Midnight truncates t to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

const day = 24 * time.Hour

// DaysUntil is ceil((deadline - now) / 1 day); negative once the deadline has passed.
func DaysUntil(deadline, now time.Time) int {
	diff := deadline.Sub(now)
	days := diff / day
	if diff%day > 0 {
		days++
	}
	return int(days)
}

// Timestamp is a nullable instant that keeps its time of day.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	parsed, ok := lenientDate(data)
	*ts = Timestamp{Time: parsed, Valid: ok}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339))
}

func (ts Timestamp) Ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
