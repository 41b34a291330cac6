package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an upstream identifier that may arrive as a JSON number or string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*id = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

func (id ID) Empty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Optional returns nil for blank values so absent upstream fields stay null.
func Optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// OptionalOr returns fallback when value is blank.
func OptionalOr(value, fallback string) *string {
	if v := Optional(value); v != nil {
		return v
	}
	return &fallback
}
