package identity

import (
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	cases := []struct {
		raw    string
		source SourceSystem
		id     string
	}{
		{"42", SourceOnboarding, "42"},
		{" 42 ", SourceOnboarding, "42"},
		{"user_7", SourceUserManagement, "7"},
	}
	for _, tc := range cases {
		ref, err := ParseRef(tc.raw)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.raw, err)
		}
		if ref.Source != tc.source || ref.ID != tc.id {
			t.Fatalf("%q: unexpected ref %+v", tc.raw, ref)
		}
	}
}

func TestParseRefInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "user_"} {
		if _, err := ParseRef(raw); !errors.Is(err, ErrInvalidRef) {
			t.Fatalf("%q: expected ErrInvalidRef, got %v", raw, err)
		}
	}
}

func TestRefStringRoundTrip(t *testing.T) {
	for _, raw := range []string{"42", "user_7"} {
		ref, err := ParseRef(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.String() != raw {
			t.Fatalf("expected %q, got %q", raw, ref.String())
		}
	}
}
