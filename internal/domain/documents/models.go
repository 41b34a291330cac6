package documents

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Category string

const (
	CategoryEducation     Category = "Education"
	CategoryExperience    Category = "Experience"
	CategoryMedical       Category = "Medical"
	CategoryCertification Category = "Certification"
	CategoryOnboarding    Category = "Onboarding"
)

// Categories lists the sources in aggregation order.
var Categories = []Category{
	CategoryEducation,
	CategoryExperience,
	CategoryMedical,
	CategoryCertification,
	CategoryOnboarding,
}

var categoryPrefixes = map[Category]string{
	CategoryEducation:     "edu",
	CategoryExperience:    "exp",
	CategoryMedical:       "med",
	CategoryCertification: "cert",
	CategoryOnboarding:    "recent",
}

// ID identifies a document across all origin subsystems.
type ID struct {
	Category Category
	NativeID string
}

func (id ID) String() string {
	return categoryPrefixes[id.Category] + "-" + id.NativeID
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func ParseID(raw string) (ID, error) {
	prefix, native, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok || native == "" {
		return ID{}, fmt.Errorf("documents: malformed id %q", raw)
	}
	for category, p := range categoryPrefixes {
		if p == prefix {
			return ID{Category: category, NativeID: native}, nil
		}
	}
	return ID{}, fmt.Errorf("documents: unknown id prefix %q", prefix)
}

// Record is one normalized document reference. Origin-specific descriptive
// fields are set only for their own category.
type Record struct {
	ID           ID       `json:"id"`
	DocumentType string   `json:"documentType"`
	FileName     string   `json:"fileName"`
	Category     Category `json:"category"`
	ViewPath     string   `json:"viewPath"`

	Degree     string `json:"degree,omitempty"`
	University string `json:"university,omitempty"`

	Company  string `json:"company,omitempty"`
	JobTitle string `json:"jobTitle,omitempty"`

	CertificationName string `json:"certificationName,omitempty"`
	IssuedBy          string `json:"issuedBy,omitempty"`

	Status     string     `json:"status,omitempty"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

// ViewURL appends the caller's bearer token to the record's view path.
func (r Record) ViewURL(baseURL, token string) string {
	link := strings.TrimRight(baseURL, "/") + r.ViewPath
	if token == "" {
		return link
	}
	sep := "?"
	if strings.Contains(link, "?") {
		sep = "&"
	}
	return link + sep + "token=" + url.QueryEscape(token)
}

// SourceFailure names a source that contributed nothing because it failed.
type SourceFailure struct {
	Source Category `json:"source"`
	Err    error    `json:"-"`
}

func (f SourceFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(map[string]string{"source": string(f.Source), "message": msg})
}

// Result carries the aggregated records together with the failed sources so
// callers can flag degraded data.
type Result struct {
	Documents []Record        `json:"documents"`
	Failures  []SourceFailure `json:"failedSources"`
}

func (r Result) Degraded() bool {
	return len(r.Failures) > 0
}

// View is a record with a ready-to-open link.
type View struct {
	Record
	ViewURL string `json:"viewUrl"`
}

func (r Result) Views(baseURL, token string) []View {
	out := make([]View, 0, len(r.Documents))
	for _, doc := range r.Documents {
		out = append(out, View{Record: doc, ViewURL: doc.ViewURL(baseURL, token)})
	}
	return out
}
