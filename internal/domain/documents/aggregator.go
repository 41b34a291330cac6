package documents

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"hospitalhr/internal/domain/identity"
	"hospitalhr/internal/domain/records"
	"hospitalhr/internal/platform/logging"
)

const (
	TypeEducation     = "Education Certificate"
	TypeExperience    = "Experience Letter"
	TypeMedical       = "Medical Certificate"
	TypeCertification = "Professional Certification"
)

type FailureRecorder interface {
	RecordSourceFailure(source string)
}

// Aggregator collects document references for one employee from the record
// store and the onboarding pipeline.
type Aggregator struct {
	Records    records.Reader
	Onboarding records.OnboardingDocuments
	Failures   FailureRecorder
}

func NewAggregator(reader records.Reader, onboarding records.OnboardingDocuments) *Aggregator {
	return &Aggregator{Records: reader, Onboarding: onboarding}
}

type fetchFunc func(ctx context.Context) ([]Record, error)

// Aggregate runs the five source fetches concurrently. A failing source
// contributes no records and is reported in Result.Failures; it never
// aborts the others. Output order follows Categories.
func (a *Aggregator) Aggregate(ctx context.Context, profile *identity.Profile) Result {
	if profile == nil {
		return Result{Documents: []Record{}}
	}
	switch profile.SourceSystem {
	case identity.SourceOnboarding:
		return a.aggregateOnboarding(ctx, profile)
	case identity.SourceUserManagement:
		// User-management employees have no application id and no record
		// store entries keyed by it.
		return Result{Documents: []Record{}}
	default:
		return Result{Documents: []Record{}}
	}
}

func (a *Aggregator) aggregateOnboarding(ctx context.Context, profile *identity.Profile) Result {
	ref := profile.EmployeeRef
	fetches := map[Category]fetchFunc{
		CategoryEducation:     func(ctx context.Context) ([]Record, error) { return a.education(ctx, ref) },
		CategoryExperience:    func(ctx context.Context) ([]Record, error) { return a.experience(ctx, ref) },
		CategoryMedical:       func(ctx context.Context) ([]Record, error) { return a.medical(ctx, ref) },
		CategoryCertification: func(ctx context.Context) ([]Record, error) { return a.certifications(ctx, ref) },
		CategoryOnboarding: func(ctx context.Context) ([]Record, error) {
			return a.onboarding(ctx, profile.ApplicationID)
		},
	}

	parts := make([][]Record, len(Categories))
	errs := make([]error, len(Categories))
	var g errgroup.Group
	for i, category := range Categories {
		fetch := fetches[category]
		g.Go(func() error {
			parts[i], errs[i] = safeFetch(ctx, fetch)
			return nil
		})
	}
	_ = g.Wait()

	result := Result{Documents: []Record{}}
	seen := map[string]bool{}
	for i, category := range Categories {
		if errs[i] != nil {
			logging.From(ctx).Warn("document source failed", "source", string(category), "employeeRef", ref, "err", errs[i])
			if a.Failures != nil {
				a.Failures.RecordSourceFailure("documents." + strings.ToLower(string(category)))
			}
			result.Failures = append(result.Failures, SourceFailure{Source: category, Err: errs[i]})
			continue
		}
		for _, doc := range parts[i] {
			key := doc.ID.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			result.Documents = append(result.Documents, doc)
		}
	}
	return result
}

func safeFetch(ctx context.Context, fetch fetchFunc) (docs []Record, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			docs, err = nil, fmt.Errorf("documents: source panicked: %v", rec)
		}
	}()
	return fetch(ctx)
}

func (a *Aggregator) education(ctx context.Context, ref string) ([]Record, error) {
	if a.Records == nil {
		return nil, nil
	}
	items, err := a.Records.ListEducation(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		file := strings.TrimSpace(item.CertificateFile)
		if file == "" || item.ID.Empty() {
			continue
		}
		out = append(out, Record{
			ID:           ID{Category: CategoryEducation, NativeID: item.ID.String()},
			DocumentType: TypeEducation,
			FileName:     fileName(file),
			Category:     CategoryEducation,
			ViewPath:     blobViewPath(file),
			Degree:       item.Degree,
			University:   item.University,
		})
	}
	return out, nil
}

func (a *Aggregator) experience(ctx context.Context, ref string) ([]Record, error) {
	if a.Records == nil {
		return nil, nil
	}
	items, err := a.Records.ListExperience(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		file := strings.TrimSpace(item.ExperienceLetter)
		if file == "" || item.ID.Empty() {
			continue
		}
		out = append(out, Record{
			ID:           ID{Category: CategoryExperience, NativeID: item.ID.String()},
			DocumentType: TypeExperience,
			FileName:     fileName(file),
			Category:     CategoryExperience,
			ViewPath:     blobViewPath(file),
			Company:      item.CompanyName,
			JobTitle:     item.JobTitle,
		})
	}
	return out, nil
}

func (a *Aggregator) medical(ctx context.Context, ref string) ([]Record, error) {
	if a.Records == nil {
		return nil, nil
	}
	item, err := a.Records.GetMedical(ctx, ref)
	if errors.Is(err, records.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if item == nil || strings.TrimSpace(item.CertificateName) == "" {
		return nil, nil
	}
	nativeID := item.ID.String()
	if nativeID == "" {
		nativeID = ref
	}
	return []Record{{
		ID:           ID{Category: CategoryMedical, NativeID: nativeID},
		DocumentType: TypeMedical,
		FileName:     strings.TrimSpace(item.CertificateName),
		Category:     CategoryMedical,
		ViewPath:     blobViewPath(item.CertificateRef()),
	}}, nil
}

func (a *Aggregator) certifications(ctx context.Context, ref string) ([]Record, error) {
	if a.Records == nil {
		return nil, nil
	}
	items, err := a.Records.ListCertifications(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		file := strings.TrimSpace(item.CertificateFile)
		if file == "" || item.ID.Empty() {
			continue
		}
		out = append(out, Record{
			ID:                ID{Category: CategoryCertification, NativeID: item.ID.String()},
			DocumentType:      TypeCertification,
			FileName:          fileName(file),
			Category:          CategoryCertification,
			ViewPath:          blobViewPath(file),
			CertificationName: item.CertificationName,
			IssuedBy:          item.IssuedBy,
		})
	}
	return out, nil
}

func (a *Aggregator) onboarding(ctx context.Context, applicationID string) ([]Record, error) {
	if a.Onboarding == nil || applicationID == "" {
		return nil, nil
	}
	items, err := a.Onboarding.ListDocuments(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if item.ID.Empty() {
			continue
		}
		out = append(out, Record{
			ID:           ID{Category: CategoryOnboarding, NativeID: item.ID.String()},
			DocumentType: item.DocumentType,
			FileName:     item.FileName,
			Category:     CategoryOnboarding,
			ViewPath:     "/onboarding/document/" + url.PathEscape(item.ID.String()) + "/view",
			Status:       item.Status,
			UploadedAt:   item.UploadedAt.Ptr(),
		})
	}
	return out, nil
}

func blobViewPath(ref string) string {
	return "/files/" + url.PathEscape(ref) + "/view"
}

func fileName(ref string) string {
	return path.Base(ref)
}
