package employeeshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hospitalhr/internal/domain/alerts"
	"hospitalhr/internal/domain/auth"
	"hospitalhr/internal/domain/documents"
	"hospitalhr/internal/domain/identity"
	"hospitalhr/internal/domain/records"
	"hospitalhr/internal/transport/http/api"
	"hospitalhr/internal/transport/http/middleware"
	"hospitalhr/internal/transport/http/shared"
)

type ProfileResolver interface {
	ResolveRaw(ctx context.Context, raw string) (*identity.Profile, error)
}

type DocumentAggregator interface {
	Aggregate(ctx context.Context, profile *identity.Profile) documents.Result
}

type LicenseService interface {
	EmployeeLicenses(ctx context.Context, employeeRef string, windowDays int) ([]alerts.LicenseView, error)
	SaveLicenses(ctx context.Context, employeeRef string, licenses []records.License) error
}

type EntityReader interface {
	Entity(ctx context.Context, kind, employeeRef string) (json.RawMessage, error)
}

type Handler struct {
	Profiles    ProfileResolver
	Documents   DocumentAggregator
	Licenses    LicenseService
	Entities    EntityReader
	ViewBaseURL string
}

func NewHandler(profiles ProfileResolver, docs DocumentAggregator, licenses LicenseService, entities EntityReader, viewBaseURL string) *Handler {
	return &Handler{Profiles: profiles, Documents: docs, Licenses: licenses, Entities: entities, ViewBaseURL: viewBaseURL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees/{ref}", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/profile", h.handleProfile)
		r.With(middleware.RequirePermission(auth.PermDocumentsRead)).Get("/documents", h.handleDocuments)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/records/{kind}", h.handleEntity)
		r.With(middleware.RequirePermission(auth.PermLicensesRead)).Get("/licenses", h.handleListLicenses)
		r.With(middleware.RequirePermission(auth.PermLicensesWrite)).Put("/licenses", h.handleSaveLicenses)
	})
}

type documentsResponse struct {
	EmployeeRef   string                    `json:"employeeRef"`
	Documents     []documents.View          `json:"documents"`
	FailedSources []documents.SourceFailure `json:"failedSources"`
	Degraded      bool                      `json:"degraded"`
}

type saveLicensesRequest struct {
	Licenses []records.License `json:"licenses"`
}

// selfOnly reports whether user may only see their own employee record.
func selfOnly(user auth.UserContext) bool {
	return user.RoleName == auth.RoleEmployee
}

func failNotOwner(w http.ResponseWriter, reqID string) {
	api.Fail(w, http.StatusForbidden, "forbidden", "employees can only access their own records", reqID)
}

// allowSubject resolves ref for self-only callers and rejects anyone else's.
func (h *Handler) allowSubject(w http.ResponseWriter, r *http.Request, user auth.UserContext, ref, reqID string) bool {
	if !selfOnly(user) {
		return true
	}
	profile, err := h.Profiles.ResolveRaw(r.Context(), ref)
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return false
	}
	if !profile.OwnedBy(user.UserID, user.EmployeeCode) {
		failNotOwner(w, reqID)
		return false
	}
	return true
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	profile, err := h.Profiles.ResolveRaw(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	if selfOnly(user) && !profile.OwnedBy(user.UserID, user.EmployeeCode) {
		failNotOwner(w, reqID)
		return
	}
	api.Success(w, profile, reqID)
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	profile, err := h.Profiles.ResolveRaw(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	if selfOnly(user) && !profile.OwnedBy(user.UserID, user.EmployeeCode) {
		failNotOwner(w, reqID)
		return
	}

	result := h.Documents.Aggregate(r.Context(), profile)
	failures := result.Failures
	if failures == nil {
		failures = []documents.SourceFailure{}
	}
	api.Success(w, documentsResponse{
		EmployeeRef:   profile.EmployeeRef,
		Documents:     result.Views(h.ViewBaseURL, user.Token),
		FailedSources: failures,
		Degraded:      result.Degraded(),
	}, reqID)
}

func (h *Handler) handleEntity(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	kind := strings.TrimSpace(chi.URLParam(r, "kind"))
	if !records.IsKind(kind) {
		v := shared.NewValidator()
		v.Add("kind", "unknown record kind")
		v.Reject(w, reqID)
		return
	}
	if records.IsSensitive(kind) && !user.Can(auth.PermSensitiveRead) {
		api.Fail(w, http.StatusForbidden, "forbidden", "record kind requires HR access", reqID)
		return
	}
	ref := chi.URLParam(r, "ref")
	if !h.allowSubject(w, r, user, ref, reqID) {
		return
	}

	raw, err := h.Entities.Entity(r.Context(), kind, ref)
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	api.Success(w, raw, reqID)
}

func (h *Handler) handleListLicenses(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	v := shared.NewValidator()
	window := v.QueryInt(r, "window", alerts.ConfiguredWindow)
	if v.Reject(w, reqID) {
		return
	}
	ref := chi.URLParam(r, "ref")
	if !h.allowSubject(w, r, user, ref, reqID) {
		return
	}

	views, err := h.Licenses.EmployeeLicenses(r.Context(), ref, window)
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	api.Success(w, views, reqID)
}

func (h *Handler) handleSaveLicenses(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload saveLicensesRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	if payload.Licenses == nil {
		payload.Licenses = []records.License{}
	}

	ref := chi.URLParam(r, "ref")
	if err := h.Licenses.SaveLicenses(r.Context(), ref, payload.Licenses); err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}

	views, err := h.Licenses.EmployeeLicenses(r.Context(), ref, alerts.ConfiguredWindow)
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	api.Success(w, views, reqID)
}
