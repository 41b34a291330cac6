package audithandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hospitalhr/internal/domain/audit"
	"hospitalhr/internal/domain/auth"
	"hospitalhr/internal/transport/http/middleware"
)

type fakeLister struct {
	tenant string
	filter audit.Filter
	limit  int
	err    error
}

func (f *fakeLister) List(_ context.Context, tenantID string, filter audit.Filter, limit int) ([]audit.Event, error) {
	f.tenant, f.filter, f.limit = tenantID, filter, limit
	if f.err != nil {
		return nil, f.err
	}
	return []audit.Event{{
		ID:         42,
		ActorID:    "hr-1",
		Action:     "probation.extend",
		EntityType: "probation",
		EntityID:   "APP-1",
		CreatedAt:  time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}}, nil
}

func newRouter(h *Handler, role string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithUser(req.Context(), auth.UserContext{UserID: "hr-1", TenantID: "hospital", RoleName: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.RegisterRoutes(r)
	return r
}

func TestListEventsFilters(t *testing.T) {
	lister := &fakeLister{}
	router := newRouter(NewHandler(lister), auth.RoleHR)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events?entityType=probation&entityId=APP-1&limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if lister.tenant != "hospital" || lister.filter.EntityType != "probation" || lister.filter.EntityID != "APP-1" || lister.limit != 10 {
		t.Fatalf("unexpected query: %s %+v %d", lister.tenant, lister.filter, lister.limit)
	}
	if rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("unexpected total header %q", rec.Header().Get("X-Total-Count"))
	}
}

func TestListEventsFailure(t *testing.T) {
	router := newRouter(NewHandler(&fakeLister{err: errors.New("db down")}), auth.RoleHR)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "audit_list_failed") {
		t.Fatalf("expected audit_list_failed, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestExportCSV(t *testing.T) {
	router := newRouter(NewHandler(&fakeLister{}), auth.RoleSystemAdmin)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events/export", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("unexpected export response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "42,hr-1,probation.extend,probation,APP-1") {
		t.Fatalf("unexpected csv: %q", rec.Body.String())
	}
}

func TestAuditRequiresPermission(t *testing.T) {
	router := newRouter(NewHandler(&fakeLister{}), auth.RoleManager)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
