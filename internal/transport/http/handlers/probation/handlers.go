package probationhandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hospitalhr/internal/domain/audit"
	"hospitalhr/internal/domain/auth"
	"hospitalhr/internal/domain/probation"
	"hospitalhr/internal/transport/http/api"
	"hospitalhr/internal/transport/http/middleware"
	"hospitalhr/internal/transport/http/shared"
)

const idempotencyHeader = "Idempotency-Key"

type ProbationService interface {
	Create(ctx context.Context, actor probation.Actor, input probation.CreateInput) (probation.View, error)
	Get(ctx context.Context, tenantID, employeeRef string) (probation.View, error)
	List(ctx context.Context, tenantID string, statuses []probation.Status) ([]probation.View, error)
	Extend(ctx context.Context, actor probation.Actor, employeeRef string, input probation.TransitionInput) (probation.View, error)
	End(ctx context.Context, actor probation.Actor, employeeRef string, input probation.TransitionInput) (probation.View, error)
	Terminate(ctx context.Context, actor probation.Actor, employeeRef string, input probation.TransitionInput) (probation.View, error)
}

type HistoryReader interface {
	List(ctx context.Context, tenantID string, filter audit.Filter, limit int) ([]audit.Event, error)
}

type Handler struct {
	Service ProbationService
	History HistoryReader
}

func NewHandler(service ProbationService, history HistoryReader) *Handler {
	return &Handler{Service: service, History: history}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/probations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermProbationRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermProbationWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermProbationRead)).Get("/{ref}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermProbationRead)).Get("/{ref}/history", h.handleHistory)
		r.With(middleware.RequirePermission(auth.PermProbationWrite)).Post("/{ref}/extend", h.transition(probation.ActionExtend))
		r.With(middleware.RequirePermission(auth.PermProbationWrite)).Post("/{ref}/end", h.transition(probation.ActionEnd))
		r.With(middleware.RequirePermission(auth.PermProbationWrite)).Post("/{ref}/terminate", h.transition(probation.ActionTerminate))
	})
}

func actorFrom(r *http.Request, user auth.UserContext) probation.Actor {
	return probation.Actor{
		UserID:    user.UserID,
		TenantID:  user.TenantID,
		RequestID: middleware.GetRequestID(r.Context()),
		IP:        middleware.ClientIP(r),
	}
}

// parseStatuses accepts repeated and comma separated status parameters.
func parseStatuses(r *http.Request) []probation.Status {
	var out []probation.Status
	for _, raw := range r.URL.Query()["status"] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, probation.Status(part))
			}
		}
	}
	return out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	views, err := h.Service.List(r.Context(), user.TenantID, parseStatuses(r))
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	api.Success(w, views, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload probation.CreateInput
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("employeeRef", payload.EmployeeRef, "is required")
	v.Required("dateOfJoining", payload.DateOfJoining, "is required")
	if v.Reject(w, reqID) {
		return
	}

	view, err := h.Service.Create(r.Context(), actorFrom(r, user), payload)
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	api.Created(w, view, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	view, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "ref"))
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	api.Success(w, view, reqID)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	ref := strings.TrimSpace(chi.URLParam(r, "ref"))
	if _, err := h.Service.Get(r.Context(), user.TenantID, ref); err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	events, err := h.History.List(r.Context(), user.TenantID, audit.Filter{
		EntityType: probation.EntityType,
		EntityID:   ref,
	}, shared.ParseLimit(r, 50, 200))
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	api.Success(w, events, reqID)
}

// transition serves extend, end and terminate. The body is optional for end
// and terminate.
func (h *Handler) transition(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetRequestID(r.Context())
		user, ok := middleware.GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
			return
		}

		var input probation.TransitionInput
		if r.ContentLength != 0 || action == probation.ActionExtend {
			if !shared.DecodeJSON(w, r, &input, reqID) {
				return
			}
		}
		input.IdempotencyKey = strings.TrimSpace(r.Header.Get(idempotencyHeader))

		ref := chi.URLParam(r, "ref")
		actor := actorFrom(r, user)
		var (
			view probation.View
			err  error
		)
		switch action {
		case probation.ActionExtend:
			view, err = h.Service.Extend(r.Context(), actor, ref, input)
		case probation.ActionEnd:
			view, err = h.Service.End(r.Context(), actor, ref, input)
		default:
			view, err = h.Service.Terminate(r.Context(), actor, ref, input)
		}
		if err != nil {
			shared.FailError(w, r, err, reqID)
			return
		}
		api.Success(w, view, reqID)
	}
}
