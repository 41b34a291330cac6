package jobshandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hospitalhr/internal/domain/auth"
	"hospitalhr/internal/domain/probation"
	"hospitalhr/internal/platform/jobs"
	"hospitalhr/internal/transport/http/api"
	"hospitalhr/internal/transport/http/middleware"
	"hospitalhr/internal/transport/http/shared"
)

type Runner interface {
	RunProbationSweep(ctx context.Context, withinDays int) (probation.SweepReport, error)
	EnqueueProbationSweep(withinDays int) bool
	ListRuns(ctx context.Context, jobType string, limit int) ([]jobs.Run, error)
}

type Handler struct {
	Jobs Runner
}

func NewHandler(runner Runner) *Handler {
	return &Handler{Jobs: runner}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermJobsRun)).Post("/probation-sweep", h.handleProbationSweep)
		r.With(middleware.RequirePermission(auth.PermJobsRun)).Get("/runs", h.handleListRuns)
	})
}

func (h *Handler) handleProbationSweep(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	withinDays := v.QueryInt(r, "withinDays", -1)
	if v.Reject(w, reqID) {
		return
	}

	if r.URL.Query().Get("async") == "true" {
		if !h.Jobs.EnqueueProbationSweep(withinDays) {
			api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full", reqID)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, api.Envelope{Success: true, Data: map[string]string{"status": "queued"}, RequestID: reqID})
		return
	}

	report, err := h.Jobs.RunProbationSweep(r.Context(), withinDays)
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	api.Success(w, report, reqID)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	jobType := strings.TrimSpace(r.URL.Query().Get("type"))
	if jobType == "" {
		jobType = jobs.JobProbationSweep
	}
	v := shared.NewValidator()
	v.Enum("type", jobType, []string{jobs.JobProbationSweep}, "unknown job type")
	if v.Reject(w, reqID) {
		return
	}

	runs, err := h.Jobs.ListRuns(r.Context(), jobType, shared.ParseLimit(r, 20, 100))
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return
	}
	api.Success(w, runs, reqID)
}
