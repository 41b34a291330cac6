package alertshandler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hospitalhr/internal/domain/alerts"
	"hospitalhr/internal/domain/auth"
	"hospitalhr/internal/platform/logging"
	"hospitalhr/internal/platform/report"
	"hospitalhr/internal/transport/http/api"
	"hospitalhr/internal/transport/http/middleware"
	"hospitalhr/internal/transport/http/shared"
)

type FeedService interface {
	OrganizationFeed(ctx context.Context, windowDays int) (alerts.Feed, error)
}

type Handler struct {
	Service FeedService
	Now     func() time.Time
}

func NewHandler(service FeedService) *Handler {
	return &Handler{Service: service, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/alerts/licenses", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAlertsRead)).Get("/", h.handleFeed)
		r.With(middleware.RequirePermission(auth.PermAlertsRead)).Get("/report.pdf", h.handleReport)
	})
}

type feedResponse struct {
	alerts.Feed
	Total int `json:"total"`
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) (alerts.Feed, bool) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	window := v.QueryInt(r, "window", alerts.ConfiguredWindow)
	if v.Reject(w, reqID) {
		return alerts.Feed{}, false
	}
	feed, err := h.Service.OrganizationFeed(r.Context(), window)
	if err != nil {
		shared.FailError(w, r, err, reqID)
		return alerts.Feed{}, false
	}
	if feed.Critical == nil {
		feed.Critical = []alerts.FeedEntry{}
	}
	if feed.Warning == nil {
		feed.Warning = []alerts.FeedEntry{}
	}
	return feed, true
}

func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	feed, ok := h.feed(w, r)
	if !ok {
		return
	}
	api.Success(w, feedResponse{Feed: feed, Total: feed.Len()}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	feed, ok := h.feed(w, r)
	if !ok {
		return
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	pdf, err := report.LicenseAlertsPDF(feed, now())
	if err != nil {
		logging.From(r.Context()).Error("license report render failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=license-alerts.pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logging.From(r.Context()).Warn("license report write failed", "err", err)
	}
}
