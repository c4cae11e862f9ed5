package adminhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inhand/internal/domain/audit"
	"inhand/internal/domain/auth"
	"inhand/internal/platform/jobs"
	"inhand/internal/transport/http/api"
	"inhand/internal/transport/http/middleware"
	"inhand/internal/transport/http/shared"
)

type RetentionRunner interface {
	RunRetention(ctx context.Context) (any, error)
}

type Handler struct {
	Jobs  RetentionRunner
	Perms middleware.PermissionStore
	Audit audit.Recorder
}

func NewHandler(runner RetentionRunner, perms middleware.PermissionStore, recorder audit.Recorder) *Handler {
	if recorder == nil {
		recorder = audit.Discard{}
	}
	return &Handler{Jobs: runner, Perms: perms, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAdminJobs, h.Perms)).Post("/retention/run", h.handleRunRetention)
	})
}

func (h *Handler) handleRunRetention(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	details, err := h.Jobs.RunRetention(r.Context())
	if errors.Is(err, jobs.ErrRetentionDisabled) {
		api.Fail(w, http.StatusConflict, "retention_disabled", "history retention is not configured", requestID)
		return
	}
	if err != nil {
		slog.Error("retention run failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "retention_failed", "failed to run retention", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), audit.Event{
		ActorID:    user.UserID,
		Action:     audit.ActionRetentionRun,
		EntityType: audit.EntityJob,
		EntityID:   jobs.JobRetention,
		RequestID:  requestID,
		IP:         shared.ClientIP(r),
		Details:    details,
	}); err != nil {
		slog.Warn("audit retention run failed", "err", err, "requestId", requestID)
	}
	api.Success(w, details, requestID)
}
