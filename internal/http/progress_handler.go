package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/fitness-manager/internal/application"
	"github.com/example/fitness-manager/internal/gym"
)

type progressHistory interface {
	ListForUser(ctx context.Context, principal application.Principal, userID int64) ([]gym.FitnessProgress, error)
}

// ProgressHistoryHandler serves GET /api/users/{id}/fitness-progress.
type ProgressHistoryHandler struct {
	service   progressHistory
	responder responder
	logger    *slog.Logger
}

func NewProgressHistoryHandler(service progressHistory, logger *slog.Logger) *ProgressHistoryHandler {
	base := defaultLogger(logger)
	return &ProgressHistoryHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProgressHistoryHandler) ListForUser(w http.ResponseWriter, r *http.Request, userID int64) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	entries, err := h.service.ListForUser(r.Context(), principal, userID)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "ProgressHistoryHandler", "ListForUser", "user_id", userID).
			ErrorContext(r.Context(), "failed to list progress", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, entries)
}
