package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/example/fitness-manager/internal/application"
	"github.com/example/fitness-manager/internal/gym"
)

type resourceService[T any] interface {
	List(ctx context.Context, principal application.Principal) ([]T, error)
	Get(ctx context.Context, principal application.Principal, id int64) (T, error)
	Create(ctx context.Context, principal application.Principal, row T) (T, error)
	Update(ctx context.Context, principal application.Principal, id int64, row T) (T, error)
	Delete(ctx context.Context, principal application.Principal, id int64) error
}

// ResourceHandler serves list, get, create, update and delete for one entity
// type. key is the JSON name of the entity's id, noun its display name.
type ResourceHandler[T any, PT gym.Record[T]] struct {
	service   resourceService[T]
	key       string
	noun      string
	responder responder
	logger    *slog.Logger
}

func NewResourceHandler[T any, PT gym.Record[T]](service resourceService[T], key, noun string, logger *slog.Logger) *ResourceHandler[T, PT] {
	base := defaultLogger(logger)
	return &ResourceHandler[T, PT]{
		service:   service,
		key:       key,
		noun:      noun,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *ResourceHandler[T, PT]) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	attrs = append([]any{"resource", h.noun}, attrs...)
	return handlerLogger(ctx, h.logger, "ResourceHandler", operation, attrs...)
}

func (h *ResourceHandler[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	rows, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, rows)
}

func (h *ResourceHandler[T, PT]) Get(w http.ResponseWriter, r *http.Request, id int64) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	row, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Get", h.key, id).ErrorContext(r.Context(), "get failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, row)
}

func (h *ResourceHandler[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var row T
	if err := decodeJSON(w, r, &row); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create")

	created, err := h.service.Create(r.Context(), principal, row)
	if err != nil {
		logger.ErrorContext(r.Context(), "create failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	id := PT(&created).Key()
	logger.InfoContext(r.Context(), "created", h.key, id)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("%s created", h.noun),
		h.key:     id,
		"data":    created,
	})
}

func (h *ResourceHandler[T, PT]) Update(w http.ResponseWriter, r *http.Request, id int64) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var row T
	if err := decodeJSON(w, r, &row); err != nil {
		h.log(r.Context(), "Update", h.key, id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", h.key, id)

	updated, err := h.service.Update(r.Context(), principal, id, row)
	if err != nil {
		logger.ErrorContext(r.Context(), "update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("%s updated", h.noun),
		"data":    updated,
	})
}

func (h *ResourceHandler[T, PT]) Delete(w http.ResponseWriter, r *http.Request, id int64) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", h.key, id)

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("%s deleted", h.noun),
	})
}
