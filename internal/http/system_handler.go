package http

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves liveness, readiness and the static client bundle.
type SystemHandler struct {
	store     Pinger
	staticDir string
	responder responder
	logger    *slog.Logger
}

func NewSystemHandler(store Pinger, staticDir string, logger *slog.Logger) *SystemHandler {
	base := defaultLogger(logger)
	return &SystemHandler{store: store, staticDir: staticDir, responder: newResponder(base), logger: base}
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		handlerLogger(r.Context(), h.logger, "SystemHandler", "Ready").ErrorContext(r.Context(), "store ping failed", "error", err)
		h.responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ready"})
}

// Static serves files from the bundle directory and falls back to index.html
// so client side routes resolve.
func (h *SystemHandler) Static(w http.ResponseWriter, r *http.Request) {
	if h.staticDir == "" {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, nil)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	if clean != "/" {
		full := filepath.Join(h.staticDir, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
		info, err := os.Stat(full)
		if err == nil && !info.IsDir() {
			http.ServeFile(w, r, full)
			return
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			handlerLogger(r.Context(), h.logger, "SystemHandler", "Static").WarnContext(r.Context(), "failed to stat static file", "error", err)
		}
	}
	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}
