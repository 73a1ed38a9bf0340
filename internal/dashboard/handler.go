package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
	"github.com/fleetdesk/fleetdesk/internal/view"
)

type Handler struct {
	logger    *slog.Logger
	manager   *Manager
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

func NewHandler(logger *slog.Logger, manager *Manager, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, manager: manager, templates: templates, csrf: csrf, sessions: sessions}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Show)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	counts, err := h.manager.Counts(r.Context())
	if err != nil {
		h.logger.Error("load dashboard counts failed", "error", err)
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	data := view.TemplateData{
		Title:       "Dashboard",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        map[string]any{"Counts": counts},
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.logger.Error("render template", "error", err, "template", "pages/dashboard.html")
	}
}

// Summary serves the counts as JSON for the dashboard auto-refresh.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.manager.Counts(r.Context())
	if err != nil {
		h.logger.Error("load dashboard counts failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}
