package agents

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

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
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, manager *Manager, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:    logger,
		manager:   manager,
		templates: templates,
		csrf:      csrf,
		sessions:  sessions,
		validator: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	filters := shared.ListFilters{Page: page, Limit: 20, Search: r.URL.Query().Get("search")}
	if status := r.URL.Query().Get("status"); status != "" {
		filters.Status = &status
	}

	list, total, err := h.manager.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list agents failed", "error", err)
		http.Error(w, "Failed to load agents", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/agents_list.html", map[string]any{
		"Agents":     list,
		"Filters":    filters,
		"Total":      total,
		"Pagination": shared.NewPagination(page, 20, total),
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/agent_form.html", map[string]any{
		"Errors": map[string]string{},
		"Agent":  nil,
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	a := h.parseForm(r)
	if _, err := h.manager.Create(r.Context(), a); err != nil {
		h.render(w, r, "pages/agent_form.html", map[string]any{
			"Errors": map[string]string{"general": err.Error()},
			"Agent":  a,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/agents", "success", "Agent created successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid agent ID", http.StatusBadRequest)
		return
	}
	a, err := h.manager.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Agent not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/agent_form.html", map[string]any{
		"Errors": map[string]string{},
		"Agent":  a,
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid agent ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	a := h.parseForm(r)
	if err := h.manager.Update(r.Context(), id, a); err != nil {
		a.ID = id
		h.render(w, r, "pages/agent_form.html", map[string]any{
			"Errors": map[string]string{"general": err.Error()},
			"Agent":  a,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/agents", "success", "Agent updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid agent ID", http.StatusBadRequest)
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/agents", "error", err.Error())
		return
	}
	h.redirectWithFlash(w, r, "/agents", "success", "Agent deleted successfully")
}

// QuickAdd handles the JSON quick-add endpoint used by the job form.
func (h *Handler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	var req QuickAddRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	a, err := h.manager.QuickAdd(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":                     a.ID,
		"name":                   a.Name,
		"agent_discount_percent": a.DiscountPercent.StringFixed(2),
	})
}

func (h *Handler) parseForm(r *http.Request) Agent {
	percent, err := decimal.NewFromString(r.PostFormValue("agent_discount_percent"))
	if err != nil {
		percent = decimal.Zero
	}
	return Agent{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Mobile:          r.PostFormValue("mobile"),
		Type:            r.PostFormValue("type"),
		Status:          r.PostFormValue("status"),
		DiscountPercent: percent,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Agents",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", "error", err, "template", template)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
