package drivers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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

	list, total, err := h.manager.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list drivers failed", "error", err)
		http.Error(w, "Failed to load drivers", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/drivers_list.html", map[string]any{
		"Drivers":    list,
		"Filters":    filters,
		"Total":      total,
		"Pagination": shared.NewPagination(page, 20, total),
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/driver_form.html", map[string]any{
		"Errors": map[string]string{},
		"Driver": nil,
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	d := h.parseForm(r)
	if _, err := h.manager.Create(r.Context(), d); err != nil {
		h.render(w, r, "pages/driver_form.html", map[string]any{
			"Errors": map[string]string{"general": err.Error()},
			"Driver": d,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/drivers", "success", "Driver created successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid driver ID", http.StatusBadRequest)
		return
	}
	d, err := h.manager.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Driver not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/driver_form.html", map[string]any{
		"Errors": map[string]string{},
		"Driver": d,
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid driver ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	d := h.parseForm(r)
	if err := h.manager.Update(r.Context(), id, d); err != nil {
		d.ID = id
		h.render(w, r, "pages/driver_form.html", map[string]any{
			"Errors": map[string]string{"general": err.Error()},
			"Driver": d,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/drivers", "success", "Driver updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid driver ID", http.StatusBadRequest)
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/drivers", "error", err.Error())
		return
	}
	h.redirectWithFlash(w, r, "/drivers", "success", "Driver deleted successfully")
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
	d, err := h.manager.QuickAdd(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":    d.ID,
		"name":  d.Name,
		"phone": d.Phone,
	})
}

func (h *Handler) parseForm(r *http.Request) Driver {
	return Driver{
		Name:          r.PostFormValue("name"),
		Phone:         r.PostFormValue("phone"),
		Email:         r.PostFormValue("email"),
		LicenseNumber: r.PostFormValue("license_number"),
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
		Title:       "Drivers",
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
