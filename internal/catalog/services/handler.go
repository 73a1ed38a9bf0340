package services

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

// MountRoutes registers the service catalog pages.
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
	filters := shared.ListFilters{
		Page:   page,
		Limit:  20,
		Search: r.URL.Query().Get("search"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filters.Status = &status
	}

	list, total, err := h.manager.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list services failed", "error", err)
		http.Error(w, "Failed to load services", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/services_list.html", map[string]any{
		"Services":   list,
		"Filters":    filters,
		"Total":      total,
		"Pagination": shared.NewPagination(page, 20, total),
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/service_form.html", map[string]any{
		"Errors":  map[string]string{},
		"Service": nil,
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	svc, formErr := h.parseForm(r)
	if formErr == nil {
		_, formErr = h.manager.Create(r.Context(), svc)
	}
	if formErr != nil {
		h.render(w, r, "pages/service_form.html", map[string]any{
			"Errors":  map[string]string{"general": formErr.Error()},
			"Service": svc,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/services", "success", "Service created successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}
	svc, err := h.manager.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/service_form.html", map[string]any{
		"Errors":  map[string]string{},
		"Service": svc,
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	svc, formErr := h.parseForm(r)
	if formErr == nil {
		formErr = h.manager.Update(r.Context(), id, svc)
	}
	if formErr != nil {
		svc.ID = id
		h.render(w, r, "pages/service_form.html", map[string]any{
			"Errors":  map[string]string{"general": formErr.Error()},
			"Service": svc,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/services", "success", "Service updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/services", "error", err.Error())
		return
	}
	h.redirectWithFlash(w, r, "/services", "success", "Service deleted successfully")
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
	svc, err := h.manager.QuickAdd(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":         svc.ID,
		"name":       svc.Name,
		"base_price": svc.BasePrice.StringFixed(2),
	})
}

func (h *Handler) parseForm(r *http.Request) (Service, error) {
	price, err := decimal.NewFromString(r.PostFormValue("base_price"))
	if err != nil {
		price = decimal.Zero
	}
	svc := Service{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		BasePrice:   price,
		Status:      r.PostFormValue("status"),
	}
	return svc, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Services",
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
