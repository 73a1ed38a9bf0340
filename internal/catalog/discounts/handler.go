package discounts

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

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
		h.logger.Error("list discounts failed", "error", err)
		http.Error(w, "Failed to load discounts", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/discounts_list.html", map[string]any{
		"Discounts":  list,
		"Filters":    filters,
		"Total":      total,
		"Pagination": shared.NewPagination(page, 20, total),
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/discount_form.html", map[string]any{
		"Errors":   map[string]string{},
		"Discount": nil,
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	d := h.parseForm(r)
	if _, err := h.manager.Create(r.Context(), d); err != nil {
		h.render(w, r, "pages/discount_form.html", map[string]any{
			"Errors":   map[string]string{"general": err.Error()},
			"Discount": d,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/discounts", "success", "Discount created successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid discount ID", http.StatusBadRequest)
		return
	}
	d, err := h.manager.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Discount not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/discount_form.html", map[string]any{
		"Errors":   map[string]string{},
		"Discount": d,
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid discount ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	d := h.parseForm(r)
	if err := h.manager.Update(r.Context(), id, d); err != nil {
		d.ID = id
		h.render(w, r, "pages/discount_form.html", map[string]any{
			"Errors":   map[string]string{"general": err.Error()},
			"Discount": d,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/discounts", "success", "Discount updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid discount ID", http.StatusBadRequest)
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/discounts", "error", err.Error())
		return
	}
	h.redirectWithFlash(w, r, "/discounts", "success", "Discount deleted successfully")
}

func (h *Handler) parseForm(r *http.Request) Discount {
	percent, err := decimal.NewFromString(r.PostFormValue("percent"))
	if err != nil {
		percent = decimal.Zero
	}
	amount, err := decimal.NewFromString(r.PostFormValue("amount"))
	if err != nil {
		amount = decimal.Zero
	}
	d := Discount{
		Code:           r.PostFormValue("code"),
		DiscountType:   r.PostFormValue("discount_type"),
		Percent:        percent,
		Amount:         amount,
		IsBaseDiscount: r.PostFormValue("is_base_discount") == "on",
		IsActive:       r.PostFormValue("is_active") == "on",
	}
	if v := r.PostFormValue("valid_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			d.ValidFrom = &t
		}
	}
	if v := r.PostFormValue("valid_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			d.ValidTo = &t
		}
	}
	return d
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Discounts",
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
