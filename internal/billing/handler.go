package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
	"github.com/fleetdesk/fleetdesk/internal/view"
)

type Handler struct {
	logger    *slog.Logger
	engine    *Engine
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
}

func NewHandler(logger *slog.Logger, engine *Engine, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, engine: engine, templates: templates, csrf: csrf, sessions: sessions}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Post("/jobs/{jobID}/invoice", h.CreateInvoice)
	r.Post("/{id}/pay", h.MarkPaid)
	r.Post("/{id}/unpay", h.MarkUnpaid)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	filters := shared.ListFilters{Page: page, Limit: 20, Search: r.URL.Query().Get("search")}
	if status := r.URL.Query().Get("payment_status"); status != "" {
		filters.Status = &status
	}

	list, total, err := h.engine.ListInvoices(r.Context(), filters)
	if err != nil {
		h.logger.Error("list invoices failed", "error", err)
		http.Error(w, "Failed to load invoices", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/billing_list.html", map[string]any{
		"Billings":      list,
		"Filters":       filters,
		"PaymentFilter": r.URL.Query().Get("payment_status"),
		"Total":         total,
		"Pagination":    shared.NewPagination(page, 20, total),
	}, http.StatusOK)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	data, err := h.engine.InvoiceData(r.Context(), id)
	if err != nil {
		http.Error(w, "Invoice not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/billing_detail.html", map[string]any{
		"Billing": data.Billing,
		"Job":     data.Job,
	}, http.StatusOK)
}

// CreateInvoice generates an invoice for a job from the billing form.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	opts := InvoiceOptions{
		Notes:           r.PostFormValue("notes"),
		TermsConditions: r.PostFormValue("terms_conditions"),
	}
	if v := r.PostFormValue("due_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			opts.DueDate = t
		}
	}
	if v := r.PostFormValue("tax_amount"); v != "" {
		if tax, err := decimal.NewFromString(v); err == nil {
			opts.TaxAmount = tax
		}
	}

	billing, err := h.engine.CreateInvoice(r.Context(), jobID, opts)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		h.logger.Error("create invoice failed", "error", err, "job_id", jobID)
		h.redirectWithFlash(w, r, "/jobs/"+strconv.FormatInt(jobID, 10), "error", "Failed to create invoice")
		return
	}
	h.redirectWithFlash(w, r, "/billing/"+strconv.FormatInt(billing.ID, 10), "success", "Invoice "+billing.InvoiceNumber+" created")
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	paymentDate := time.Now().UTC()
	if v := r.PostFormValue("payment_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			paymentDate = t
		}
	}
	method := r.PostFormValue("payment_method")
	if err := h.engine.MarkPaid(r.Context(), id, paymentDate, method); err != nil {
		h.redirectWithFlash(w, r, "/billing", "error", "Failed to update payment status")
		return
	}
	h.redirectWithFlash(w, r, "/billing/"+strconv.FormatInt(id, 10), "success", "Invoice marked as paid")
}

func (h *Handler) MarkUnpaid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	if err := h.engine.MarkUnpaid(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/billing", "error", "Failed to update payment status")
		return
	}
	h.redirectWithFlash(w, r, "/billing/"+strconv.FormatInt(id, 10), "success", "Invoice marked as unpaid")
}

type calculateRequest struct {
	AdditionalDiscountPercent string `json:"additional_discount_percent"`
	AdditionalCharges         string `json:"additional_charges"`
}

// Calculate runs a pricing calculation for a job and returns the breakdown
// as JSON. Used by the job form's price preview.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Job ID", "")
		return
	}

	var req calculateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	var opts CalcOptions
	if req.AdditionalDiscountPercent != "" {
		d, err := decimal.NewFromString(req.AdditionalDiscountPercent)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid additional_discount_percent")
			return
		}
		opts.AdditionalDiscountPercent = d
	}
	if req.AdditionalCharges != "" {
		c, err := decimal.NewFromString(req.AdditionalCharges)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid additional_charges")
			return
		}
		opts.AdditionalCharges = c
	}

	breakdown, err := h.engine.CalculateJobPrice(r.Context(), jobID, opts)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "job not found")
	case errors.Is(err, ErrInvalidPercent), errors.Is(err, ErrDiscountExceedsBase), errors.Is(err, ErrInvalidCharges):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case err != nil:
		h.logger.Error("calculate job price failed", "error", err, "job_id", jobID)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	default:
		httpx.JSON(w, http.StatusOK, breakdown)
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
		Title:       "Billing",
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
