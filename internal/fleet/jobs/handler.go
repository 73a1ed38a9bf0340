package jobs

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

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
	r.Get("/download", h.Download)
	r.Get("/smart_add", h.SmartAddForm)
	r.Post("/smart_add", h.SmartAddCreate)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/delete", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	filters := ListFilters{
		ListFilters:   shared.ListFilters{Page: page, Limit: 20, Search: r.URL.Query().Get("search")},
		OrderStatus:   r.URL.Query().Get("order_status"),
		PaymentStatus: r.URL.Query().Get("payment_status"),
	}

	list, total, err := h.manager.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list jobs failed", "error", err)
		http.Error(w, "Failed to load jobs", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/jobs_list.html", map[string]any{
		"Jobs":       list,
		"Filters":    filters,
		"Total":      total,
		"Pagination": shared.NewPagination(page, 20, total),
	}, http.StatusOK)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}
	job, err := h.manager.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/job_detail.html", map[string]any{
		"Job": job,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/job_form.html", map[string]any{
		"Errors": map[string]string{},
		"Job":    nil,
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	job := h.parseForm(r)
	created, err := h.manager.Create(r.Context(), job)
	if err != nil {
		h.render(w, r, "pages/job_form.html", map[string]any{
			"Errors": map[string]string{"general": err.Error()},
			"Job":    job,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/jobs/"+strconv.FormatInt(created.ID, 10), "success", "Job created successfully")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}
	job, err := h.manager.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/job_form.html", map[string]any{
		"Errors": map[string]string{},
		"Job":    job,
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	job := h.parseForm(r)
	if err := h.manager.Update(r.Context(), id, job); err != nil {
		job.ID = id
		h.render(w, r, "pages/job_form.html", map[string]any{
			"Errors": map[string]string{"general": err.Error()},
			"Job":    job,
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/jobs/"+strconv.FormatInt(id, 10), "success", "Job updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}
	if err := h.manager.Delete(r.Context(), id); err != nil {
		h.redirectWithFlash(w, r, "/jobs", "error", err.Error())
		return
	}
	h.redirectWithFlash(w, r, "/jobs", "success", "Job deleted successfully")
}

// Download streams every job as a CSV attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	list, err := h.manager.All(r.Context())
	if err != nil {
		h.logger.Error("export jobs failed", "error", err)
		http.Error(w, "Failed to export jobs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="jobs_`+time.Now().Format("20060102")+`.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"ID", "Customer", "Customer Email", "Customer Mobile", "Passenger",
		"Service", "Pickup Date", "Pickup Time", "Pickup", "Dropoff",
		"Vehicle Type", "Vehicle Number", "Payment Status", "Order Status",
		"Final Price", "Invoice Number",
	})
	for _, j := range list {
		_ = cw.Write([]string{
			strconv.FormatInt(j.ID, 10), j.CustomerName, j.CustomerEmail, j.CustomerMobile, j.PassengerName,
			j.TypeOfService, j.PickupDate, j.PickupTime, j.PickupLocation, j.DropoffLocation,
			j.VehicleType, j.VehicleNumber, j.PaymentStatus, j.OrderStatus,
			j.FinalPrice.StringFixed(2), j.InvoiceNumber,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("write jobs csv", "error", err)
	}
}

// SmartAddForm renders the free-text booking message form, previewing
// parsed fields when a message is supplied via query.
func (h *Handler) SmartAddForm(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	var parsed map[string]string
	if message != "" {
		parsed = ParseMessage(message)
	}
	h.render(w, r, "pages/job_smart_add.html", map[string]any{
		"Message": message,
		"Parsed":  parsed,
		"Errors":  map[string]string{},
	}, http.StatusOK)
}

// SmartAddCreate parses the posted message and creates the job.
func (h *Handler) SmartAddCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	message := r.PostFormValue("message")
	created, parsed, err := h.manager.CreateFromMessage(r.Context(), message)
	if err != nil {
		h.render(w, r, "pages/job_smart_add.html", map[string]any{
			"Message": message,
			"Parsed":  parsed,
			"Errors":  map[string]string{"general": err.Error()},
		}, http.StatusBadRequest)
		return
	}
	h.redirectWithFlash(w, r, "/jobs/"+strconv.FormatInt(created.ID, 10), "success", "Job created from message")
}

func (h *Handler) parseForm(r *http.Request) Job {
	job := Job{
		CustomerName:      r.PostFormValue("customer_name"),
		CustomerEmail:     r.PostFormValue("customer_email"),
		CustomerMobile:    r.PostFormValue("customer_mobile"),
		CustomerReference: r.PostFormValue("customer_reference"),
		PassengerName:     r.PostFormValue("passenger_name"),
		PassengerEmail:    r.PostFormValue("passenger_email"),
		PassengerMobile:   r.PostFormValue("passenger_mobile"),
		TypeOfService:     r.PostFormValue("type_of_service"),
		PickupDate:        r.PostFormValue("pickup_date"),
		PickupTime:        r.PostFormValue("pickup_time"),
		PickupLocation:    r.PostFormValue("pickup_location"),
		DropoffLocation:   r.PostFormValue("dropoff_location"),
		VehicleType:       r.PostFormValue("vehicle_type"),
		VehicleNumber:     r.PostFormValue("vehicle_number"),
		DriverContact:     r.PostFormValue("driver_contact"),
		PaymentMode:       r.PostFormValue("payment_mode"),
		PaymentStatus:     r.PostFormValue("payment_status"),
		OrderStatus:       r.PostFormValue("order_status"),
		Message:           r.PostFormValue("message"),
		Remarks:           r.PostFormValue("remarks"),
		AdditionalStops:   r.PostFormValue("additional_stops"),
		Reference:         r.PostFormValue("reference"),
		Status:            r.PostFormValue("status"),
	}
	if v := r.PostFormValue("service_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			job.ServiceID = &id
		}
	}
	if v := r.PostFormValue("driver_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			job.DriverID = &id
		}
	}
	if v := r.PostFormValue("agent_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			job.AgentID = &id
		}
	}
	return job
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Jobs",
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
