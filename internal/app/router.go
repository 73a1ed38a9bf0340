package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fleetdesk/fleetdesk/internal/agents"
	"github.com/fleetdesk/fleetdesk/internal/auth"
	"github.com/fleetdesk/fleetdesk/internal/billing"
	"github.com/fleetdesk/fleetdesk/internal/catalog/discounts"
	"github.com/fleetdesk/fleetdesk/internal/catalog/services"
	"github.com/fleetdesk/fleetdesk/internal/chat"
	"github.com/fleetdesk/fleetdesk/internal/dashboard"
	"github.com/fleetdesk/fleetdesk/internal/fleet/drivers"
	fleetjobs "github.com/fleetdesk/fleetdesk/internal/fleet/jobs"
	"github.com/fleetdesk/fleetdesk/internal/fleet/vehicles"
	"github.com/fleetdesk/fleetdesk/internal/observability"
	"github.com/fleetdesk/fleetdesk/internal/shared"
	"github.com/fleetdesk/fleetdesk/internal/view"
	"github.com/fleetdesk/fleetdesk/jobs"
	"github.com/fleetdesk/fleetdesk/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	ServicesHandler  *services.Handler
	DiscountsHandler *discounts.Handler
	AgentsHandler    *agents.Handler
	DriversHandler   *drivers.Handler
	VehiclesHandler  *vehicles.Handler
	JobsHandler      *fleetjobs.Handler
	BillingHandler   *billing.Handler
	ChatHandler      *chat.Handler
	JobHealthHandler *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with FleetDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Landing page for unauthenticated users
	r.Get("/welcome", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:     "FleetDesk",
			CSRFToken: csrfToken,
			Flash:     flash,
		}
		if err := params.Templates.Render(w, "pages/landing.html", data); err != nil {
			params.Logger.Error("render landing", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			http.Redirect(w, r, "/welcome", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		r.Route("/services", params.ServicesHandler.MountRoutes)
		r.Route("/discounts", params.DiscountsHandler.MountRoutes)
		r.Route("/agents", params.AgentsHandler.MountRoutes)
		r.Route("/drivers", params.DriversHandler.MountRoutes)
		r.Route("/vehicles", params.VehiclesHandler.MountRoutes)
		r.Route("/jobs", params.JobsHandler.MountRoutes)
		r.Route("/billing", params.BillingHandler.MountRoutes)

		r.Route("/api", func(r chi.Router) {
			r.Post("/quick_add/service", params.ServicesHandler.QuickAdd)
			r.Post("/quick_add/agent", params.AgentsHandler.QuickAdd)
			r.Post("/quick_add/driver", params.DriversHandler.QuickAdd)
			r.Post("/quick_add/vehicle", params.VehiclesHandler.QuickAdd)
			r.Post("/jobs/{jobID}/calculate", params.BillingHandler.Calculate)
			r.Get("/dashboard/summary", params.DashboardHandler.Summary)
			params.ChatHandler.MountRoutes(r)
		})
	})

	if params.JobHealthHandler != nil {
		r.Route("/queue", params.JobHealthHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		// Static files are served without session or CSRF handling.
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
