package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/internal/catalog"
	"github.com/glowdesk/salon-platform/internal/customers"
	"github.com/glowdesk/salon-platform/internal/gallery"
	httpmiddleware "github.com/glowdesk/salon-platform/internal/http/middleware"
	"github.com/glowdesk/salon-platform/internal/identity"
	"github.com/glowdesk/salon-platform/internal/marketing"
	"github.com/glowdesk/salon-platform/internal/reports"
	"github.com/glowdesk/salon-platform/internal/stylists"
	"github.com/glowdesk/salon-platform/internal/suggest"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CatalogHandler     *catalog.Handler
	StylistsHandler    *stylists.Handler
	CustomersHandler   *customers.Handler
	BookingHandler     *booking.Handler
	SuggestHandler     *suggest.Handler
	GalleryHandler     *gallery.Handler
	AuthHandler        *identity.Handler
	MarketingHandler   *marketing.Handler
	ReportsHandler     *reports.Handler
	TokenIssuer        *identity.TokenIssuer
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	AuthRateLimit      float64
	AuthRateBurst      int
}

// New builds the HTTP route tree.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	authLimit := cfg.AuthRateLimit
	if authLimit <= 0 {
		authLimit = httpmiddleware.DefaultAuthRate
	}
	authBurst := cfg.AuthRateBurst
	if authBurst <= 0 {
		authBurst = httpmiddleware.DefaultAuthBurst
	}

	// Public surface.
	if cfg.CatalogHandler != nil {
		r.Get("/services", cfg.CatalogHandler.ListServices)
		r.Get("/services/{serviceID}", cfg.CatalogHandler.GetService)
	}
	if cfg.StylistsHandler != nil {
		r.Get("/stylists", cfg.StylistsHandler.ListStylists)
		r.Get("/stylists/{stylistID}", cfg.StylistsHandler.GetStylist)
	}
	if cfg.GalleryHandler != nil {
		r.Get("/gallery", cfg.GalleryHandler.ListImages)
	}

	if cfg.AuthHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(httpmiddleware.RateLimit(authLimit, authBurst))
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/admin/login", cfg.AuthHandler.AdminLogin)
		})
	}

	// Customer self-service.
	if cfg.TokenIssuer != nil {
		r.Group(func(r chi.Router) {
			r.Use(identity.RequireAuth(cfg.TokenIssuer))

			if cfg.CustomersHandler != nil {
				r.Get("/me", cfg.CustomersHandler.GetProfile)
				r.Put("/me", cfg.CustomersHandler.UpdateProfile)
			}
			if cfg.BookingHandler != nil {
				r.Get("/appointments", cfg.BookingHandler.ListMyAppointments)
				r.Post("/appointments", cfg.BookingHandler.RequestAppointment)
				r.Post("/appointments/{apptID}/cancel", cfg.BookingHandler.CancelMyAppointment)
			}
			if cfg.SuggestHandler != nil {
				r.With(httpmiddleware.RateLimit(authLimit, authBurst)).
					Post("/appointments/suggest", cfg.SuggestHandler.SuggestSlots)
			}
		})

		// Admin surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(identity.RequireAdmin(cfg.TokenIssuer))

			if cfg.CatalogHandler != nil {
				r.Post("/services", cfg.CatalogHandler.CreateService)
				r.Put("/services/{serviceID}", cfg.CatalogHandler.UpdateService)
				r.Delete("/services/{serviceID}", cfg.CatalogHandler.DeleteService)
			}
			if cfg.StylistsHandler != nil {
				r.Post("/stylists", cfg.StylistsHandler.CreateStylist)
				r.Put("/stylists/{stylistID}", cfg.StylistsHandler.UpdateStylist)
				r.Delete("/stylists/{stylistID}", cfg.StylistsHandler.DeleteStylist)
			}
			if cfg.BookingHandler != nil {
				r.Get("/appointments", cfg.BookingHandler.ListAppointments)
				r.Post("/appointments", cfg.BookingHandler.CreateAppointment)
				r.Post("/appointments/{apptID}/confirm", cfg.BookingHandler.ConfirmAppointment)
				r.Post("/appointments/{apptID}/cancel", cfg.BookingHandler.CancelAppointment)
				r.Get("/stylists/{stylistID}/appointments", cfg.BookingHandler.ListStylistAppointments)
			}
			if cfg.CustomersHandler != nil {
				r.Get("/customers", cfg.CustomersHandler.ListCustomers)
				r.Get("/customers/{customerID}", cfg.CustomersHandler.GetCustomer)
			}
			if cfg.AuthHandler != nil {
				r.Post("/users/grant-admin", cfg.AuthHandler.GrantAdmin)
			}
			if cfg.GalleryHandler != nil {
				r.Post("/gallery", cfg.GalleryHandler.CreateImage)
				r.Delete("/gallery/{imageID}", cfg.GalleryHandler.DeleteImage)
			}
			if cfg.MarketingHandler != nil {
				r.Post("/marketing/generate", cfg.MarketingHandler.GenerateContent)
			}
			if cfg.ReportsHandler != nil {
				r.Get("/reports/dashboard", cfg.ReportsHandler.GetDashboard)
			}
		})
	}

	return r
}
