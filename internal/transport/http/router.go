package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"bloodconnect/internal/handler"
	"bloodconnect/internal/httputil"
	apikeymw "bloodconnect/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	DispatchHandler *handler.DispatchHandler
	AdminHandler    *handler.AdminHandler
	DeviceHandler   *handler.DeviceHandler
	APIKey          string
	Logger          zerolog.Logger
	RequestTimeout  time.Duration
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(cfg.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "Route not found")
	})

	// Liveness
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("BloodConnect backend is running"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Everything else requires the shared API key
	r.Group(func(r chi.Router) {
		r.Use(apikeymw.APIKeyMiddleware(cfg.APIKey))

		r.Post("/sendNotification", cfg.DispatchHandler.SendNotification)
		r.Post("/notifyAdmins", cfg.DispatchHandler.NotifyAdmins)
		r.Post("/donorAvailable", cfg.DispatchHandler.DonorAvailable)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/requests", cfg.AdminHandler.ListRequests)
			r.Get("/donorHistory", cfg.AdminHandler.ListDonorHistory)
			r.Get("/notifications", cfg.AdminHandler.ListNotifications)
			r.Post("/donorHistory/export", cfg.AdminHandler.ExportDonorHistory)
		})

		r.Post("/devices/token", cfg.DeviceHandler.RegisterToken)
		r.Delete("/devices/token", cfg.DeviceHandler.RemoveToken)
	})

	return r
}

// requestIDLogger tags the request logger with chi's request id.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			log := zerolog.Ctx(r.Context())
			log.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}
