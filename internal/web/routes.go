package web

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/site-attendance/internal/web/handlers"
	"github.com/kozaktomas/site-attendance/internal/web/middleware"
	"github.com/kozaktomas/site-attendance/internal/web/static"
)

func (s *Server) setupRoutes() {
	kioskHandler := handlers.NewKioskHandler(s.engine)
	attendanceHandler := handlers.NewAttendanceHandler(s.engine)
	workersHandler := handlers.NewWorkersHandler(s.engine)
	configHandler := handlers.NewConfigHandler(s.config, s.engine)

	// Health check (no auth required)
	s.router.Get("/api/health", handlers.HealthCheck)

	// Kiosk routes are open: the kiosk runs unattended at the site gate.
	s.router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		r.Post("/precheck", kioskHandler.Precheck)
		r.Post("/verify", kioskHandler.Verify)
		r.Post("/manual-upload", kioskHandler.ManualUpload)
	})

	// Admin API
	s.router.Route("/api", func(r chi.Router) {
		if s.config.Auth.Enabled() {
			r.Use(middleware.RequireAdmin(s.config.Auth.JWTSecret))
		} else {
			log.Println("ADMIN_JWT_SECRET is not set, admin API is unauthenticated")
		}

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(requestTimeout))

			r.Post("/manual-mark", attendanceHandler.ManualMark)
			r.Get("/stats", s.statsHandler.Get)
			r.Get("/logs", attendanceHandler.Logs)
			r.Get("/logs/export", attendanceHandler.Export)

			r.Get("/workers", workersHandler.List)
			r.Post("/workers", workersHandler.Create)
			r.Delete("/workers/{worker_id}", workersHandler.Delete)

			r.Get("/config", configHandler.Get)
		})

		// The live feed stays open for as long as the panel does.
		if s.hub != nil {
			r.Get("/live", s.hub.ServeHTTP)
		}
	})

	// Pages
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders())

		r.Get("/", s.servePage("kiosk.html"))
		r.Get("/admin", s.servePage("admin.html"))
	})
}

// servePage serves an embedded HTML page
func (s *Server) servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := static.Page(name)
		if err != nil {
			log.Printf("Missing embedded page %s: %v", name, err)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(page)
	}
}
