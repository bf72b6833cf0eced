package api

import (
	"net/http"

	"github.com/dom/crusadetome/internal/api/handlers"
	"github.com/dom/crusadetome/internal/api/middleware"
	"github.com/dom/crusadetome/internal/config"
	"github.com/dom/crusadetome/internal/logger"
	"github.com/dom/crusadetome/internal/service"
	"github.com/dom/crusadetome/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(services.Session, services.Unit)
	unitHandler := handlers.NewUnitHandler(services.Session, services.Unit, cfg)
	enumsHandler := handlers.NewEnumsHandler()
	wsHandler := handlers.NewWebSocketHandler(hub, services.Session)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/enums", enumsHandler.Get)
		r.Post("/sessions", sessionHandler.Create)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Session))

			r.Delete("/sessions/current", sessionHandler.End)

			r.Route("/unit", func(r chi.Router) {
				r.Get("/", unitHandler.Get)
				r.Post("/new", unitHandler.New)
				r.Post("/load", unitHandler.Load)
				r.Post("/submit", unitHandler.Submit)
				r.Get("/save", unitHandler.Save)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
