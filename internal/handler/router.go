package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smilecare-ai/reservation-assistant/internal/clinic"
	"github.com/smilecare-ai/reservation-assistant/internal/middleware"
	natsclient "github.com/smilecare-ai/reservation-assistant/internal/nats"
	"github.com/smilecare-ai/reservation-assistant/internal/service"
	"github.com/smilecare-ai/reservation-assistant/pkg/logger"
)

// RouterConfig carries the dependencies of the HTTP API.
type RouterConfig struct {
	Service    *service.ConversationService
	Roster     *clinic.Roster
	NATS       *natsclient.Client
	Logger     *logger.Logger
	JWTSecret  string
	RateLimit  int
	RateWindow time.Duration
}

// NewRouter builds the API router.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Global()
	}

	healthHandler := NewHealthHandler(cfg.Service, cfg.NATS)
	sessionHandler := NewSessionHandler(cfg.Service, log)
	messageHandler := NewMessageHandler(cfg.Service, log)
	streamHandler := NewStreamHandler(cfg.Service, log)
	dentistHandler := NewDentistHandler(cfg.Roster)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(nil))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		if cfg.RateLimit > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))
		}

		r.Get("/dentists", dentistHandler.List)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)

				r.Post("/messages", messageHandler.Send)
				r.Post("/stream", streamHandler.StreamWithMessage)

				r.Group(func(r chi.Router) {
					if cfg.JWTSecret != "" {
						r.Use(middleware.RequireScope(middleware.ScopeAudit))
					}
					r.Get("/events", sessionHandler.Events)
				})
			})
		})
	})

	return r
}
