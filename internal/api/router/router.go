package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ashwinrao/scam-honeypot/internal/honeypot"
	httpmiddleware "github.com/ashwinrao/scam-honeypot/internal/http/middleware"
	"github.com/ashwinrao/scam-honeypot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	HoneypotHandler *honeypot.Handler
	APISecretKey    string
	AdminJWTSecret  string
	MetricsHandler  http.Handler

	RateLimitPerSecond float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (service card, health, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/", cfg.HoneypotHandler.ServiceInfo)
		public.Get("/health", cfg.HoneypotHandler.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Honeypot endpoints (API-key auth, rate limited)
	r.Group(func(hp chi.Router) {
		hp.Use(httpmiddleware.APIKey(cfg.APISecretKey))
		if cfg.RateLimitPerSecond > 0 {
			hp.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}
		hp.Post("/honeypot", cfg.HoneypotHandler.Honeypot)
		hp.Get("/session/{sessionID}", cfg.HoneypotHandler.GetSession)
	})

	// Operations endpoints (admin JWT)
	if cfg.AdminJWTSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Get("/sessions", cfg.HoneypotHandler.ListSessions)
		})
	}

	return r
}
