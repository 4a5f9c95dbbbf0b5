package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ashwinrao/scam-honeypot/internal/api/router"
	appconfig "github.com/ashwinrao/scam-honeypot/internal/config"
	"github.com/ashwinrao/scam-honeypot/internal/honeypot"
	"github.com/ashwinrao/scam-honeypot/internal/observability/metrics"
	"github.com/ashwinrao/scam-honeypot/pkg/logging"
)

const version = "1.0.0"

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting scam-honeypot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
	)

	registry := prometheus.NewRegistry()
	m := metrics.NewHoneypotMetrics(registry)

	// Session store
	var store honeypot.SessionStore
	if cfg.SessionBackend == "redis" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		store = honeypot.NewRedisSessionStore(redis.NewClient(opts), cfg.SessionTTL, nil)
	} else {
		store = honeypot.NewMemorySessionStore(cfg.SessionTTL, logger)
	}
	m.RegisterActiveSessions(func() float64 {
		count, err := store.Count(context.Background())
		if err != nil {
			return 0
		}
		return float64(count)
	})

	// Model gateway over one Gemini client per credential
	clients, err := honeypot.NewGeminiClients(context.Background(), cfg.GeminiAPIKeys, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to initialize gemini clients", "error", err)
		os.Exit(1)
	}
	if len(clients) == 0 {
		logger.Warn("no gemini credentials configured, replies will use fallback pools only")
	}
	gateway := honeypot.NewModelGateway(clients, nil, cfg.GeminiTimeout, logger, m)

	// Conversation engine
	classifier := honeypot.NewScamClassifier(gateway, logger, m)
	responder := honeypot.NewResponder(gateway, honeypot.NewPersonaSelector(nil), logger, m)
	dispatcher := honeypot.NewCallbackDispatcher(cfg.CallbackURL, cfg.CallbackTimeout, logger, m)
	engine := honeypot.NewEngine(store, classifier, responder, dispatcher, logger, m)
	handler := honeypot.NewHandler(engine, gateway, logger, m, version)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		HoneypotHandler:    handler,
		APISecretKey:       cfg.APISecretKey,
		AdminJWTSecret:     cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
