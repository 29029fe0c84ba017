package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"sectionpulse/api/config"
	"sectionpulse/api/handlers"
	"sectionpulse/api/metrics"
	"sectionpulse/api/middleware"
	"sectionpulse/api/store"
	"sectionpulse/api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.InitMetrics()

	sessions, closeStore, err := store.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.StoreBackend, err)
	}
	defer closeStore()
	log.Printf("Using %s session store", cfg.StoreBackend)

	var issuer *utils.TokenIssuer
	if cfg.Auth.JWTSecret != "" {
		issuer, err = utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			log.Fatalf("Failed to initialize token issuer: %v", err)
		}
	}

	routerCfg := handlers.RouterConfig{
		Analytics:     handlers.NewAnalyticsHandlers(sessions, cfg.DefaultDays, cfg.RetentionDays, cfg.RequestTimeout),
		Auth:          handlers.NewAuthHandlers(cfg.Auth.APIKeyHash, issuer),
		Environment:   cfg.AppEnv,
		AllowedOrigin: cfg.AllowedOrigin,
	}
	if cfg.Auth.ReadAuth {
		routerCfg.ReadGuard = middleware.ReadAuth(cfg.Auth.APIKeyHash, issuer)
	}
	if cfg.RateLimit.RPS > 0 {
		routerCfg.IngestLimiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.SetupRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Analytics API starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Analytics API failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
