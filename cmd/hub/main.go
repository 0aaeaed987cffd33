package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/launchpanel/hub/internal/config"
	"github.com/launchpanel/hub/internal/db"
	"github.com/launchpanel/hub/internal/metrics"
	"github.com/launchpanel/hub/internal/ratelimit"
	"github.com/launchpanel/hub/internal/router"
	"github.com/launchpanel/hub/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database, cfg.DBDriver); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	log.Println("database migrations applied")

	authSvc := service.NewAuthService(database, cfg.TokenExpiryHours)
	if err := authSvc.EnsureBootstrapAdmin(context.Background(),
		cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	registry := ratelimit.NewRegistry()
	registry.OnDenied = func(scope string) {
		metrics.RateLimitDenials.WithLabelValues(scope).Inc()
	}

	handler := router.New(cfg, database, registry)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // a full one-click pass can take minutes
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("launchpanel hub listening on :%s (driver=%s)", cfg.Port, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-done
	log.Println("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("stopped")
}
