package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"alarm-status-backend/config"
	"alarm-status-backend/internal/api"
	"alarm-status-backend/internal/db"
	"alarm-status-backend/internal/notification"
	"alarm-status-backend/internal/poller"
	"alarm-status-backend/internal/portal"
	"alarm-status-backend/internal/session"
	"alarm-status-backend/internal/snapshot"
	"alarm-status-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "alarmd ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// One portal client per configured account, each with its own cookie
	// jar and session state.
	sessions := session.NewManager()
	for _, acc := range cfg.Portal.Accounts {
		client, err := portal.NewClient(portal.Config{
			BaseURL:            cfg.Portal.BaseURL,
			Username:           acc.Username,
			Password:           acc.Password,
			UserAgent:          cfg.Portal.UserAgent,
			Timeout:            cfg.Portal.Timeout,
			TemperatureTimeout: cfg.Portal.TemperatureTimeout,
			AuthRetryDelay:     cfg.Portal.AuthRetryDelay,
		})
		if err != nil {
			logger.Fatalf("failed to create portal client for account %s: %v", acc.ID, err)
		}
		sessions.Put(acc.ID, client)
	}
	logger.Printf("%d portal account(s) configured", len(cfg.Portal.Accounts))

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	appStore := store.NewGormStore(gormDB)
	logger.Println("event archive initialized")

	var pool *notification.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions := &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
	} else {
		logger.Println("VAPID keys not configured, push notifications disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := snapshot.NewRegistry()
	pollerSvc := poller.NewService(cfg, sessions, snapshots, appStore, pool)
	go pollerSvc.Run(ctx)

	var webpushOptions *webpush.Options
	if pool != nil {
		webpushOptions = &webpush.Options{VAPIDPublicKey: cfg.Push.PublicKey}
	}
	handler := api.NewHandler(sessions, snapshots, appStore, webpushOptions, pollerSvc.TriggerStatusRefresh)
	router := api.NewRouter(&cfg.Server, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}

	// Release the server-side portal sessions, best effort.
	sessions.Dispose(shutdownCtx)

	logger.Println("Server gracefully stopped")
}
