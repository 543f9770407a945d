package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/outerrim/holonet/internal/config"
	"github.com/outerrim/holonet/internal/handlers"
	"github.com/outerrim/holonet/internal/logger"
	"github.com/outerrim/holonet/internal/middleware"
	"github.com/outerrim/holonet/internal/services/events"
	"github.com/outerrim/holonet/internal/services/queue"
	"github.com/outerrim/holonet/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting HoloNet API",
		"port", cfg.Port,
		"environment", cfg.Environment)

	store, err := storage.NewRedisStorage(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	invocationQueue := queue.NewInvocationQueue(queueClient)

	broadcaster := events.NewBroadcaster(store.GetClient(), log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	roomsHandler := handlers.NewRoomsHandler(store, invocationQueue, broadcaster, log)
	mux.Handle("/v1/rooms", roomsHandler)
	mux.Handle("/v1/rooms/", roomsHandler)

	wikiHandler := handlers.NewWikiHandler(store, log)
	mux.Handle("/v1/wiki", wikiHandler)
	mux.Handle("/v1/wiki/", wikiHandler)

	blogsHandler := handlers.NewBlogsHandler(store, log)
	mux.Handle("/v1/blogs", blogsHandler)
	mux.Handle("/v1/blogs/", blogsHandler)

	mapPointsHandler := handlers.NewMapPointsHandler(store, log)
	mux.Handle("/v1/map-points", mapPointsHandler)
	mux.Handle("/v1/map-points/", mapPointsHandler)

	profilesHandler := handlers.NewProfilesHandler(store, log)
	mux.Handle("/v1/profiles/", profilesHandler)

	eventsHandler := handlers.NewEventsHandler(store.GetClient(), log)
	mux.Handle("/v1/events/rooms/", eventsHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout omitted so SSE streams stay open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
