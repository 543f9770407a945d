package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/outerrim/holonet/internal/config"
	"github.com/outerrim/holonet/internal/logger"
	"github.com/outerrim/holonet/internal/services"
	"github.com/outerrim/holonet/internal/services/queue"
	"github.com/outerrim/holonet/internal/storage"
	"github.com/outerrim/holonet/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting HoloNet Worker",
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	// Initialize queue service
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
	log.Info("Queue service initialized successfully")

	// Initialize storage service
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
	log.Info("Storage service initialized successfully")

	// Initialize LLM service
	var llmService services.LLMService
	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic LLM provider")
	case "venice":
		if cfg.VeniceAPIKey == "" {
			log.Error("Venice API key is required when using venice provider")
			os.Exit(1)
		}
		llmService = services.NewVeniceService(cfg.VeniceAPIKey, cfg.ModelName)
		log.Info("Using Venice LLM provider")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"anthropic", "venice"})
		os.Exit(1)
	}

	// Initialize the model
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer initCancel()
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}
	log.Info("LLM service initialized successfully", "model", cfg.ModelName)

	responder := worker.NewResponder(store, llmService, cfg.HistoryCharLimit, log)
	log.Info("Responder initialized successfully")

	// Create and start worker
	w := worker.New(invocationQueue, responder, store, store.GetClient(), log, os.Getenv("WORKER_ID"))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for invocations...")

	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()

	// Give worker time to finish the current invocation
	time.Sleep(2 * time.Second)

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Worker exited")
}
