package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/vehicle-vendor/internal/config"
	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/internal/services"
	"github.com/jwebster45206/vehicle-vendor/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	if cfg.RedisURL == "" {
		log.Error("REDIS_URL is required to run the purchase audit worker")
		os.Exit(1)
	}

	log.Info("Starting Vehicle Vendor Audit Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL)

	redisService, err := services.NewRedisService(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create Redis client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisService.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := redisService.WaitForConnection(ctx, 10, 2*time.Second); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Redis connection established successfully")

	w := worker.New(redisService.GetClient(), log, os.Getenv("WORKER_ID"))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for purchase records...")

	<-quit
	log.Info("Worker shutdown signal received")
	w.Stop()

	// Let an in-flight record finish writing.
	time.Sleep(time.Second)

	log.Info("Worker exited")
}
