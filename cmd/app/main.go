package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"tradewire/configs"
	"tradewire/internal/database"
	delivery "tradewire/internal/delivery/http"
	"tradewire/internal/infra"
	"tradewire/internal/repository"
	"tradewire/internal/service"
	"tradewire/internal/stream"
	"tradewire/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository, stream hub and services
	tradeRepo := repository.NewTradeRepository(db)
	hub := stream.NewHub()
	tradeService := usecase.NewTradeService(tradeRepo, hub)
	summaryService := service.NewSummaryService(tradeRepo)

	// Periodic book summary
	scheduler := infra.NewScheduler(summaryService, cfg.Summary.IntervalMinutes)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Initialize HTTP server
	e := echo.New()
	e.HideBanner = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		TradeHandler: delivery.NewTradeHandler(tradeService, hub),
		DB:           db,
	})

	addr := ":" + cfg.Server.Port
	log.Printf("[INFO] tradewire starting on %s (env: %s)", addr, cfg.Server.Env)

	// Run server in goroutine
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[INFO] Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("[OK] Server exited gracefully")
}
