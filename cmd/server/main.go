package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"footix-backend/internal/config"
	"footix-backend/internal/database"
	"footix-backend/internal/handler"
	"footix-backend/internal/middleware"
	"footix-backend/internal/repository"
	"footix-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied successfully")

	// Repositories
	auctionRepo := repository.NewAuctionRepository(db)
	clubRepo := repository.NewClubRepository(db, cfg.SalaryCapPct, cfg.WageEstimatePct)

	// Services
	wsHub := service.NewWSHub()
	webhooks := service.NewWebhookService(cfg.AuctionWebhookURL)
	auctionSvc := service.NewAuctionService(auctionRepo, clubRepo, wsHub,
		time.Duration(cfg.CommitTimeoutSec)*time.Second)
	scheduler := service.NewScheduler(auctionRepo, wsHub, webhooks,
		time.Duration(cfg.SweepIntervalSec)*time.Second)

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// Health
	healthH := handler.NewHealthHandler(db)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Admin — registered BEFORE protected group
	admin := v1.Group("/admin", middleware.AdminKey(cfg.AdminKey))
	adminH := handler.NewAdminHandler(auctionSvc, auctionRepo, wsHub)
	admin.Get("/stats", adminH.Stats)
	admin.Post("/auctions", adminH.CreateSystemAuction)
	admin.Delete("/auctions/:id", adminH.CancelAuction)
	admin.Post("/announce", adminH.Announce)

	// JWT-protected routes (catch-all — must be LAST)
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret))

	// Auctions
	auctionH := handler.NewAuctionHandler(auctionSvc)
	auctions := protected.Group("/auctions")
	auctions.Get("/", auctionH.Search)
	auctions.Post("/", auctionH.Create)
	auctions.Get("/mine", auctionH.Mine)
	auctions.Get("/:id", auctionH.Get)
	auctions.Post("/:id/bids", middleware.RateLimit(30, time.Minute), auctionH.Bid)
	auctions.Put("/:id/schedule", auctionH.UpdateSchedule)

	// WebSocket
	wsH := handler.NewWSHandler(wsHub, cfg.JWTSecret)
	app.Get("/ws", wsH.Upgrade)

	// Background workers
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	go wsHub.Run()
	go scheduler.Run(schedulerCtx)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("Footix auction backend running on :%s (%s)", cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	stopScheduler()
	_ = app.ShutdownWithTimeout(5 * time.Second)
	wsHub.Shutdown()
	log.Println("Server stopped")
}
