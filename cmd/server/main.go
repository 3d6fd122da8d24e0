package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/handlers"
	"hackathon-management-backend/internal/mailer"
	"hackathon-management-backend/internal/repositories"
	"hackathon-management-backend/internal/services"
	"hackathon-management-backend/internal/wallet"
	"hackathon-management-backend/pkg/database"
	"hackathon-management-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Initialize database
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// Run migrations
	if err := repositories.AutoMigrate(db); err != nil {
		log.Fatalf("Migration error: %v", err)
	}

	// Initialize repositories
	repo := repositories.NewRepository(db)

	// Initialize services
	mail := mailer.NewSMTPSender(cfg)
	tokenSvc := services.NewTokenService(repo.TokenRepo)
	authSvc := services.NewAuthService(repo, cfg)
	registrationSvc := services.NewRegistrationService(repo.PersonRepo, repo.TokenRepo, tokenSvc, mail, cfg)
	lifecycleSvc := services.NewLifecycleService(repo.PersonRepo, repo.TokenRepo, tokenSvc, mail, cfg)
	attendanceSvc := services.NewAttendanceService(repo.PersonRepo, repo.PresenceRepo)
	passSvc := services.NewPassService(repo.PersonRepo, repo.PassRepo)
	personSvc := services.NewPersonService(repo.PersonRepo)

	walletGen := wallet.NewGenerator(&cfg.Passkit, cfg.EventStartsAt)
	defer walletGen.Close()

	// Initialize handlers
	handler := handlers.NewHandler(
		authSvc, registrationSvc, lifecycleSvc,
		attendanceSvc, passSvc, personSvc,
		walletGen, cfg,
	)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Hackathon Management API",
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Create output directories
	for _, dir := range []string{cfg.CVDir, cfg.Passkit.PassDir, cfg.Passkit.QRDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	// Register routes
	api := app.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("🚀 Server starting on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped gracefully")
}
