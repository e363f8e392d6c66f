package main

import (
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/westmarinwhales/whale-alerts/database"
	"github.com/westmarinwhales/whale-alerts/internal/config"
	"github.com/westmarinwhales/whale-alerts/internal/handlers"
	"github.com/westmarinwhales/whale-alerts/internal/jobs"
	"github.com/westmarinwhales/whale-alerts/internal/routes"
	"github.com/westmarinwhales/whale-alerts/internal/services"
	"github.com/westmarinwhales/whale-alerts/internal/storage"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			if err := godotenv.Load("environments/.env.development"); err != nil {
				logrus.Info("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg)

	// Initialize storage
	var store storage.Store
	storageType := cfg.DBDriver
	if cfg.DBDriver == "memory" {
		logrus.Warn("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			logrus.Fatalf("Failed to initialize database: %v", err)
		}
		store = storage.NewDatabaseStore(db)
	}

	// Outbound SMS
	var messenger services.Messenger
	twilioConfigured := false
	twilioService, err := services.NewTwilioService(cfg)
	switch {
	case err == nil:
		messenger = twilioService
		twilioConfigured = true
		logrus.Info("✅ Twilio service initialized")
	case cfg.IsDevelopment():
		logrus.Warnf("⚠️  Twilio not configured (%v) - outbound texts will only be logged", err)
		messenger = services.LogMessenger{}
	default:
		logrus.Fatalf("Failed to initialize Twilio service: %v", err)
	}

	filter, err := services.LoadWordFilter(cfg.WordFilterFile)
	if err != nil {
		logrus.Fatalf("Failed to load word filter: %v", err)
	}

	// Initialize services
	sessions := services.NewSessionManager(store, cfg.SessionTTL)
	broadcaster := services.NewBroadcaster(store, messenger, cfg.Location(), cfg.BroadcastSendDelay)
	alerts := services.NewAlertService(cfg, store, sessions, messenger, broadcaster, filter, services.WordListGenerator{})

	cleanupJob := jobs.NewSessionCleanupJob(sessions, cfg.SessionCleanupSchedule)
	if err := cleanupJob.Start(); err != nil {
		logrus.Fatalf("Failed to start session cleanup: %v", err)
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "West Marin Whale Alerts v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	routes.SetupRoutes(app, cfg, routes.Handlers{
		Health:      handlers.NewHealthHandler(version, storageType, store, twilioConfigured),
		SMS:         handlers.NewSMSHandler(alerts, cfg.ContactCardURL),
		SendMessage: handlers.NewSendMessageHandler(broadcaster, cfg.SendMessageSecret),
		Debug:       handlers.NewDebugHandler(store, cfg.AdminPhoneNumbers[0]),
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logrus.Info("🛑 Gracefully shutting down...")
		cleanupJob.Stop()
		logrus.Info("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	logrus.Info("========================================")
	logrus.Infof("🐋 Whale alerts starting on port %s", cfg.Port)
	logrus.Infof("📊 Storage: %s", storageType)
	logrus.Infof("🌍 Environment: %s (%s)", cfg.Environment, cfg.TimeZone)
	logrus.Infof("👮 Admins: %d", len(cfg.AdminPhoneNumbers))
	logrus.Info("========================================")

	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.Errorf("Server stopped: %v", err)
	}

	// Let in-flight alerts reach every subscriber before exiting
	logrus.Info("⏳ Waiting for in-flight broadcasts...")
	broadcaster.Wait()
	logrus.Info("👋 Bye")
}

func setupLogging(cfg *config.Config) {
	if cfg.IsDevelopment() {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
