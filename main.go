package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"rationtrack/cache"
	"rationtrack/config"
	"rationtrack/database"
	"rationtrack/handlers"
	"rationtrack/routes"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	// Load configuration
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	// Set up the application configuration
	config.AppConfig.JWTSecret = jwtSecret
	config.AppConfig.SMTPHost = os.Getenv("SMTP_HOST")
	config.AppConfig.SMTPPort = os.Getenv("SMTP_PORT")
	config.AppConfig.SMTPUsername = os.Getenv("SMTP_USERNAME")
	config.AppConfig.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	config.AppConfig.SMTPFrom = os.Getenv("SMTP_FROM")
	config.AppConfig.SMSGatewayURL = os.Getenv("SMS_GATEWAY_URL")
	config.AppConfig.SMSGatewayKey = os.Getenv("SMS_GATEWAY_KEY")
	config.AppConfig.DispatchEvery = os.Getenv("DISPATCH_EVERY")

	// Initialize database
	database.Connect(databaseURL)
	defer database.Close()

	// Optional Redis response cache; nil disables caching.
	handlers.Cache = cache.Connect(os.Getenv("REDIS_URL"))

	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())

	// Setup routes
	routes.SetupRoutes(app)

	// Periodic sweep so alerts created while notification providers were
	// down still go out.
	dispatchEvery := config.AppConfig.DispatchEvery
	if dispatchEvery == "" {
		dispatchEvery = "@every 5m"
	}
	scheduler := cron.New()
	_, err = scheduler.AddFunc(dispatchEvery, func() {
		handlers.DispatchPendingAlerts(context.Background())
	})
	if err != nil {
		log.Fatalf("Invalid DISPATCH_EVERY cron expression %q: %v", dispatchEvery, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start server
	log.Fatal(app.Listen(":3000"))
}
