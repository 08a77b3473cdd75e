package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/repositories"
	"taskboard/internal/services"
	"taskboard/pkg/events"
	"taskboard/views"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("SECRET_KEY", "")
	viper.SetDefault("AMQP_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// The session secret must never fall back to a fixed value. Without one
	// configured, a random per-process secret is used, which invalidates all
	// sessions on restart.
	secret := viper.GetString("SECRET_KEY")
	if secret == "" {
		secret = randomSecret()
		log.Println("SECRET_KEY not set; using a random session secret, sessions will not survive a restart")
	}

	// --- Initialize Database ---
	db, err := openDatabase(viper.GetString("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Task{}, &models.BlogPost{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Initialize AMQP Client (optional) ---
	// Task lifecycle events are published only when a broker is configured;
	// a nil client disables publishing.
	var mqClient *events.Client
	if amqpURL := viper.GetString("AMQP_URL"); amqpURL != "" {
		mqClient, err = events.NewClient(events.Config{URL: amqpURL})
		if err != nil {
			log.Printf("Warning: task event publishing disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	taskRepo := repositories.NewGORMTaskRepository(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, secret)
	taskService := services.NewTaskService(taskRepo, mqClient)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	pagesHandler := handlers.NewPagesHandler()

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		Views: views.Engine(),
	})

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- Routes ---
	// Public routes: home redirect, static pages, signup and login
	pagesHandler.RegisterRoutes(app)
	authHandler.RegisterRoutes(app)

	// Protected routes: everything touching tasks, plus logout
	protected := app.Group("", middleware.AuthRequired(authService))
	authHandler.RegisterProtectedRoutes(protected)
	taskHandler.RegisterRoutes(protected)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured database: PostgreSQL when a connection
// string is set, otherwise a local sqlite file.
func openDatabase(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		log.Println("DATABASE_URL not set; falling back to local sqlite file todo.db")
		return gorm.Open(sqlite.Open("todo.db"), &gorm.Config{})
	}
	return gorm.Open(postgres.Open(normalizeDatabaseURL(databaseURL)), &gorm.Config{})
}

// normalizeDatabaseURL rewrites the legacy postgres:// scheme prefix to the
// postgresql:// form the driver expects.
func normalizeDatabaseURL(raw string) string {
	if strings.HasPrefix(raw, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(raw, "postgres://")
	}
	return raw
}

// randomSecret generates a fresh 256-bit hex-encoded session secret.
func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate session secret: %v", err)
	}
	return hex.EncodeToString(buf)
}
