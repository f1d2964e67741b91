package main

import (
	"context"
	"log"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/fitflow/gymfit_backend/routes"
	"github.com/fitflow/gymfit_backend/services"
	"github.com/fitflow/gymfit_backend/utils"
	"github.com/fitflow/gymfit_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Fail fast on missing required configuration
	config.ValidateEnv()

	// Ensure correct MIME type for SVG files
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	// Optional integrations; each disables itself when unconfigured
	config.InitFirebase()
	config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// External service clients
	razorpay := services.NewRazorpayService()
	storage := services.NewStorageService()

	// Admin notification hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Daily membership lifecycle sweep
	sweeper := services.NewSubscriptionSweeper(client, wsHub)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start subscription sweeper: %v", err)
	}

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.CORSWithConfig())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "GymFit Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Routes
	routes.RegisterAuthRoutes(e, client)
	routes.RegisterPlanRoutes(e, client)
	routes.RegisterPaymentRoutes(e, client, razorpay, wsHub)
	routes.RegisterSubscriptionRoutes(e, client, sweeper)
	routes.RegisterContentRoutes(e, client)
	routes.RegisterNotificationRoutes(e, client, wsHub)
	routes.RegisterFileRoutes(e, client, storage)

	// Local media fallback when object storage is not configured
	if err := utils.InitializeStorage(); err != nil {
		log.Printf("Warning: failed to prepare uploads directories: %v", err)
	}
	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	// Graceful shutdown: finish any running sweep, then close connections
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sweeper.Stop()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	config.CloseRedis()
	if err := client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
}
