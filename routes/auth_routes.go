package routes

import (
	"github.com/fitflow/gymfit_backend/controllers"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterAuthRoutes sets up user and admin authentication routes
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client) {
	authController := controllers.NewAuthController(db)

	auth := e.Group("/api/auth")
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.POST("/google", authController.GoogleLogin)
	auth.POST("/refresh", authController.RefreshToken)
	auth.POST("/forgot-password", authController.ForgotPassword)
	auth.POST("/reset-password", authController.ResetPassword)

	// Authenticated account endpoints
	account := e.Group("/api/auth")
	account.Use(middleware.JWTMiddleware(), middleware.RequireActiveUser(db))
	account.POST("/logout", authController.Logout)
	account.GET("/profile", authController.GetProfile)
	account.PUT("/profile", authController.UpdateProfile)
	account.PUT("/change-password", authController.ChangePassword)

	// Admin login lives under its own prefix so the admin cookie pair
	// stays separate from the member one
	e.POST("/api/admin/login", authController.AdminLogin)
}
