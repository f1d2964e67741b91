package routes

import (
	"github.com/fitflow/gymfit_backend/controllers"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/fitflow/gymfit_backend/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterFileRoutes sets up the object-storage proxy and admin uploads.
// Local uploads/ serving is registered in main as a static fallback.
func RegisterFileRoutes(e *echo.Echo, db *mongo.Client, storage *services.StorageService) {
	fileController := controllers.NewFileController(storage)

	e.GET("/api/files/*", fileController.ServeFile)

	admin := e.Group("/api/admin/files")
	admin.Use(middleware.JWTMiddleware(), middleware.RequireActiveUser(db))
	admin.Use(middleware.RequireAdmin())
	admin.POST("/upload", fileController.UploadFile)
	admin.DELETE("/*", fileController.DeleteFile)
}
