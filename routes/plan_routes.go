package routes

import (
	"github.com/fitflow/gymfit_backend/controllers"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterPlanRoutes sets up the plan catalog routes
func RegisterPlanRoutes(e *echo.Echo, db *mongo.Client) {
	planController := controllers.NewPlanController(db)

	// Public pricing page
	e.GET("/api/plans", planController.GetPlans)
	e.GET("/api/plans/:id", planController.GetPlan)

	// Admin catalog management
	admin := e.Group("/api/admin/plans")
	admin.Use(middleware.JWTMiddleware(), middleware.RequireActiveUser(db))
	admin.Use(middleware.RequireAdmin())
	admin.GET("", planController.GetAllPlans)
	admin.POST("", planController.CreatePlan)
	admin.PUT("/:id", planController.UpdatePlan)
	admin.DELETE("/:id", planController.DeletePlan)
}
