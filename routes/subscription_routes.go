package routes

import (
	"github.com/fitflow/gymfit_backend/controllers"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/fitflow/gymfit_backend/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterSubscriptionRoutes sets up membership state, cancellation,
// reconciliation and the admin sweep trigger
func RegisterSubscriptionRoutes(e *echo.Echo, db *mongo.Client, sweeper *services.SubscriptionSweeper) {
	subscriptionController := controllers.NewSubscriptionController(db, sweeper)

	member := e.Group("/api/subscriptions")
	member.Use(middleware.JWTMiddleware(), middleware.RequireActiveUser(db))
	member.GET("/me", subscriptionController.GetMySubscription)
	member.GET("/history", subscriptionController.GetMyHistory)
	member.POST("/cancel", subscriptionController.CancelMySubscription)

	admin := e.Group("/api/admin/subscriptions")
	admin.Use(middleware.JWTMiddleware(), middleware.RequireActiveUser(db))
	admin.Use(middleware.RequireAdmin())
	admin.GET("", subscriptionController.AdminListSubscriptions)
	admin.POST("/:id/cancel", subscriptionController.AdminCancelSubscription)
	admin.POST("/sweep", subscriptionController.TriggerSweep)
	admin.POST("/reconcile", subscriptionController.ReconcileAll)
	admin.POST("/reconcile/:id", subscriptionController.ReconcileUser)
}
