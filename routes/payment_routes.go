package routes

import (
	"github.com/fitflow/gymfit_backend/controllers"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/fitflow/gymfit_backend/services"
	"github.com/fitflow/gymfit_backend/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterPaymentRoutes sets up the payment workflow routes. The webhook
// endpoint is unauthenticated; its own HMAC check is the auth.
func RegisterPaymentRoutes(e *echo.Echo, db *mongo.Client, razorpay *services.RazorpayService, hub *websocket.Hub) {
	paymentController := controllers.NewPaymentController(db, razorpay, hub)

	e.POST("/api/payments/webhook", paymentController.HandleWebhook)

	payments := e.Group("/api/payments")
	payments.Use(middleware.JWTMiddleware(), middleware.RequireActiveUser(db))
	payments.POST("/order", paymentController.CreateOrder)
	payments.POST("/verify", paymentController.VerifyPayment)
	payments.POST("/renew", paymentController.RenewMembership)
}
