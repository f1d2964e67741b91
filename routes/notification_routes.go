package routes

import (
	"github.com/fitflow/gymfit_backend/controllers"
	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/fitflow/gymfit_backend/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RegisterNotificationRoutes sets up the in-app notification feed and the
// live websocket channel.
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	notificationController := controllers.NewNotificationController(db)

	notifications := e.Group("/api/notifications")
	notifications.Use(middleware.JWTMiddleware(), middleware.RequireActiveUser(db))
	notifications.GET("", notificationController.GetNotifications)
	notifications.PUT("/:id/read", notificationController.MarkNotificationRead)
	notifications.PUT("/read-all", notificationController.MarkAllNotificationsRead)

	// The websocket endpoint accepts a token via query parameter; clients
	// without one connect unauthenticated and send AUTH:<jwt> afterwards.
	e.GET("/ws", func(c echo.Context) error {
		userID := primitive.NilObjectID
		userType := ""
		if token := c.QueryParam("token"); token != "" {
			if claims, err := middleware.ParseToken(token); err == nil {
				if id, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
					userID = id
					userType = claims.UserType
				}
			}
		}
		return websocket.HandleWebSocket(c, hub, userID, userType)
	})
}
