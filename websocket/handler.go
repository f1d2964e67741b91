package websocket

import (
	"net/http"
	"strings"

	"github.com/fitflow/gymfit_backend/middleware"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and registers the client with the
// hub. Connections arriving without a token start unauthenticated and must
// send "AUTH:<jwt>" as their first message to join the notification feed.
func HandleWebSocket(c echo.Context, hub *Hub, userID primitive.ObjectID, userType string) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID:        userID,
		UserType:      userType,
		Conn:          conn,
		Authenticated: userID != primitive.NilObjectID,
	}

	hub.register <- client

	if client.Authenticated {
		conn.WriteJSON(Notification{
			Type:    "connected",
			Message: "WebSocket connection established",
			UserID:  userID.Hex(),
		})
	} else {
		conn.WriteJSON(Notification{
			Type:         "connected",
			Message:      "WebSocket connection established. Please authenticate to receive notifications.",
			RequiresAuth: true,
		})
	}

	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			if messageType != websocket.TextMessage {
				continue
			}
			messageStr := string(message)
			if !strings.HasPrefix(messageStr, "AUTH:") {
				continue
			}

			token := strings.TrimPrefix(messageStr, "AUTH:")
			claims, err := middleware.ParseToken(token)
			if err != nil {
				conn.WriteJSON(Notification{
					Type:         "auth_response",
					Message:      "Authentication failed: invalid token",
					RequiresAuth: true,
				})
				continue
			}

			uid, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				conn.WriteJSON(Notification{
					Type:         "auth_response",
					Message:      "Authentication failed: invalid token",
					RequiresAuth: true,
				})
				continue
			}

			hub.AuthenticateClient(client, uid, claims.UserType)
			conn.WriteJSON(Notification{
				Type:    "auth_response",
				Message: "Authenticated",
				UserID:  uid.Hex(),
			})
		}
	}()

	return nil
}
