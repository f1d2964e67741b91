package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types pushed over the live channel
const (
	NotificationTypePaymentReceived   = "payment_received"
	NotificationTypeMembershipExpired = "membership_expired"
	NotificationTypeMembershipRenewed = "membership_renewed"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	UserID       string      `json:"userID,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID        primitive.ObjectID
	UserType      string
	Conn          *websocket.Conn
	Authenticated bool
}

// Hub maintains the set of active clients. Authenticated admin connections
// receive the live payment and expiry feed; member connections receive
// only messages addressed to their own user id.
type Hub struct {
	clients                map[primitive.ObjectID]*Client
	unauthenticatedClients map[*Client]bool
	register               chan *Client
	unregister             chan *Client
	mu                     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:                make(map[primitive.ObjectID]*Client),
		unauthenticatedClients: make(map[*Client]bool),
		register:               make(chan *Client),
		unregister:             make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				h.clients[client.UserID] = client
			} else {
				h.unauthenticatedClients[client] = true
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				if _, ok := h.clients[client.UserID]; ok {
					delete(h.clients, client.UserID)
				}
			} else {
				delete(h.unauthenticatedClients, client)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// AuthenticateClient moves a client from unauthenticated to authenticated state
func (h *Hub) AuthenticateClient(client *Client, userID primitive.ObjectID, userType string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.unauthenticatedClients[client]; ok {
		delete(h.unauthenticatedClients, client)
	}

	client.Authenticated = true
	client.UserID = userID
	client.UserType = userType

	// A reconnect for the same user displaces the previous session; close
	// its socket so it doesn't leak.
	if old, ok := h.clients[userID]; ok && old != client {
		if old.Conn != nil {
			old.Conn.Close()
		}
	}
	h.clients[userID] = client

	return nil
}

// BroadcastToAdmins sends a notification to every connected admin client.
func (h *Hub) BroadcastToAdmins(notification Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.UserType == "admin" {
			client.Conn.WriteJSON(notification)
		}
	}
}

// NotifyPaymentReceived pushes a confirmed payment to the admin dashboard.
func (h *Hub) NotifyPaymentReceived(data interface{}) {
	h.BroadcastToAdmins(Notification{
		Type:    NotificationTypePaymentReceived,
		Message: "A membership payment was confirmed",
		Data:    data,
	})
}

// NotifyMembershipExpired pushes a terminated membership to the admin dashboard.
func (h *Hub) NotifyMembershipExpired(data interface{}) {
	h.BroadcastToAdmins(Notification{
		Type:    NotificationTypeMembershipExpired,
		Message: "A membership has expired",
		Data:    data,
	})
}

// NotifyMembershipRenewed tells the member their renewal is active.
func (h *Hub) NotifyMembershipRenewed(userID primitive.ObjectID, data interface{}) error {
	return h.SendToUser(userID, Notification{
		Type:    NotificationTypeMembershipRenewed,
		Message: "Your membership renewal is active",
		Data:    data,
	})
}
