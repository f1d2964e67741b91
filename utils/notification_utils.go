// utils/notification_utils.go
package utils

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SaveNotification saves a notification to the database
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := collection.InsertOne(context.Background(), notification)
	return err
}

// SendPushNotification delivers an FCM push to the user's registered device.
// No-op when Firebase is not configured or the user has no token.
func SendPushNotification(db *mongo.Client, userID primitive.ObjectID, title, message string) {
	if config.FirebaseApp == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user struct {
		FCMToken string `bson:"fcmToken"`
	}
	err := config.GetCollection(db, "users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil || user.FCMToken == "" {
		return
	}

	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		log.Printf("Failed to get FCM client: %v", err)
		return
	}

	_, err = client.Send(ctx, &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
	})
	if err != nil {
		log.Printf("Failed to send push notification to %s: %v", userID.Hex(), err)
	}
}

// NotifyUser records an in-app notification and fires the optional push.
func NotifyUser(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) {
	if err := SaveNotification(db, userID, title, message, notifType, data); err != nil {
		log.Printf("Failed to save notification for %s: %v", userID.Hex(), err)
	}
	go SendPushNotification(db, userID, title, message)
}

// AdminEmails returns the email addresses of all active admin accounts
func AdminEmails(ctx context.Context, db *mongo.Client) []string {
	cursor, err := config.GetCollection(db, "users").Find(ctx, bson.M{"userType": "admin", "isActive": true})
	if err != nil {
		log.Printf("Failed to list admin accounts: %v", err)
		return nil
	}
	defer cursor.Close(ctx)

	var admins []struct {
		Email string `bson:"email"`
	}
	if err := cursor.All(ctx, &admins); err != nil {
		log.Printf("Failed to decode admin accounts: %v", err)
		return nil
	}

	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		emails = append(emails, a.Email)
	}
	return emails
}
