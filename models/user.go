// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	UserTypeUser  = "user"
	UserTypeAdmin = "admin"
)

// User model
type User struct {
	ID                  primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Email               string               `json:"email" bson:"email"`
	Password            string               `json:"password,omitempty" bson:"password"`
	FullName            string               `json:"fullName" bson:"fullName"`
	Phone               string               `json:"phone,omitempty" bson:"phone,omitempty"`
	UserType            string               `json:"userType" bson:"userType"` // "user" or "admin"
	IsActive            bool                 `json:"isActive" bson:"isActive"`
	ProfilePic          string               `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	GoogleID            string               `json:"googleId,omitempty" bson:"googleId,omitempty"`
	FCMToken            string               `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	CurrentSubscription *CurrentSubscription `json:"currentSubscription,omitempty" bson:"currentSubscription,omitempty"`
	MembershipQR        string               `json:"membershipQR,omitempty" bson:"membershipQR,omitempty"`
	ResetPasswordToken  string               `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetTokenExpiresAt time.Time            `json:"-" bson:"resetTokenExpiresAt,omitempty"`
	LastActivityAt      time.Time            `json:"lastActivityAt" bson:"lastActivityAt"`
	CreatedAt           time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// CurrentSubscription is the denormalized pointer to the user's live
// subscription. It is a cache of the subscriptions ledger; the ledger is
// authoritative and any disagreement is resolved by reconciliation.
type CurrentSubscription struct {
	SubscriptionID primitive.ObjectID `json:"subscriptionId" bson:"subscriptionId"`
	PlanID         primitive.ObjectID `json:"planId" bson:"planId"`
	Status         string             `json:"status" bson:"status"`
	ExpiryDate     time.Time          `json:"expiryDate" bson:"expiryDate"`
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
	FCMToken string `json:"fcmToken,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}
