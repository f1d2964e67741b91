// models/subscription.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription statuses. A subscription document is never deleted; the
// status field is the terminal marker.
const (
	SubscriptionStatusPending     = "pending"
	SubscriptionStatusActive      = "active"
	SubscriptionStatusGracePeriod = "grace_period"
	SubscriptionStatusExpired     = "expired"
	SubscriptionStatusCancelled   = "cancelled"
	SubscriptionStatusFailed      = "failed"
)

// Payment statuses carried inside paymentDetails.
const (
	PaymentStatusCreated = "created"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// GracePeriodDuration is counted from the moment the expiry sweep processes
// the record, not from the original endDate.
const GracePeriodDuration = 72 * time.Hour

// Subscription represents one paid access window (one purchase or renewal
// attempt). A user has at most one subscription with status "active" at a
// time, enforced by conditional updates at the application layer.
type Subscription struct {
	ID                     primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID                 primitive.ObjectID  `json:"userId" bson:"userId"`
	PlanID                 primitive.ObjectID  `json:"planId" bson:"planId"`
	Amount                 float64             `json:"amount" bson:"amount"`
	Status                 string              `json:"status" bson:"status"`
	StartDate              time.Time           `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate                time.Time           `json:"endDate,omitempty" bson:"endDate,omitempty"`
	GracePeriodEnd         *time.Time          `json:"gracePeriodEnd,omitempty" bson:"gracePeriodEnd,omitempty"`
	PaymentDetails         PaymentDetails      `json:"paymentDetails" bson:"paymentDetails"`
	RemindersSent          RemindersSent       `json:"remindersSent" bson:"remindersSent"`
	RenewalCount           int                 `json:"renewalCount" bson:"renewalCount"`
	PreviousSubscriptionID *primitive.ObjectID `json:"previousSubscriptionId,omitempty" bson:"previousSubscriptionId,omitempty"`
	CancelledAt            *time.Time          `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	CreatedAt              time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt              time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// PaymentDetails records the gateway order attached to this subscription.
type PaymentDetails struct {
	OrderID       string     `json:"orderId" bson:"orderId"`
	PaymentID     string     `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	Signature     string     `json:"signature,omitempty" bson:"signature,omitempty"`
	AmountInPaise int64      `json:"amountInPaise" bson:"amountInPaise"`
	Status        string     `json:"status" bson:"status"`
	PaidAt        *time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

// RemindersSent gates each notification tier so repeated sweep runs do not
// resend. AdminExpiry gates the admin notification on expiry the same way.
type RemindersSent struct {
	SevenDay    bool `json:"sevenDay" bson:"sevenDay"`
	ThreeDay    bool `json:"threeDay" bson:"threeDay"`
	OneDay      bool `json:"oneDay" bson:"oneDay"`
	ExpiryDay   bool `json:"expiryDay" bson:"expiryDay"`
	GracePeriod bool `json:"gracePeriod" bson:"gracePeriod"`
	AdminExpiry bool `json:"adminExpiry" bson:"adminExpiry"`
}

// subscriptionTransition is a from/to pair of subscription statuses.
type subscriptionTransition struct {
	From string
	To   string
}

var validSubscriptionTransitions = map[subscriptionTransition]bool{
	{SubscriptionStatusPending, SubscriptionStatusActive}:        true, // payment verified
	{SubscriptionStatusPending, SubscriptionStatusFailed}:        true, // payment failed at gateway
	{SubscriptionStatusPending, SubscriptionStatusCancelled}:     true, // abandoned order cancelled
	{SubscriptionStatusActive, SubscriptionStatusGracePeriod}:    true, // endDate passed
	{SubscriptionStatusActive, SubscriptionStatusCancelled}:      true, // user/admin cancel, or superseded by renewal
	{SubscriptionStatusGracePeriod, SubscriptionStatusExpired}:   true, // grace window elapsed
	{SubscriptionStatusGracePeriod, SubscriptionStatusCancelled}: true, // cancel during grace, or superseded by renewal
	{SubscriptionStatusExpired, SubscriptionStatusCancelled}:     true, // superseded by renewal
}

// CanTransition reports whether moving a subscription from one status to
// another is allowed.
func CanTransition(from, to string) bool {
	return validSubscriptionTransitions[subscriptionTransition{from, to}]
}

// IsPayable reports whether this subscription can still accept a payment
// confirmation. Both the client-verify path and the webhook path check this
// before applying activation; whichever arrives second sees a paid record
// and becomes a no-op.
func (s *Subscription) IsPayable() bool {
	return s.Status == SubscriptionStatusPending && s.PaymentDetails.Status == PaymentStatusCreated
}

// Activate applies the payment confirmation to the subscription in place.
// Returns false without mutating when the record is not payable, which makes
// the racing confirmation paths first-writer-wins.
func (s *Subscription) Activate(paymentID, signature string, durationDays int, now time.Time) bool {
	if !s.IsPayable() {
		return false
	}
	s.Status = SubscriptionStatusActive
	s.StartDate = now
	s.EndDate = now.AddDate(0, 0, durationDays)
	s.PaymentDetails.PaymentID = paymentID
	s.PaymentDetails.Signature = signature
	s.PaymentDetails.Status = PaymentStatusPaid
	paidAt := now
	s.PaymentDetails.PaidAt = &paidAt
	s.UpdatedAt = now
	return true
}

// SubscriptionHistoryEntry pairs a ledger record with its plan for API output.
type SubscriptionHistoryEntry struct {
	Subscription Subscription `json:"subscription"`
	Plan         *Plan        `json:"plan,omitempty"`
}
