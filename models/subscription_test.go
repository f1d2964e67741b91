package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"payment confirms pending", SubscriptionStatusPending, SubscriptionStatusActive, true},
		{"payment failure", SubscriptionStatusPending, SubscriptionStatusFailed, true},
		{"abandoned order", SubscriptionStatusPending, SubscriptionStatusCancelled, true},
		{"expiry into grace", SubscriptionStatusActive, SubscriptionStatusGracePeriod, true},
		{"cancel while active", SubscriptionStatusActive, SubscriptionStatusCancelled, true},
		{"grace runs out", SubscriptionStatusGracePeriod, SubscriptionStatusExpired, true},
		{"cancel during grace", SubscriptionStatusGracePeriod, SubscriptionStatusCancelled, true},
		{"renewal supersedes expired", SubscriptionStatusExpired, SubscriptionStatusCancelled, true},

		{"active cannot revert to pending", SubscriptionStatusActive, SubscriptionStatusPending, false},
		{"expired cannot reactivate", SubscriptionStatusExpired, SubscriptionStatusActive, false},
		{"cancelled is terminal", SubscriptionStatusCancelled, SubscriptionStatusActive, false},
		{"pending cannot skip to grace", SubscriptionStatusPending, SubscriptionStatusGracePeriod, false},
		{"no self transition", SubscriptionStatusActive, SubscriptionStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestActivate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newPending := func() *Subscription {
		return &Subscription{
			Status: SubscriptionStatusPending,
			PaymentDetails: PaymentDetails{
				OrderID: "order_abc123",
				Status:  PaymentStatusCreated,
			},
		}
	}

	t.Run("first confirmation wins", func(t *testing.T) {
		sub := newPending()
		ok := sub.Activate("pay_1", "sig_1", 30, now)
		require.True(t, ok)

		assert.Equal(t, SubscriptionStatusActive, sub.Status)
		assert.Equal(t, PaymentStatusPaid, sub.PaymentDetails.Status)
		assert.Equal(t, "pay_1", sub.PaymentDetails.PaymentID)
		assert.Equal(t, now, sub.StartDate)
		assert.Equal(t, now.AddDate(0, 0, 30), sub.EndDate)
		require.NotNil(t, sub.PaymentDetails.PaidAt)
		assert.Equal(t, now, *sub.PaymentDetails.PaidAt)
	})

	t.Run("second confirmation is a no-op", func(t *testing.T) {
		sub := newPending()
		require.True(t, sub.Activate("pay_1", "sig_1", 30, now))

		later := now.Add(5 * time.Second)
		ok := sub.Activate("pay_2", "sig_2", 30, later)
		assert.False(t, ok)

		// Nothing from the losing writer sticks
		assert.Equal(t, "pay_1", sub.PaymentDetails.PaymentID)
		assert.Equal(t, "sig_1", sub.PaymentDetails.Signature)
		assert.Equal(t, now, sub.StartDate)
	})

	t.Run("non-pending record rejects payment", func(t *testing.T) {
		for _, status := range []string{
			SubscriptionStatusCancelled,
			SubscriptionStatusExpired,
			SubscriptionStatusGracePeriod,
			SubscriptionStatusFailed,
		} {
			sub := newPending()
			sub.Status = status
			assert.False(t, sub.Activate("pay_x", "sig_x", 30, now), "status %s", status)
		}
	})
}

func TestIsPayable(t *testing.T) {
	sub := &Subscription{
		Status:         SubscriptionStatusPending,
		PaymentDetails: PaymentDetails{Status: PaymentStatusCreated},
	}
	assert.True(t, sub.IsPayable())

	sub.PaymentDetails.Status = PaymentStatusPaid
	assert.False(t, sub.IsPayable())

	sub.PaymentDetails.Status = PaymentStatusCreated
	sub.Status = SubscriptionStatusFailed
	assert.False(t, sub.IsPayable())
}

func TestGracePeriodDuration(t *testing.T) {
	assert.Equal(t, 72*time.Hour, GracePeriodDuration)
}
