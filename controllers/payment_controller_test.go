package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/fitflow/gymfit_backend/models"
	"github.com/fitflow/gymfit_backend/services"
)

func signWebhookBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(tb testing.TB, pc *PaymentController, event, secret string) *httptest.ResponseRecorder {
	tb.Helper()

	payload := map[string]interface{}{
		"event": event,
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       "pay_123",
					"order_id": "order_123",
					"status":   "captured",
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(tb, err)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set("x-razorpay-signature", signWebhookBody(body, secret))
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(tb, pc.HandleWebhook(c))
	return rec
}

func paidSubscriptionDoc(subID, userID, planID primitive.ObjectID, now time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: subID},
		{Key: "userId", Value: userID},
		{Key: "planId", Value: planID},
		{Key: "amount", Value: 999.0},
		{Key: "status", Value: models.SubscriptionStatusActive},
		{Key: "startDate", Value: primitive.NewDateTimeFromTime(now)},
		{Key: "endDate", Value: primitive.NewDateTimeFromTime(now.AddDate(0, 0, 30))},
		{Key: "paymentDetails", Value: bson.D{
			{Key: "orderId", Value: "order_123"},
			{Key: "paymentId", Value: "pay_123"},
			{Key: "amountInPaise", Value: int64(99900)},
			{Key: "status", Value: models.PaymentStatusPaid},
			{Key: "paidAt", Value: primitive.NewDateTimeFromTime(now)},
		}},
		{Key: "createdAt", Value: primitive.NewDateTimeFromTime(now)},
		{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(now)},
	}
}

func TestHandleWebhookIdempotence(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "key-secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "webhook-secret")

	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate capture is acknowledged without reprocessing", func(mt *mtest.T) {
		pc := NewPaymentController(mt.Client, services.NewRazorpayService(), nil)
		now := time.Now().UTC().Truncate(time.Millisecond)
		subID, userID, planID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		paidSub := paidSubscriptionDoc(subID, userID, planID, now)
		plan := bson.D{
			{Key: "_id", Value: planID},
			{Key: "name", Value: "Monthly"},
			{Key: "price", Value: 999.0},
			{Key: "durationDays", Value: 30},
			{Key: "isActive", Value: true},
			{Key: "createdAt", Value: primitive.NewDateTimeFromTime(now)},
			{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(now)},
		}

		mt.AddMockResponses(
			// order lookup ahead of the conditional update
			mtest.CreateCursorResponse(0, "gymfit.subscriptions", mtest.FirstBatch, paidSub),
			mtest.CreateCursorResponse(0, "gymfit.plans", mtest.FirstBatch, plan),
			// the guarded update matches nothing: the record is already paid
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			// recheck confirming the payment already landed
			mtest.CreateCursorResponse(0, "gymfit.subscriptions", mtest.FirstBatch, paidSub),
		)

		rec := postWebhook(mt, pc, "payment.captured", "webhook-secret")
		assert.Equal(mt, http.StatusOK, rec.Code)

		var resp models.Response
		require.NoError(mt, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(mt, "Payment already processed", resp.Message)
	})

	mt.Run("non-captured events are acknowledged and ignored", func(mt *mtest.T) {
		pc := NewPaymentController(mt.Client, services.NewRazorpayService(), nil)

		rec := postWebhook(mt, pc, "payment.failed", "webhook-secret")
		assert.Equal(mt, http.StatusOK, rec.Code)

		var resp models.Response
		require.NoError(mt, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(mt, "Event ignored", resp.Message)
	})

	mt.Run("unsigned delivery is rejected", func(mt *mtest.T) {
		pc := NewPaymentController(mt.Client, services.NewRazorpayService(), nil)

		rec := postWebhook(mt, pc, "payment.captured", "")
		assert.Equal(mt, http.StatusBadRequest, rec.Code)
	})
}
