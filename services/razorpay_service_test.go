package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signHex(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func testRazorpayService(t *testing.T) *RazorpayService {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "test_key_secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "test_webhook_secret")
	return NewRazorpayService()
}

func TestVerifyPaymentSignature(t *testing.T) {
	s := testRazorpayService(t)

	orderID := "order_MkD2vBBVvzmx8R"
	paymentID := "pay_MkD3EZyVN1d0Cy"
	valid := signHex(orderID+"|"+paymentID, "test_key_secret")

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid signature accepted", orderID, paymentID, valid, true},
		{"tampered signature rejected", orderID, paymentID, valid[:len(valid)-1] + "0", false},
		{"signature for different order rejected", "order_other", paymentID, valid, false},
		{"signature for different payment rejected", orderID, "pay_other", valid, false},
		{"empty signature rejected", orderID, paymentID, "", false},
		{"wrong secret rejected", orderID, paymentID, signHex(orderID+"|"+paymentID, "wrong_secret"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.VerifyPaymentSignature(tt.orderID, tt.paymentID, tt.signature))
		})
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	s := testRazorpayService(t)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`)
	valid := signHex(string(body), "test_webhook_secret")

	assert.True(t, s.VerifyWebhookSignature(body, valid))
	assert.False(t, s.VerifyWebhookSignature(body, signHex(string(body), "test_key_secret")),
		"key secret must not validate webhook payloads")
	assert.False(t, s.VerifyWebhookSignature([]byte(`{"event":"payment.captured"}`), valid),
		"signature is bound to the exact body")
	assert.False(t, s.VerifyWebhookSignature(body, ""))
}

func TestVerifyHMACMissingSecret(t *testing.T) {
	assert.False(t, verifyHMAC([]byte("msg"), "deadbeef", ""))
}

func TestMissingCredentialsRejectBeforeNetwork(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	s := NewRazorpayService()

	_, err := s.FetchOrder("order_x")
	assert.Error(t, err)
}
