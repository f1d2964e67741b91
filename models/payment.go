// models/payment.go
package models

// CreateOrderRequest is the client request to start a purchase or renewal.
type CreateOrderRequest struct {
	PlanID string `json:"planId" validate:"required"`
}

// CreateOrderResponse carries what the checkout widget needs.
type CreateOrderResponse struct {
	OrderID        string  `json:"orderId"`
	SubscriptionID string  `json:"subscriptionId"`
	Amount         int64   `json:"amount"` // minor currency units (paise)
	Currency       string  `json:"currency"`
	KeyID          string  `json:"keyId"`
	PlanName       string  `json:"planName"`
	PlanPrice      float64 `json:"planPrice"`
}

// VerifyPaymentRequest is the client-side callback after checkout completes.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// RazorpayOrderRequest is the payload sent to the gateway's order-creation API.
type RazorpayOrderRequest struct {
	Amount   int64             `json:"amount"` // paise
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"` // gateway caps this at 40 chars
	Notes    map[string]string `json:"notes,omitempty"`
}

// RazorpayOrder is the gateway's order object.
type RazorpayOrder struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes,omitempty"`
	CreatedAt int64             `json:"created_at"`
}

// RazorpayErrorResponse is the gateway's error envelope.
type RazorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// WebhookEvent is the gateway event envelope delivered to the webhook
// endpoint. Only payment.captured is processed; everything else is
// acknowledged and ignored.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity WebhookPaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookPaymentEntity is the payment object inside a webhook event.
type WebhookPaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	Method  string `json:"method"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}
