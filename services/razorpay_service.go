package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fitflow/gymfit_backend/models"
)

// RazorpayService handles interactions with the Razorpay API
type RazorpayService struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	client        *http.Client
}

// NewRazorpayService creates a new Razorpay service instance
func NewRazorpayService() *RazorpayService {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	webhookSecret := os.Getenv("RAZORPAY_WEBHOOK_SECRET")

	if keyID == "" || keySecret == "" {
		log.Printf("WARNING: Razorpay credentials not fully configured:")
		if keyID == "" {
			log.Printf("  - RAZORPAY_KEY_ID is missing")
		}
		if keySecret == "" {
			log.Printf("  - RAZORPAY_KEY_SECRET is missing")
		}
		log.Printf("Please set these environment variables for the payment service to work")
	}

	return &RazorpayService{
		baseURL:       "https://api.razorpay.com/v1/",
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// KeyID returns the public key id handed to the checkout widget.
func (s *RazorpayService) KeyID() string {
	return s.keyID
}

// makeRequest performs an HTTP request to the Razorpay API using basic auth
func (s *RazorpayService) makeRequest(method, endpoint string, payload interface{}, out interface{}) error {
	if s.keyID == "" || s.keySecret == "" {
		return fmt.Errorf("missing Razorpay credentials. Please set RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET environment variables")
	}

	url := s.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.keyID, s.keySecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if os.Getenv("RAZORPAY_DEBUG") == "true" {
		log.Printf("Razorpay API %s %s -> %d: %s", method, endpoint, resp.StatusCode, string(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp models.RazorpayErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Description != "" {
			return fmt.Errorf("razorpay API error: %s - %s", errResp.Error.Code, errResp.Error.Description)
		}
		return fmt.Errorf("razorpay API error: status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w\nResponse body: %s", err, string(respBody))
		}
	}

	return nil
}

// CreateOrder creates a gateway order for the given amount in paise
func (s *RazorpayService) CreateOrder(req models.RazorpayOrderRequest) (*models.RazorpayOrder, error) {
	// Gateway rejects receipts longer than 40 characters
	if len(req.Receipt) > 40 {
		req.Receipt = req.Receipt[:40]
	}

	var order models.RazorpayOrder
	if err := s.makeRequest("POST", "orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// FetchOrder retrieves an order from the gateway
func (s *RazorpayService) FetchOrder(orderID string) (*models.RazorpayOrder, error) {
	var order models.RazorpayOrder
	if err := s.makeRequest("GET", "orders/"+orderID, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifyPaymentSignature checks the checkout callback signature:
// HMAC-SHA256 over "orderId|paymentId" keyed with the key secret.
func (s *RazorpayService) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC([]byte(orderID+"|"+paymentID), signature, s.keySecret)
}

// VerifyWebhookSignature checks the x-razorpay-signature header against the
// raw request body using the distinct webhook secret.
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(body, signature, s.webhookSecret)
}

func verifyHMAC(message []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
