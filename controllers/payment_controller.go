package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/models"
	"github.com/fitflow/gymfit_backend/repositories"
	"github.com/fitflow/gymfit_backend/services"
	"github.com/fitflow/gymfit_backend/utils"
	"github.com/fitflow/gymfit_backend/websocket"
)

// PaymentController handles the Razorpay order/verify/webhook workflow and
// membership renewal.
type PaymentController struct {
	DB       *mongo.Client
	razorpay *services.RazorpayService
	subRepo  *repositories.SubscriptionRepository
	userRepo *repositories.UserRepository
	hub      *websocket.Hub
	logger   *log.Logger
}

func NewPaymentController(db *mongo.Client, razorpay *services.RazorpayService, hub *websocket.Hub) *PaymentController {
	return &PaymentController{
		DB:       db,
		razorpay: razorpay,
		subRepo:  repositories.NewSubscriptionRepository(db),
		userRepo: repositories.NewUserRepository(db),
		hub:      hub,
		logger:   log.New(os.Stdout, "[PAYMENT] ", log.LstdFlags),
	}
}

// CreateOrder starts a membership purchase: creates a gateway order and a
// pending subscription bound to it.
func (pc *PaymentController) CreateOrder(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Plan ID is required",
		})
	}

	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID",
		})
	}

	var plan models.Plan
	err = config.GetCollection(pc.DB, "plans").FindOne(ctx, bson.M{"_id": planID}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Plan not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch plan",
		})
	}
	if !plan.IsActive {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Plan is not available for purchase",
		})
	}

	hasActive, err := pc.subRepo.HasActiveSubscription(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing membership",
		})
	}
	if hasActive {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "You already have an active membership; use renewal instead",
		})
	}

	return pc.createOrderAndSubscription(c, ctx, userID, &plan, nil, 0)
}

// RenewMembership creates a renewal order for a user whose latest
// subscription is active, in its grace window, or expired. The renewal
// record links to its predecessor; activation cancels the old record.
func (pc *PaymentController) RenewMembership(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil || req.PlanID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Plan ID is required",
		})
	}

	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid plan ID",
		})
	}

	var plan models.Plan
	err = config.GetCollection(pc.DB, "plans").FindOne(ctx, bson.M{"_id": planID}).Decode(&plan)
	if err != nil || !plan.IsActive {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Plan is not available for purchase",
		})
	}

	previous, err := pc.subRepo.LatestByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No membership to renew; purchase a new one",
		})
	}
	switch previous.Status {
	case models.SubscriptionStatusActive, models.SubscriptionStatusGracePeriod, models.SubscriptionStatusExpired:
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Latest membership is not renewable; purchase a new one",
		})
	}

	return pc.createOrderAndSubscription(c, ctx, userID, &plan, &previous.ID, previous.RenewalCount+1)
}

func (pc *PaymentController) createOrderAndSubscription(c echo.Context, ctx context.Context, userID primitive.ObjectID, plan *models.Plan, previousID *primitive.ObjectID, renewalCount int) error {
	amountInPaise := int64(math.Round(plan.Price * 100))
	receipt := "rcpt_" + uuid.New().String()

	order, err := pc.razorpay.CreateOrder(models.RazorpayOrderRequest{
		Amount:   amountInPaise,
		Currency: "INR",
		Receipt:  receipt,
		Notes: map[string]string{
			"userId": userID.Hex(),
			"planId": plan.ID.Hex(),
		},
	})
	if err != nil {
		pc.logger.Printf("Gateway order creation failed for user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Payment gateway error: " + err.Error(),
		})
	}

	now := time.Now()
	sub := models.Subscription{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		PlanID: plan.ID,
		Amount: plan.Price,
		Status: models.SubscriptionStatusPending,
		PaymentDetails: models.PaymentDetails{
			OrderID:       order.ID,
			AmountInPaise: amountInPaise,
			Status:        models.PaymentStatusCreated,
		},
		RenewalCount:           renewalCount,
		PreviousSubscriptionID: previousID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := pc.subRepo.Insert(ctx, &sub); err != nil {
		pc.logger.Printf("Failed to persist pending subscription for order %s: %v", order.ID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create subscription record",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Order created",
		Data: models.CreateOrderResponse{
			OrderID:        order.ID,
			SubscriptionID: sub.ID.Hex(),
			Amount:         order.Amount,
			Currency:       order.Currency,
			KeyID:          pc.razorpay.KeyID(),
			PlanName:       plan.Name,
			PlanPrice:      plan.Price,
		},
	})
}

// VerifyPayment is the client-side callback after checkout. The signature
// is checked first; activation itself is a conditional update, so if the
// webhook already confirmed this order the call reports success without
// repeating any side effects.
func (pc *PaymentController) VerifyPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Order ID, payment ID and signature are required",
		})
	}

	sub, err := pc.subRepo.FindByOrderID(ctx, req.OrderID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No subscription found for this order",
		})
	}
	if sub.UserID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Order does not belong to this account",
		})
	}

	if !pc.razorpay.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		pc.logger.Printf("Signature mismatch on order %s", req.OrderID)
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Payment signature verification failed",
		})
	}

	activated, err := pc.activate(ctx, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Already confirmed by the webhook (or a concurrent verify).
			if sub.PaymentDetails.Status == models.PaymentStatusPaid || pc.isPaid(ctx, req.OrderID) {
				return c.JSON(http.StatusOK, models.Response{
					Status:  http.StatusOK,
					Message: "Payment already confirmed",
				})
			}
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Subscription is not awaiting payment",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to confirm payment",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment confirmed; membership active",
		Data:    activated,
	})
}

// HandleWebhook processes gateway events. Only payment.captured mutates
// state; every other event is acknowledged so the gateway stops retrying.
func (pc *PaymentController) HandleWebhook(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to read request body",
		})
	}

	signature := c.Request().Header.Get("x-razorpay-signature")
	if !pc.razorpay.VerifyWebhookSignature(body, signature) {
		pc.logger.Printf("Webhook signature verification failed")
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid webhook signature",
		})
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid webhook payload",
		})
	}

	if event.Event != "payment.captured" {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Event ignored",
		})
	}

	payment := event.Payload.Payment.Entity
	if payment.OrderID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Webhook payload missing order ID",
		})
	}

	_, err = pc.activate(ctx, payment.OrderID, payment.ID, "")
	if err != nil {
		if err == mongo.ErrNoDocuments {
			if pc.isPaid(ctx, payment.OrderID) {
				return c.JSON(http.StatusOK, models.Response{
					Status:  http.StatusOK,
					Message: "Payment already processed",
				})
			}
			pc.logger.Printf("Webhook for unknown or non-payable order %s", payment.OrderID)
			return c.JSON(http.StatusOK, models.Response{
				Status:  http.StatusOK,
				Message: "No payable subscription for this order",
			})
		}
		pc.logger.Printf("Webhook activation failed for order %s: %v", payment.OrderID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process payment",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment processed",
	})
}

// activate performs the guarded pending->active transition and, on the
// first win, runs every post-payment side effect. A mongo.ErrNoDocuments
// return means another writer got there first.
func (pc *PaymentController) activate(ctx context.Context, orderID, paymentID, signature string) (*models.Subscription, error) {
	sub, err := pc.subRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var plan models.Plan
	err = config.GetCollection(pc.DB, "plans").FindOne(ctx, bson.M{"_id": sub.PlanID}).Decode(&plan)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := pc.subRepo.Activate(ctx, orderID, paymentID, signature, plan.DurationDays, now)
	if err != nil {
		return nil, err
	}

	pc.afterActivation(ctx, updated, &plan)
	return updated, nil
}

// afterActivation applies the denormalized pointer, supersedes the renewed
// record, generates the QR pass and fans out notifications. All best-effort:
// the subscription is already active, failures here are logged only.
func (pc *PaymentController) afterActivation(ctx context.Context, sub *models.Subscription, plan *models.Plan) {
	if err := pc.userRepo.SetCurrentSubscription(ctx, sub.UserID, &models.CurrentSubscription{
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		Status:         models.SubscriptionStatusActive,
		ExpiryDate:     sub.EndDate,
	}); err != nil {
		pc.logger.Printf("Failed to set membership pointer for %s: %v", sub.UserID.Hex(), err)
	}

	renewal := sub.PreviousSubscriptionID != nil
	if renewal {
		if _, err := pc.subRepo.Cancel(ctx, *sub.PreviousSubscriptionID, time.Now()); err != nil && err != mongo.ErrNoDocuments {
			pc.logger.Printf("Failed to supersede subscription %s: %v", sub.PreviousSubscriptionID.Hex(), err)
		}
	}

	if qr, err := utils.GenerateMembershipQR(sub.UserID.Hex(), sub.ID.Hex()); err != nil {
		pc.logger.Printf("Failed to generate membership QR for %s: %v", sub.UserID.Hex(), err)
	} else if err := pc.userRepo.SetMembershipQR(ctx, sub.UserID, qr); err != nil {
		pc.logger.Printf("Failed to store membership QR for %s: %v", sub.UserID.Hex(), err)
	}

	user, err := pc.userRepo.FindByID(ctx, sub.UserID)
	if err != nil {
		pc.logger.Printf("Failed to load user %s for confirmation: %v", sub.UserID.Hex(), err)
		return
	}

	subject, body := utils.ConfirmationEmailBody(user.FullName, plan.Name, sub.EndDate, renewal)
	utils.SendEmailAsync(user.Email, subject, body)
	utils.NotifyUser(pc.DB, user.ID, subject, body, "payment_confirmed", bson.M{"subscriptionId": sub.ID.Hex()})

	for _, adminEmail := range utils.AdminEmails(ctx, pc.DB) {
		utils.SendEmailAsync(adminEmail, "Membership payment received",
			"Member "+user.FullName+" ("+user.Email+") paid for plan "+plan.Name+".")
	}

	if pc.hub != nil {
		pc.hub.NotifyPaymentReceived(bson.M{
			"subscriptionId": sub.ID.Hex(),
			"userId":         user.ID.Hex(),
			"email":          user.Email,
			"plan":           plan.Name,
			"amount":         sub.Amount,
			"renewal":        renewal,
		})
		if renewal {
			pc.hub.NotifyMembershipRenewed(user.ID, bson.M{"subscriptionId": sub.ID.Hex()})
		}
	}
}

func (pc *PaymentController) isPaid(ctx context.Context, orderID string) bool {
	sub, err := pc.subRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return false
	}
	return sub.PaymentDetails.Status == models.PaymentStatusPaid
}
