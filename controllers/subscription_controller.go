package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/models"
	"github.com/fitflow/gymfit_backend/repositories"
	"github.com/fitflow/gymfit_backend/services"
	"github.com/fitflow/gymfit_backend/utils"
)

// SubscriptionController serves membership state to members and the admin
// panel, plus cancellation, reconciliation and the manual sweep trigger.
type SubscriptionController struct {
	DB       *mongo.Client
	subRepo  *repositories.SubscriptionRepository
	userRepo *repositories.UserRepository
	sweeper  *services.SubscriptionSweeper
	logger   *log.Logger
}

func NewSubscriptionController(db *mongo.Client, sweeper *services.SubscriptionSweeper) *SubscriptionController {
	return &SubscriptionController{
		DB:       db,
		subRepo:  repositories.NewSubscriptionRepository(db),
		userRepo: repositories.NewUserRepository(db),
		sweeper:  sweeper,
		logger:   log.New(os.Stdout, "[SUBSCRIPTION] ", log.LstdFlags),
	}
}

// GetMySubscription returns the caller's current membership. The pointer is
// reconciled against the ledger on the way out, so a drifted cache repairs
// itself on the next profile view.
func (sc *SubscriptionController) GetMySubscription(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	if _, err := sc.userRepo.Reconcile(ctx, userID); err != nil {
		sc.logger.Printf("Pointer reconcile for %s failed: %v", userID.Hex(), err)
	}

	sub, err := sc.subRepo.CurrentByUser(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusOK, models.Response{
				Status:  http.StatusOK,
				Message: "No active membership",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch membership",
		})
	}

	var plan models.Plan
	if err := config.GetCollection(sc.DB, "plans").FindOne(ctx, bson.M{"_id": sub.PlanID}).Decode(&plan); err != nil {
		sc.logger.Printf("Plan lookup for %s failed: %v", sub.PlanID.Hex(), err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Membership retrieved",
		Data: models.SubscriptionHistoryEntry{
			Subscription: *sub,
			Plan:         &plan,
		},
	})
}

// GetMyHistory returns the caller's full subscription ledger, newest first
func (sc *SubscriptionController) GetMyHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	subs, err := sc.subRepo.FindByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch subscription history",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "History retrieved",
		Data:    subs,
	})
}

// CancelMySubscription cancels the caller's current membership
func (sc *SubscriptionController) CancelMySubscription(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	sub, err := sc.subRepo.CurrentByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No membership to cancel",
		})
	}

	return sc.cancel(c, ctx, sub)
}

// AdminCancelSubscription cancels any subscription by id
func (sc *SubscriptionController) AdminCancelSubscription(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid subscription ID",
		})
	}

	sub, err := sc.subRepo.FindByID(ctx, subID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Subscription not found",
		})
	}

	return sc.cancel(c, ctx, sub)
}

func (sc *SubscriptionController) cancel(c echo.Context, ctx context.Context, sub *models.Subscription) error {
	now := time.Now()
	cancelled, err := sc.subRepo.Cancel(ctx, sub.ID, now)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Subscription cannot be cancelled from its current state",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to cancel subscription",
		})
	}

	if err := sc.userRepo.ClearCurrentSubscription(ctx, cancelled.UserID, cancelled.ID); err != nil {
		sc.logger.Printf("Failed to clear pointer for %s: %v", cancelled.UserID.Hex(), err)
	}

	if user, err := sc.userRepo.FindByID(ctx, cancelled.UserID); err == nil {
		utils.SendEmailAsync(user.Email, "Membership cancelled",
			"Hi "+user.FullName+",\n\nYour membership has been cancelled. We'd love to have you back any time.\n\nThe GymFit Team")
		utils.NotifyUser(sc.DB, user.ID, "Membership cancelled", "Your membership has been cancelled.",
			"membership_cancelled", bson.M{"subscriptionId": cancelled.ID.Hex()})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscription cancelled",
		Data:    cancelled,
	})
}

// AdminListSubscriptions lists the ledger, optionally filtered by status
func (sc *SubscriptionController) AdminListSubscriptions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subs, err := sc.subRepo.FindAll(ctx, c.QueryParam("status"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch subscriptions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Subscriptions retrieved",
		Data:    subs,
	})
}

// ReconcileUser recomputes one user's membership pointer from the ledger
func (sc *SubscriptionController) ReconcileUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	changed, err := sc.userRepo.Reconcile(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to reconcile membership pointer",
		})
	}

	message := "Membership pointer already consistent"
	if changed {
		message = "Membership pointer repaired"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    map[string]interface{}{"repaired": changed},
	})
}

// ReconcileAll runs pointer reconciliation over every member account
func (sc *SubscriptionController) ReconcileAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	repaired, err := sc.userRepo.ReconcileAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Reconciliation failed",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Reconciliation complete",
		Data:    map[string]interface{}{"repaired": repaired},
	})
}

// TriggerSweep runs the daily lifecycle sweep immediately
func (sc *SubscriptionController) TriggerSweep(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	result, err := sc.sweeper.RunOnce(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Sweep failed: " + err.Error(),
			Data:    result,
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Sweep complete",
		Data:    result,
	})
}
