// services/subscription_sweeper.go
package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/models"
	"github.com/fitflow/gymfit_backend/repositories"
	"github.com/fitflow/gymfit_backend/utils"
	"github.com/fitflow/gymfit_backend/websocket"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// reminderTiers maps each pre-expiry reminder to its flag field and the
// number of whole days before endDate at which it fires.
var reminderTiers = []struct {
	Tier      utils.ReminderTier
	FlagField string
	Days      int
}{
	{utils.ReminderSevenDay, "sevenDay", 7},
	{utils.ReminderThreeDay, "threeDay", 3},
	{utils.ReminderOneDay, "oneDay", 1},
}

// SweepResult summarizes one sweep run for logging and the admin trigger
// endpoint.
type SweepResult struct {
	RemindersSent int `json:"remindersSent"`
	EnteredGrace  int `json:"enteredGrace"`
	Terminated    int `json:"terminated"`
}

// SubscriptionSweeper runs the daily lifecycle pass over the subscription
// ledger: tiered reminders, expiry into the grace window, and termination
// after the grace window. Every pass is flag-gated or status-guarded, so
// overlapping or repeated runs never double-send or double-transition.
type SubscriptionSweeper struct {
	db       *mongo.Client
	subRepo  *repositories.SubscriptionRepository
	userRepo *repositories.UserRepository
	hub      *websocket.Hub
	cron     *cron.Cron
}

func NewSubscriptionSweeper(db *mongo.Client, hub *websocket.Hub) *SubscriptionSweeper {
	return &SubscriptionSweeper{
		db:       db,
		subRepo:  repositories.NewSubscriptionRepository(db),
		userRepo: repositories.NewUserRepository(db),
		hub:      hub,
		cron:     cron.New(cron.WithLocation(time.UTC)),
	}
}

// Start schedules the daily sweep and launches the scheduler. The schedule
// defaults to 09:00 UTC and can be overridden with SWEEP_SCHEDULE.
func (s *SubscriptionSweeper) Start() error {
	schedule := os.Getenv("SWEEP_SCHEDULE")
	if schedule == "" {
		schedule = "0 9 * * *"
	}
	_, err := s.cron.AddFunc(schedule, func() {
		result, err := s.RunOnce(context.Background())
		if err != nil {
			log.Printf("Subscription sweep failed: %v", err)
			return
		}
		log.Printf("Subscription sweep done: %d reminders, %d entered grace, %d terminated",
			result.RemindersSent, result.EnteredGrace, result.Terminated)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule subscription sweep: %w", err)
	}
	s.cron.Start()
	log.Printf("Subscription sweeper scheduled (%s)", schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *SubscriptionSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce executes the full sweep immediately. The admin trigger endpoint
// calls this directly; the cron schedule calls it once a day. Per-record
// failures are logged and skipped so one bad document cannot stall the rest
// of the sweep.
func (s *SubscriptionSweeper) RunOnce(ctx context.Context) (*SweepResult, error) {
	now := time.Now().UTC()
	result := &SweepResult{}

	sent, err := s.sendReminders(ctx, now)
	if err != nil {
		return result, err
	}
	result.RemindersSent = sent

	graced, err := s.expireIntoGrace(ctx, now)
	if err != nil {
		return result, err
	}
	result.EnteredGrace = graced

	terminated, err := s.terminateGraceEnded(ctx, now)
	if err != nil {
		return result, err
	}
	result.Terminated = terminated

	return result, nil
}

// sendReminders handles the 7-day, 3-day and 1-day tiers. A subscription
// qualifies for a tier when its endDate falls on the UTC calendar day that
// many days ahead and the tier's flag is still unset.
func (s *SubscriptionSweeper) sendReminders(ctx context.Context, now time.Time) (int, error) {
	today := startOfDayUTC(now)
	sent := 0

	for _, tier := range reminderTiers {
		windowStart := today.AddDate(0, 0, tier.Days)
		windowEnd := windowStart.AddDate(0, 0, 1)

		due, err := s.subRepo.FindRemindersDue(ctx, windowStart, windowEnd, tier.FlagField)
		if err != nil {
			return sent, fmt.Errorf("failed to query %s reminders: %w", tier.FlagField, err)
		}

		for i := range due {
			sub := &due[i]
			user, plan, err := s.loadUserAndPlan(ctx, sub)
			if err != nil {
				log.Printf("Reminder skip for subscription %s: %v", sub.ID.Hex(), err)
				continue
			}

			subject, body := utils.ReminderEmailBody(user.FullName, plan.Name, sub.EndDate, tier.Tier)
			if err := utils.SendEmail(user.Email, subject, body); err != nil {
				// Flag stays unset so the next run retries this tier.
				log.Printf("Reminder email to %s failed: %v", user.Email, err)
				continue
			}
			if err := s.subRepo.SetReminderFlag(ctx, sub.ID, tier.FlagField); err != nil {
				log.Printf("Failed to set %s flag on %s: %v", tier.FlagField, sub.ID.Hex(), err)
				continue
			}
			utils.NotifyUser(s.db, user.ID, subject, body, "reminder", bson.M{"subscriptionId": sub.ID.Hex()})
			sent++
		}
	}
	return sent, nil
}

// expireIntoGrace moves every overdue active subscription into the grace
// window, anchored at the processing moment, and notifies the member. The
// admin notification is gated by its own flag so a rerun that finds the
// record already in grace sends nothing.
func (s *SubscriptionSweeper) expireIntoGrace(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.subRepo.FindExpiredActive(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to query overdue subscriptions: %w", err)
	}

	graced := 0
	for i := range overdue {
		sub := &overdue[i]
		updated, err := s.subRepo.EnterGracePeriod(ctx, sub.ID, now)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				// Another run already transitioned it.
				continue
			}
			log.Printf("Failed to move %s into grace: %v", sub.ID.Hex(), err)
			continue
		}
		graced++

		user, plan, err := s.loadUserAndPlan(ctx, updated)
		if err != nil {
			log.Printf("Grace notify skip for %s: %v", updated.ID.Hex(), err)
			continue
		}

		if err := s.userRepo.SetCurrentSubscription(ctx, user.ID, &models.CurrentSubscription{
			SubscriptionID: updated.ID,
			PlanID:         updated.PlanID,
			Status:         models.SubscriptionStatusGracePeriod,
			ExpiryDate:     updated.EndDate,
		}); err != nil {
			log.Printf("Failed to update pointer for %s: %v", user.ID.Hex(), err)
		}

		if !updated.RemindersSent.ExpiryDay && updated.GracePeriodEnd != nil {
			subject, body := utils.GracePeriodEmailBody(user.FullName, plan.Name, *updated.GracePeriodEnd)
			if err := utils.SendEmail(user.Email, subject, body); err != nil {
				log.Printf("Grace email to %s failed: %v", user.Email, err)
			} else if err := s.subRepo.SetReminderFlag(ctx, updated.ID, "expiryDay"); err != nil {
				log.Printf("Failed to set expiryDay flag on %s: %v", updated.ID.Hex(), err)
			}
			utils.NotifyUser(s.db, user.ID, subject, body, "grace_period", bson.M{"subscriptionId": updated.ID.Hex()})
		}

		if !updated.RemindersSent.AdminExpiry {
			s.notifyAdminsOfExpiry(ctx, updated, user, plan)
			if err := s.subRepo.SetReminderFlag(ctx, updated.ID, "adminExpiry"); err != nil {
				log.Printf("Failed to set adminExpiry flag on %s: %v", updated.ID.Hex(), err)
			}
		}
	}
	return graced, nil
}

// terminateGraceEnded finalizes subscriptions whose grace window has elapsed
// and clears the member's access pointer.
func (s *SubscriptionSweeper) terminateGraceEnded(ctx context.Context, now time.Time) (int, error) {
	ended, err := s.subRepo.FindGraceEnded(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to query ended grace periods: %w", err)
	}

	terminated := 0
	for i := range ended {
		sub := &ended[i]
		updated, err := s.subRepo.Expire(ctx, sub.ID, now)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				continue
			}
			log.Printf("Failed to terminate %s: %v", sub.ID.Hex(), err)
			continue
		}
		terminated++

		if err := s.userRepo.ClearCurrentSubscription(ctx, updated.UserID, updated.ID); err != nil {
			log.Printf("Failed to clear pointer for %s: %v", updated.UserID.Hex(), err)
		}

		user, plan, err := s.loadUserAndPlan(ctx, updated)
		if err != nil {
			log.Printf("Termination notify skip for %s: %v", updated.ID.Hex(), err)
			continue
		}

		if !updated.RemindersSent.GracePeriod {
			subject, body := utils.TerminationEmailBody(user.FullName, plan.Name)
			if err := utils.SendEmail(user.Email, subject, body); err != nil {
				log.Printf("Termination email to %s failed: %v", user.Email, err)
			} else if err := s.subRepo.SetReminderFlag(ctx, updated.ID, "gracePeriod"); err != nil {
				log.Printf("Failed to set gracePeriod flag on %s: %v", updated.ID.Hex(), err)
			}
			utils.NotifyUser(s.db, user.ID, subject, body, "membership_ended", bson.M{"subscriptionId": updated.ID.Hex()})
		}

		if s.hub != nil {
			s.hub.NotifyMembershipExpired(bson.M{
				"subscriptionId": updated.ID.Hex(),
				"userId":         user.ID.Hex(),
				"email":          user.Email,
				"plan":           plan.Name,
			})
		}
	}
	return terminated, nil
}

func (s *SubscriptionSweeper) notifyAdminsOfExpiry(ctx context.Context, sub *models.Subscription, user *models.User, plan *models.Plan) {
	if s.hub != nil {
		s.hub.NotifyMembershipExpired(bson.M{
			"subscriptionId": sub.ID.Hex(),
			"userId":         user.ID.Hex(),
			"email":          user.Email,
			"plan":           plan.Name,
			"graceUntil":     sub.GracePeriodEnd,
		})
	}

	emails := utils.AdminEmails(ctx, s.db)
	if len(emails) == 0 {
		return
	}
	subject := fmt.Sprintf("Membership expired: %s", user.Email)
	body := fmt.Sprintf("Member %s (%s) on plan %q has expired and entered the grace period.\nSubscription: %s",
		user.FullName, user.Email, plan.Name, sub.ID.Hex())
	// One message per admin: a joined recipient list is not a valid
	// address and the whole send would be dropped.
	for _, adminEmail := range emails {
		utils.SendEmailAsync(adminEmail, subject, body)
	}
}

func (s *SubscriptionSweeper) loadUserAndPlan(ctx context.Context, sub *models.Subscription) (*models.User, *models.Plan, error) {
	user, err := s.userRepo.FindByID(ctx, sub.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("user %s: %w", sub.UserID.Hex(), err)
	}

	var plan models.Plan
	err = config.GetCollection(s.db, "plans").FindOne(ctx, bson.M{"_id": sub.PlanID}).Decode(&plan)
	if err != nil {
		return nil, nil, fmt.Errorf("plan %s: %w", sub.PlanID.Hex(), err)
	}
	return user, &plan, nil
}

// ReminderWindow returns the UTC day window a tier scans on a given day.
// Exposed for the sweep's date arithmetic tests.
func ReminderWindow(now time.Time, daysAhead int) (time.Time, time.Time) {
	start := startOfDayUTC(now).AddDate(0, 0, daysAhead)
	return start, start.AddDate(0, 0, 1)
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
