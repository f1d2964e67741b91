package repositories

import (
	"context"
	"time"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SubscriptionRepository centralizes the ledger's state transitions. Every
// mutation that advances a subscription's status is a conditional update
// guarded by the source status, so racing writers (client verify vs webhook,
// overlapping sweep runs) resolve to first-writer-wins with no-op losers.
type SubscriptionRepository struct {
	collection *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Client) *SubscriptionRepository {
	return &SubscriptionRepository{
		collection: config.GetCollection(db, "subscriptions"),
	}
}

func (r *SubscriptionRepository) Insert(ctx context.Context, sub *models.Subscription) error {
	_, err := r.collection.InsertOne(ctx, sub)
	return err
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.collection.FindOne(ctx, bson.M{"paymentDetails.orderId": orderID}).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// HasActiveSubscription reports whether the user already holds an active
// membership. Grace-period memberships count: a renewal is the supported
// path out of grace, a second fresh purchase is not.
func (r *SubscriptionRepository) HasActiveSubscription(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"userId": userID,
		"status": models.SubscriptionStatusActive,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestByUser returns the most recently created subscription for a user.
func (r *SubscriptionRepository) LatestByUser(ctx context.Context, userID primitive.ObjectID) (*models.Subscription, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var sub models.Subscription
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// CurrentByUser returns the subscription backing the user's access right
// now: active first, else grace_period.
func (r *SubscriptionRepository) CurrentByUser(ctx context.Context, userID primitive.ObjectID) (*models.Subscription, error) {
	for _, status := range []string{models.SubscriptionStatusActive, models.SubscriptionStatusGracePeriod} {
		opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		var sub models.Subscription
		err := r.collection.FindOne(ctx, bson.M{"userId": userID, "status": status}, opts).Decode(&sub)
		if err == nil {
			return &sub, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}
	}
	return nil, mongo.ErrNoDocuments
}

// Activate promotes a pending subscription to active in one conditional
// update keyed by the gateway order id. The filter only matches a record
// still awaiting payment, so whichever of the client-verify and webhook
// paths runs second gets no document back and treats the call as a no-op.
func (r *SubscriptionRepository) Activate(ctx context.Context, orderID, paymentID, signature string, durationDays int, now time.Time) (*models.Subscription, error) {
	endDate := now.AddDate(0, 0, durationDays)
	paidAt := now

	filter := bson.M{
		"paymentDetails.orderId": orderID,
		"status":                 models.SubscriptionStatusPending,
		"paymentDetails.status":  models.PaymentStatusCreated,
	}
	update := bson.M{
		"$set": bson.M{
			"status":                   models.SubscriptionStatusActive,
			"startDate":                now,
			"endDate":                  endDate,
			"paymentDetails.paymentId": paymentID,
			"paymentDetails.signature": signature,
			"paymentDetails.status":    models.PaymentStatusPaid,
			"paymentDetails.paidAt":    paidAt,
			"updatedAt":                now,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var sub models.Subscription
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Cancel moves a subscription to cancelled, but only from a status that
// permits cancellation.
func (r *SubscriptionRepository) Cancel(ctx context.Context, id primitive.ObjectID, now time.Time) (*models.Subscription, error) {
	filter := bson.M{
		"_id": id,
		"status": bson.M{"$in": []string{
			models.SubscriptionStatusPending,
			models.SubscriptionStatusActive,
			models.SubscriptionStatusGracePeriod,
			models.SubscriptionStatusExpired,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"status":      models.SubscriptionStatusCancelled,
			"cancelledAt": now,
			"updatedAt":   now,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var sub models.Subscription
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindRemindersDue selects active subscriptions whose endDate falls inside
// [windowStart, windowEnd) and whose reminder flag for the tier is unset.
func (r *SubscriptionRepository) FindRemindersDue(ctx context.Context, windowStart, windowEnd time.Time, flagField string) ([]models.Subscription, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"status":                     models.SubscriptionStatusActive,
		"endDate":                    bson.M{"$gte": windowStart, "$lt": windowEnd},
		"remindersSent." + flagField: false,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// SetReminderFlag marks a tier as sent so reruns of the sweep skip it.
func (r *SubscriptionRepository) SetReminderFlag(ctx context.Context, id primitive.ObjectID, flagField string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"remindersSent." + flagField: true,
			"updatedAt":                  time.Now(),
		},
	})
	return err
}

// FindExpiredActive selects active subscriptions whose endDate has passed.
func (r *SubscriptionRepository) FindExpiredActive(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"status":  models.SubscriptionStatusActive,
		"endDate": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// EnterGracePeriod transitions active -> grace_period. The grace window is
// anchored at the processing moment, not at the original endDate.
func (r *SubscriptionRepository) EnterGracePeriod(ctx context.Context, id primitive.ObjectID, now time.Time) (*models.Subscription, error) {
	gracePeriodEnd := now.Add(models.GracePeriodDuration)

	filter := bson.M{"_id": id, "status": models.SubscriptionStatusActive}
	update := bson.M{
		"$set": bson.M{
			"status":         models.SubscriptionStatusGracePeriod,
			"gracePeriodEnd": gracePeriodEnd,
			"updatedAt":      now,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var sub models.Subscription
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindGraceEnded selects grace_period subscriptions past their gracePeriodEnd.
func (r *SubscriptionRepository) FindGraceEnded(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"status":         models.SubscriptionStatusGracePeriod,
		"gracePeriodEnd": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Expire transitions grace_period -> expired.
func (r *SubscriptionRepository) Expire(ctx context.Context, id primitive.ObjectID, now time.Time) (*models.Subscription, error) {
	filter := bson.M{"_id": id, "status": models.SubscriptionStatusGracePeriod}
	update := bson.M{
		"$set": bson.M{
			"status":    models.SubscriptionStatusExpired,
			"updatedAt": now,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var sub models.Subscription
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// CountByPlan reports how many subscriptions in blocking statuses reference
// a plan; used to protect the catalog from deleting referenced plans.
func (r *SubscriptionRepository) CountByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"planId": planID,
		"status": bson.M{"$in": []string{
			models.SubscriptionStatusPending,
			models.SubscriptionStatusActive,
			models.SubscriptionStatusGracePeriod,
		}},
	})
}

// FindAll lists the ledger for the admin panel, newest first.
func (r *SubscriptionRepository) FindAll(ctx context.Context, statusFilter string) ([]models.Subscription, error) {
	filter := bson.M{}
	if statusFilter != "" {
		filter["status"] = statusFilter
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
