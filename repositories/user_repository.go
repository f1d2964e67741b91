package repositories

import (
	"context"
	"time"

	"github.com/fitflow/gymfit_backend/config"
	"github.com/fitflow/gymfit_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository owns the users collection, including the denormalized
// currentSubscription pointer that mirrors the subscription ledger.
type UserRepository struct {
	collection       *mongo.Collection
	subscriptionRepo *SubscriptionRepository
}

func NewUserRepository(db *mongo.Client) *UserRepository {
	return &UserRepository{
		collection:       config.GetCollection(db, "users"),
		subscriptionRepo: NewSubscriptionRepository(db),
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetCurrentSubscription writes the denormalized pointer on payment
// confirmation and on sweep transitions.
func (r *UserRepository) SetCurrentSubscription(ctx context.Context, userID primitive.ObjectID, current *models.CurrentSubscription) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{
			"currentSubscription": current,
			"updatedAt":           time.Now(),
		},
	})
	return err
}

// ClearCurrentSubscription drops the pointer when the membership it
// references terminates. The guard on subscriptionId keeps a stale sweep
// from clobbering a pointer that a renewal already replaced.
func (r *UserRepository) ClearCurrentSubscription(ctx context.Context, userID, subscriptionID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{
		"_id":                                bson.M{"$eq": userID},
		"currentSubscription.subscriptionId": subscriptionID,
	}, bson.M{
		"$set": bson.M{
			"currentSubscription": nil,
			"updatedAt":           time.Now(),
		},
	})
	return err
}

func (r *UserRepository) SetMembershipQR(ctx context.Context, userID primitive.ObjectID, qr string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{
			"membershipQR": qr,
			"updatedAt":    time.Now(),
		},
	})
	return err
}

// Reconcile recomputes one user's pointer from the subscription ledger.
// The ledger is the source of truth: the pointer is set to the latest
// active subscription, else the latest grace_period one, else cleared.
// Returns true when the stored pointer had drifted and was rewritten.
func (r *UserRepository) Reconcile(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}

	var want *models.CurrentSubscription
	sub, err := r.subscriptionRepo.CurrentByUser(ctx, userID)
	if err == nil {
		want = &models.CurrentSubscription{
			SubscriptionID: sub.ID,
			PlanID:         sub.PlanID,
			Status:         sub.Status,
			ExpiryDate:     sub.EndDate,
		}
	} else if err != mongo.ErrNoDocuments {
		return false, err
	}

	if pointersEqual(user.CurrentSubscription, want) {
		return false, nil
	}
	if err := r.SetCurrentSubscription(ctx, userID, want); err != nil {
		return false, err
	}
	return true, nil
}

// ReconcileAll runs Reconcile over every member account and returns the
// number of repaired pointers.
func (r *UserRepository) ReconcileAll(ctx context.Context) (int, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userType": models.UserTypeUser})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	repaired := 0
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return repaired, err
		}
		changed, err := r.Reconcile(ctx, user.ID)
		if err != nil {
			return repaired, err
		}
		if changed {
			repaired++
		}
	}
	return repaired, cursor.Err()
}

func pointersEqual(a, b *models.CurrentSubscription) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.SubscriptionID == b.SubscriptionID &&
		a.PlanID == b.PlanID &&
		a.Status == b.Status &&
		a.ExpiryDate.Equal(b.ExpiryDate)
}
