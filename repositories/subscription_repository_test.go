package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/fitflow/gymfit_backend/models"
)

func activatedSubscriptionDoc(id, userID, planID primitive.ObjectID, orderID string, now time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "userId", Value: userID},
		{Key: "planId", Value: planID},
		{Key: "amount", Value: 999.0},
		{Key: "status", Value: models.SubscriptionStatusActive},
		{Key: "startDate", Value: primitive.NewDateTimeFromTime(now)},
		{Key: "endDate", Value: primitive.NewDateTimeFromTime(now.AddDate(0, 0, 30))},
		{Key: "paymentDetails", Value: bson.D{
			{Key: "orderId", Value: orderID},
			{Key: "paymentId", Value: "pay_123"},
			{Key: "signature", Value: "sig"},
			{Key: "amountInPaise", Value: int64(99900)},
			{Key: "status", Value: models.PaymentStatusPaid},
			{Key: "paidAt", Value: primitive.NewDateTimeFromTime(now)},
		}},
		{Key: "createdAt", Value: primitive.NewDateTimeFromTime(now)},
		{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(now)},
	}
}

func TestActivateConditionalUpdate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("first confirmation wins and keys on a payable record", func(mt *mtest.T) {
		repo := &SubscriptionRepository{collection: mt.Coll}
		now := time.Now().UTC().Truncate(time.Millisecond)
		id, userID, planID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: activatedSubscriptionDoc(id, userID, planID, "order_123", now)},
		))

		sub, err := repo.Activate(context.Background(), "order_123", "pay_123", "sig", 30, now)
		require.NoError(mt, err)
		assert.Equal(mt, models.SubscriptionStatusActive, sub.Status)
		assert.Equal(mt, models.PaymentStatusPaid, sub.PaymentDetails.Status)
		assert.Equal(mt, "pay_123", sub.PaymentDetails.PaymentID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)

		query := started.Command.Lookup("query").Document()
		assert.Equal(mt, "order_123", query.Lookup("paymentDetails.orderId").StringValue())
		assert.Equal(mt, models.SubscriptionStatusPending, query.Lookup("status").StringValue())
		assert.Equal(mt, models.PaymentStatusCreated, query.Lookup("paymentDetails.status").StringValue())
	})

	mt.Run("losing confirmation gets no document back", func(mt *mtest.T) {
		repo := &SubscriptionRepository{collection: mt.Coll}

		// The filter matched nothing: the record was already paid.
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Activate(context.Background(), "order_123", "pay_456", "sig2", 30, time.Now())
		assert.ErrorIs(mt, err, mongo.ErrNoDocuments)
	})
}

func TestEnterGracePeriodRerunIsNoOp(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("transition is guarded by the active status", func(mt *mtest.T) {
		repo := &SubscriptionRepository{collection: mt.Coll}

		// A rerun of the sweep sees the record already in grace_period.
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.EnterGracePeriod(context.Background(), primitive.NewObjectID(), time.Now())
		assert.ErrorIs(mt, err, mongo.ErrNoDocuments)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		query := started.Command.Lookup("query").Document()
		assert.Equal(mt, models.SubscriptionStatusActive, query.Lookup("status").StringValue())
	})
}

func TestFindRemindersDueSkipsFlaggedRecords(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reselection excludes already-sent tiers", func(mt *mtest.T) {
		repo := &SubscriptionRepository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		windowStart := time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC)
		subs, err := repo.FindRemindersDue(context.Background(), windowStart, windowStart.AddDate(0, 0, 1), "sevenDay")
		require.NoError(mt, err)
		assert.Empty(mt, subs)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)

		filter := started.Command.Lookup("filter").Document()
		assert.Equal(mt, models.SubscriptionStatusActive, filter.Lookup("status").StringValue())

		// A second run must not reselect a record whose flag is set.
		flag, err := filter.LookupErr("remindersSent.sevenDay")
		require.NoError(mt, err)
		assert.False(mt, flag.Boolean())
	})
}
