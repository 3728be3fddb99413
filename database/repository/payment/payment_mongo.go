package paymentRepo

import (
	"context"
	"fmt"
	"time"

	"fixerhub/apperrors"
	"fixerhub/database"
	"fixerhub/models"
	"fixerhub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const CollectionName = "payments"

type MongoPaymentRepo struct {
	coll *mongo.Collection
}

func NewMongoPaymentRepo(db *mongo.Database) PaymentRepository {
	repo := &MongoPaymentRepo{coll: db.Collection(CollectionName)}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create payment indexes", zap.Error(err))
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func translate(err error, op, id string) error {
	return database.TranslateError(err, op, "payment", id)
}

func (r *MongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "stripePaymentIntentId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, payment); err != nil {
		return translate(err, "create", payment.ID)
	}
	return nil
}

func (r *MongoPaymentRepo) findOne(ctx context.Context, filter bson.M, key string, opts ...*options.FindOneOptions) (*models.Payment, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var payment models.Payment
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&payment); err != nil {
		return nil, translate(err, "get", key)
	}
	return &payment, nil
}

func (r *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoPaymentRepo) GetByStripeIntent(ctx context.Context, intentID string) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"stripePaymentIntentId": intentID}, intentID)
}

func (r *MongoPaymentRepo) FindOpenByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	filter := bson.M{"booking": bookingID, "status": bson.M{"$in": bson.A{
		models.PaymentStateCreated,
		models.PaymentStatePendingCustomerAction,
		models.PaymentStatePendingProviderConfirmation,
	}}}
	latest := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findOne(ctx, filter, bookingID, latest)
}

func (r *MongoPaymentRepo) FindConfirmedByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	filter := bson.M{"booking": bookingID, "status": models.PaymentStateConfirmed}
	latest := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findOne(ctx, filter, bookingID, latest)
}

func (r *MongoPaymentRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"booking": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

func (r *MongoPaymentRepo) Transition(ctx context.Context, id string, to models.PaymentState, change PaymentChange) (*models.Payment, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	set := bson.M{"status": to, "updatedAt": now}
	if to == models.PaymentStateConfirmed {
		set["confirmedAt"] = now
	}
	if change.StripePaymentIntentID != "" {
		set["stripePaymentIntentId"] = change.StripePaymentIntentID
	}
	if change.BankReference != "" {
		set["bankReference"] = change.BankReference
	}
	if change.ReceiptURL != "" {
		set["receiptUrl"] = change.ReceiptURL
	}
	if change.FailureReason != "" {
		set["failureReason"] = change.FailureReason
	}
	if change.Invoice != nil {
		set["invoice"] = change.Invoice
	}
	if change.Refund != nil {
		set["refundDetails"] = change.Refund
	}

	sources := bson.A{}
	for _, s := range models.PaymentSources(to) {
		sources = append(sources, s)
	}
	filter := bson.M{"id": id, "status": bson.M{"$in": sources}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var payment models.Payment
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		n, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
		if countErr != nil {
			return nil, translate(countErr, "count", id)
		}
		if n == 0 {
			return nil, apperrors.NotFound("payment", id)
		}
		return nil, apperrors.Conflict("payment cannot move to %s", to)
	}
	if err != nil {
		return nil, translate(err, "transition", id)
	}
	return &payment, nil
}
