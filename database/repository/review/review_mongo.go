package reviewRepo

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

const CollectionName = "reviews"

type MongoReviewRepo struct {
	coll *mongo.Collection
}

func NewMongoReviewRepo(db *mongo.Database) ReviewRepository {
	repo := &MongoReviewRepo{coll: db.Collection(CollectionName)}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create review indexes", zap.Error(err))
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func translate(err error, op, id string) error {
	return database.TranslateError(err, op, "review", id)
}

func (r *MongoReviewRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// One review per booking.
		{Keys: bson.D{{Key: "booking", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "serviceProvider", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) Create(ctx context.Context, review *models.Review) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		return translate(err, "create", review.Booking)
	}
	return nil
}

func (r *MongoReviewRepo) findOne(ctx context.Context, filter bson.M, key string) (*models.Review, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var review models.Review
	if err := r.coll.FindOne(ctx, filter).Decode(&review); err != nil {
		return nil, translate(err, "get", key)
	}
	return &review, nil
}

func (r *MongoReviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	return r.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoReviewRepo) GetByBooking(ctx context.Context, bookingID string) (*models.Review, error) {
	return r.findOne(ctx, bson.M{"booking": bookingID}, bookingID)
}

func (r *MongoReviewRepo) ListByProvider(ctx context.Context, providerID string, limit, skip int64) ([]models.Review, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit).SetSkip(skip)
	cursor, err := r.coll.Find(ctx, bson.M{"serviceProvider": providerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

func (r *MongoReviewRepo) SetProviderResponse(ctx context.Context, id string, response models.ProviderResponse) (*models.Review, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "providerResponse": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"providerResponse": response, "updatedAt": response.RespondedAt}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review models.Review
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&review)
	if err == mongo.ErrNoDocuments {
		n, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
		if countErr != nil {
			return nil, translate(countErr, "count", id)
		}
		if n == 0 {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, apperrors.Conflict("review already has a provider response")
	}
	if err != nil {
		return nil, translate(err, "respond", id)
	}
	return &review, nil
}

func (r *MongoReviewRepo) RatingSummary(ctx context.Context, providerID string) (models.RatingSummary, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	pipeline := bson.A{
		bson.M{"$match": bson.M{"serviceProvider": providerID}},
		bson.M{"$group": bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$overallRating"},
			"count":   bson.M{"$sum": 1},
		}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var summary models.RatingSummary
	if cursor.Next(ctx) {
		if err := cursor.Decode(&summary); err != nil {
			return models.RatingSummary{}, fmt.Errorf("failed to decode rating summary: %w", err)
		}
	}
	return summary, cursor.Err()
}
