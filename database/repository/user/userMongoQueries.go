package userRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"fixerhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultPageSize = 20

// SearchProviders finds providers by category, location, level and rating, best rated first.
func (r *MongoUserRepo) SearchProviders(ctx context.Context, criteria models.ProviderSearchCriteria) ([]models.User, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"role": models.RoleProvider}
	if criteria.Category != "" {
		filter["serviceCategory"] = bson.M{"$regex": "^" + regexp.QuoteMeta(criteria.Category) + "$", "$options": "i"}
	}
	if criteria.Location != "" {
		filter["location"] = bson.M{"$regex": regexp.QuoteMeta(criteria.Location), "$options": "i"}
	}
	if criteria.MinLevel.Valid() && criteria.MinLevel != models.LevelBronze {
		filter["certificationPoints"] = bson.M{"$gte": criteria.MinLevel.MinPoints()}
	}
	if criteria.MinRating > 0 {
		filter["averageRating"] = bson.M{"$gte": criteria.MinRating}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "averageRating", Value: -1}, {Key: "certificationPoints", Value: -1}}).
		SetLimit(pageSize(criteria.Limit)).
		SetSkip(criteria.Skip).
		SetProjection(bson.M{"passwordHash": 0, "bankDetails": 0, "fcmToken": 0})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search providers: %w", err)
	}
	defer cursor.Close(ctx)

	providers := []models.User{}
	if err := cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}
	return providers, nil
}

func (r *MongoUserRepo) List(ctx context.Context, role models.Role, limit, skip int64) ([]models.User, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(pageSize(limit)).
		SetSkip(skip).
		SetProjection(bson.M{"passwordHash": 0})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepo) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	pipeline := bson.A{
		bson.M{"$group": bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Role  models.Role `bson:"_id"`
		Count int64       `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode user counts: %w", err)
	}
	counts := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

func (r *MongoUserRepo) ListProviderIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := newContext(ctx, 30*time.Second)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"id": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"role": models.RoleProvider}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode provider id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func pageSize(limit int64) int64 {
	if limit <= 0 || limit > 100 {
		return defaultPageSize
	}
	return limit
}
