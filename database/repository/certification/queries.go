package certificationRepo

import (
	"context"
	"fmt"
	"time"

	"fixerhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoCertificationRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Certification, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list certifications: %w", err)
	}
	defer cursor.Close(ctx)

	certs := []models.Certification{}
	if err := cursor.All(ctx, &certs); err != nil {
		return nil, fmt.Errorf("failed to decode certifications: %w", err)
	}
	return certs, nil
}

func (r *MongoCertificationRepo) ListByProvider(ctx context.Context, providerID string, status models.CertificationStatus) ([]models.Certification, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"serviceProvider": providerID}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "issueDate", Value: -1}}))
}

func (r *MongoCertificationRepo) ListByStatus(ctx context.Context, status models.CertificationStatus, limit, skip int64) ([]models.Certification, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit).SetSkip(skip)
	return r.find(ctx, bson.M{"status": status}, opts)
}

func (r *MongoCertificationRepo) ProviderScores(ctx context.Context) ([]models.ProviderScore, error) {
	ctx, cancel := newContext(ctx, 60*time.Second)
	defer cancel()
	return r.aggregateScores(ctx, bson.M{})
}

func (r *MongoCertificationRepo) ProviderScore(ctx context.Context, providerID string) (models.ProviderScore, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	scores, err := r.aggregateScores(ctx, bson.M{"serviceProvider": providerID})
	if err != nil {
		return models.ProviderScore{}, err
	}
	if len(scores) == 0 {
		return models.ProviderScore{ProviderID: providerID}, nil
	}
	return scores[0], nil
}

func (r *MongoCertificationRepo) aggregateScores(ctx context.Context, match bson.M) ([]models.ProviderScore, error) {
	approved := bson.M{"$eq": bson.A{"$status", models.CertificationApproved}}
	pipeline := bson.A{
		bson.M{"$match": match},
		bson.M{"$group": bson.M{
			"_id":      "$serviceProvider",
			"total":    bson.M{"$sum": 1},
			"verified": bson.M{"$sum": bson.M{"$cond": bson.A{approved, 1, 0}}},
			"points":   bson.M{"$sum": bson.M{"$cond": bson.A{approved, "$points", 0}}},
		}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate provider scores: %w", err)
	}
	defer cursor.Close(ctx)

	scores := []models.ProviderScore{}
	if err := cursor.All(ctx, &scores); err != nil {
		return nil, fmt.Errorf("failed to decode provider scores: %w", err)
	}
	return scores, nil
}

func (r *MongoCertificationRepo) CountByStatus(ctx context.Context) (map[models.CertificationStatus]int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count certifications: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.CertificationStatus `bson:"_id"`
		Count  int64                      `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode certification counts: %w", err)
	}
	counts := make(map[models.CertificationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
