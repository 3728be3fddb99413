package disputeRepo

import (
	"context"
	"fmt"
	"time"

	"fixerhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoDisputeRepo) List(ctx context.Context, f models.DisputeFilter) ([]models.Dispute, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Party != "" {
		filter["$or"] = bson.A{
			bson.M{"serviceSeeker": f.Party},
			bson.M{"serviceProvider": f.Party},
			bson.M{"reportedBy": f.Party},
		}
	}
	if f.Assigned != "" {
		filter["assignedAdmin"] = f.Assigned
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit).SetSkip(f.Skip)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes: %w", err)
	}
	defer cursor.Close(ctx)

	disputes := []models.Dispute{}
	if err := cursor.All(ctx, &disputes); err != nil {
		return nil, fmt.Errorf("failed to decode disputes: %w", err)
	}
	return disputes, nil
}

func (r *MongoDisputeRepo) CountByStatus(ctx context.Context) (map[models.DisputeStatus]int64, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count disputes: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.DisputeStatus `bson:"_id"`
		Count  int64                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode dispute counts: %w", err)
	}
	counts := make(map[models.DisputeStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
