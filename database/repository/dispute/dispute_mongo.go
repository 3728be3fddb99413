package disputeRepo

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

const CollectionName = "disputes"

type MongoDisputeRepo struct {
	coll *mongo.Collection
}

func NewMongoDisputeRepo(db *mongo.Database) DisputeRepository {
	repo := &MongoDisputeRepo{coll: db.Collection(CollectionName)}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create dispute indexes", zap.Error(err))
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func translate(err error, op, id string) error {
	return database.TranslateError(err, op, "dispute", id)
}

func (r *MongoDisputeRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "serviceSeeker", Value: 1}}},
		{Keys: bson.D{{Key: "serviceProvider", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoDisputeRepo) Create(ctx context.Context, dispute *models.Dispute) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	dispute.CreatedAt = now
	dispute.UpdatedAt = now
	if dispute.AdminNotes == nil {
		dispute.AdminNotes = []models.AdminNote{}
	}
	if dispute.Messages == nil {
		dispute.Messages = []models.DisputeMessage{}
	}
	if dispute.Evidence == nil {
		dispute.Evidence = []models.Evidence{}
	}
	if _, err := r.coll.InsertOne(ctx, dispute); err != nil {
		return translate(err, "create", dispute.ID)
	}
	return nil
}

func (r *MongoDisputeRepo) GetByID(ctx context.Context, id string) (*models.Dispute, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var dispute models.Dispute
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&dispute); err != nil {
		return nil, translate(err, "get", id)
	}
	return &dispute, nil
}

func (r *MongoDisputeRepo) AddAdminNote(ctx context.Context, id string, note models.AdminNote) (*models.Dispute, error) {
	return r.update(ctx, bson.M{"id": id}, bson.M{
		"$push": bson.M{"adminNotes": note},
		"$set":  bson.M{"updatedAt": note.Timestamp},
	}, id, "")
}

func (r *MongoDisputeRepo) AddMessage(ctx context.Context, id string, msg models.DisputeMessage) (*models.Dispute, error) {
	return r.update(ctx, bson.M{"id": id}, bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"updatedAt": msg.Timestamp},
	}, id, "")
}

func (r *MongoDisputeRepo) AddEvidence(ctx context.Context, id string, evidence models.Evidence) (*models.Dispute, error) {
	return r.update(ctx, bson.M{"id": id}, bson.M{
		"$push": bson.M{"evidence": evidence},
		"$set":  bson.M{"updatedAt": evidence.UploadedAt},
	}, id, "")
}

func (r *MongoDisputeRepo) Assign(ctx context.Context, id, adminID string) (*models.Dispute, error) {
	now := time.Now()
	update := mongo.Pipeline{bson.D{{Key: "$set", Value: bson.D{
		{Key: "assignedAdmin", Value: bson.D{{Key: "$literal", Value: adminID}}},
		{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$status", models.DisputeOpen}}},
			models.DisputeUnderReview,
			"$status",
		}}}},
		{Key: "updatedAt", Value: now},
	}}}}
	return r.update(ctx, notTerminal(id), update, id, "dispute is already %s")
}

func (r *MongoDisputeRepo) UpdateStatus(ctx context.Context, id string, status models.DisputeStatus) (*models.Dispute, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	filter := notTerminal(id)
	if status == models.DisputeClosed {
		// A resolved dispute can still be closed.
		filter = bson.M{"id": id, "status": bson.M{"$ne": models.DisputeClosed}}
	}
	return r.update(ctx, filter, update, id, "dispute is already %s")
}

func (r *MongoDisputeRepo) Resolve(ctx context.Context, id string, res models.Resolution) (*models.Dispute, error) {
	set := bson.M{
		"status":     models.DisputeResolved,
		"resolution": res.Resolution,
		"resolvedAt": res.ResolvedAt,
		"resolvedBy": res.ResolvedBy,
		"updatedAt":  res.ResolvedAt,
	}
	if res.Outcome != nil {
		set["outcome"] = *res.Outcome
		set["outcomeAmount"] = res.OutcomeAmount
	}
	return r.update(ctx, notTerminal(id), bson.M{"$set": set}, id, "dispute is already %s")
}

func notTerminal(id string) bson.M {
	return bson.M{"id": id, "status": bson.M{"$nin": bson.A{models.DisputeResolved, models.DisputeClosed}}}
}

// update applies a guarded single-document write. conflictFormat receives the current status
// when the document exists but the guard rejected it.
func (r *MongoDisputeRepo) update(ctx context.Context, filter bson.M, update any, id, conflictFormat string) (*models.Dispute, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var dispute models.Dispute
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&dispute)
	if err == mongo.ErrNoDocuments && conflictFormat != "" {
		var current models.Dispute
		if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&current); err != nil {
			return nil, translate(err, "get", id)
		}
		return nil, apperrors.Conflict(conflictFormat, current.Status)
	}
	if err != nil {
		return nil, translate(err, "update", id)
	}
	return &dispute, nil
}
