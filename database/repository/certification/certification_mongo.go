package certificationRepo

import (
	"context"
	"fmt"
	"time"

	"fixerhub/database"
	userRepo "fixerhub/database/repository/user"
	"fixerhub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const CollectionName = "certifications"

type MongoCertificationRepo struct {
	coll     *mongo.Collection
	userColl *mongo.Collection
}

func NewMongoCertificationRepo(db *mongo.Database) CertificationRepository {
	repo := &MongoCertificationRepo{
		coll:     db.Collection(CollectionName),
		userColl: db.Collection(userRepo.CollectionName),
	}
	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Error("failed to create certification indexes", zap.Error(err))
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func translate(err error, op, id string) error {
	return database.TranslateError(err, op, "certification", id)
}

func (r *MongoCertificationRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "serviceProvider", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoCertificationRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	return database.RunInTransaction(ctx, r.coll.Database().Client(), fn)
}
