package certificationRepo

import (
	"context"
	"time"

	"fixerhub/apperrors"
	userRepo "fixerhub/database/repository/user"
	"fixerhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoCertificationRepo) Create(ctx context.Context, cert *models.Certification) error {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	now := time.Now()
	cert.CreatedAt = now
	cert.UpdatedAt = now

	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.coll.InsertOne(sc, cert); err != nil {
			return translate(err, "create", cert.ID)
		}
		return r.applyScore(sc, cert.ServiceProvider, models.ScoreDelta{TotalCertifications: 1}, nil)
	})
}

func (r *MongoCertificationRepo) GetByID(ctx context.Context, id string) (*models.Certification, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var cert models.Certification
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&cert); err != nil {
		return nil, translate(err, "get", id)
	}
	return &cert, nil
}

func (r *MongoCertificationRepo) Review(ctx context.Context, id string, review models.CertificationReview) (*models.Certification, *models.User, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	var (
		updated models.Certification
		owner   *models.User
	)
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var current models.Certification
		if err := r.coll.FindOne(sc, bson.M{"id": id}).Decode(&current); err != nil {
			return translate(err, "get", id)
		}

		set := bson.M{
			"status":          review.Status,
			"reviewedBy":      review.ReviewedBy,
			"reviewedAt":      review.ReviewedAt,
			"rejectionReason": review.RejectionReason,
			"updatedAt":       review.ReviewedAt,
		}
		// The status guard makes a concurrent review of the same certification abort this one.
		filter := bson.M{"id": id, "status": current.Status}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err := r.coll.FindOneAndUpdate(sc, filter, bson.M{"$set": set}, opts).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			return apperrors.Conflict("certification %s was reviewed concurrently", id)
		}
		if err != nil {
			return translate(err, "review", id)
		}

		delta := models.ScoreDeltaFor(current.Status, review.Status, current.Points)
		owner = &models.User{}
		return r.applyScore(sc, current.ServiceProvider, delta, owner)
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, owner, nil
}

func (r *MongoCertificationRepo) Delete(ctx context.Context, id string) (*models.Certification, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	var deleted models.Certification
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := r.coll.FindOneAndDelete(sc, bson.M{"id": id}).Decode(&deleted); err != nil {
			return translate(err, "delete", id)
		}
		delta := models.ScoreDeltaFor(deleted.Status, models.CertificationRejected, deleted.Points)
		delta.TotalCertifications = -1
		return r.applyScore(sc, deleted.ServiceProvider, delta, nil)
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// applyScore runs the user counter pipeline inside the caller's session. When out is non-nil it
// receives the updated user.
func (r *MongoCertificationRepo) applyScore(sc mongo.SessionContext, providerID string, delta models.ScoreDelta, out *models.User) error {
	if delta.IsZero() && out == nil {
		return nil
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.userColl.FindOneAndUpdate(sc, bson.M{"id": providerID}, userRepo.ScorePipeline(delta, time.Now()), opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperrors.NotFound("user", providerID)
		}
		return translate(err, "apply score", providerID)
	}
	if out != nil {
		*out = user
	}
	return nil
}
