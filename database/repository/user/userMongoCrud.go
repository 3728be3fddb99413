package userRepo

import (
	"context"
	"strings"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now
	user.UpdateLevel()

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return translate(err, "create", user.Email)
	}
	return nil
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user); err != nil {
		return nil, translate(err, "get", id)
	}
	return &user, nil
}

func (r *MongoUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err, "get", email)
	}
	return &user, nil
}

// UpdateProfile modifies the editable fields of an existing user document.
func (r *MongoUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	user.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":            user.Name,
		"phone":           user.Phone,
		"location":        user.Location,
		"bio":             user.Bio,
		"serviceCategory": user.ServiceCategory,
		"hourlyRate":      user.HourlyRate,
		"bankDetails":     user.BankDetails,
		"fcmToken":        user.FCMToken,
		"updatedAt":       user.UpdatedAt,
	}}
	return r.updateOne(ctx, user.ID, update, "update profile")
}

func (r *MongoUserRepo) SetPassword(ctx context.Context, id, passwordHash string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"passwordHash": passwordHash, "updatedAt": time.Now()}}
	return r.updateOne(ctx, id, update, "set password")
}

func (r *MongoUserRepo) SetVerified(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"isVerified": true, "updatedAt": time.Now()}}
	return r.updateOne(ctx, id, update, "verify")
}

func (r *MongoUserRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now()}}
	return r.updateOne(ctx, id, update, "set role")
}

func (r *MongoUserRepo) SetProfilePicture(ctx context.Context, id, url, publicID string) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"profilePicture":         url,
		"profilePicturePublicId": publicID,
		"updatedAt":              time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before models.User
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&before); err != nil {
		return nil, translate(err, "set profile picture", id)
	}
	return &before, nil
}

func (r *MongoUserRepo) ApplyScoreDelta(ctx context.Context, id string, delta models.ScoreDelta) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, ScorePipeline(delta, time.Now()), opts).Decode(&user)
	if err != nil {
		return nil, translate(err, "apply score", id)
	}
	return &user, nil
}

func (r *MongoUserRepo) SetScore(ctx context.Context, score, seen models.ProviderScore) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                     score.ProviderID,
		"certificationPoints":    seen.CertificationPoints,
		"verifiedCertifications": seen.VerifiedCertifications,
		"totalCertifications":    seen.TotalCertifications,
	}
	update := bson.M{"$set": bson.M{
		"certificationPoints":    score.CertificationPoints,
		"verifiedCertifications": score.VerifiedCertifications,
		"totalCertifications":    score.TotalCertifications,
		"certificationLevel":     models.CalculatedLevel(score.CertificationPoints),
		"updatedAt":              time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err, "set score", score.ProviderID)
	}
	if result.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": score.ProviderID})
		if err != nil {
			return translate(err, "count", score.ProviderID)
		}
		if n == 0 {
			return apperrors.NotFound("user", score.ProviderID)
		}
		return apperrors.Conflict("counters of user %s changed during reconciliation", score.ProviderID)
	}
	return nil
}

func (r *MongoUserRepo) SetRatingSummary(ctx context.Context, id string, summary models.RatingSummary) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"averageRating": summary.AverageRating,
		"totalReviews":  summary.TotalReviews,
		"updatedAt":     time.Now(),
	}}
	return r.updateOne(ctx, id, update, "set rating")
}

func (r *MongoUserRepo) updateOne(ctx context.Context, id string, update bson.M, op string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return translate(err, op, id)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}
