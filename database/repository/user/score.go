package userRepo

import (
	"time"

	"fixerhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// clampedAdd evaluates max(0, field + delta) server side.
func clampedAdd(field string, delta int) bson.D {
	return bson.D{{Key: "$max", Value: bson.A{
		0,
		bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, 0}}},
			delta,
		}}},
	}}}
}

// levelSwitch derives certificationLevel from the already updated points.
func levelSwitch() bson.D {
	branches := bson.A{}
	for _, t := range models.LevelThresholds {
		branches = append(branches, bson.D{
			{Key: "case", Value: bson.D{{Key: "$gte", Value: bson.A{"$certificationPoints", t.MinPoints}}}},
			{Key: "then", Value: string(t.Level)},
		})
	}
	return bson.D{{Key: "$switch", Value: bson.D{
		{Key: "branches", Value: branches},
		{Key: "default", Value: string(models.LevelBronze)},
	}}}
}

// ScorePipeline is the update applying delta to a user document in a single write. The second
// stage sees the values written by the first, so the level always matches the new points.
func ScorePipeline(delta models.ScoreDelta, now time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "certificationPoints", Value: clampedAdd("certificationPoints", delta.CertificationPoints)},
			{Key: "verifiedCertifications", Value: clampedAdd("verifiedCertifications", delta.VerifiedCertifications)},
			{Key: "totalCertifications", Value: clampedAdd("totalCertifications", delta.TotalCertifications)},
			{Key: "profilePicturePoints", Value: clampedAdd("profilePicturePoints", delta.ProfilePicturePoints)},
			{Key: "updatedAt", Value: now},
		}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "certificationLevel", Value: levelSwitch()},
		}}},
	}
}
