package userRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"testing"
	"time"

	"fixerhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// decode renders v the way the server receives it, as relaxed extended JSON.
func decode(t *testing.T, v any) any {
	t.Helper()
	raw, err := bson.MarshalExtJSON(bson.M{"v": v}, false, false)
	if err != nil {
		t.Fatalf("MarshalExtJSON: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return doc["v"]
}

func field(t *testing.T, v any, key string) any {
	t.Helper()
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("%v is not a document", v)
	}
	got, ok := m[key]
	if !ok {
		t.Fatalf("document %v has no %q", m, key)
	}
	return got
}

func TestScorePipelineClampsEveryCounter(t *testing.T) {
	delta := models.ScoreDelta{
		CertificationPoints:    -500,
		VerifiedCertifications: -1,
		TotalCertifications:    1,
		ProfilePicturePoints:   10,
	}
	stages, ok := decode(t, ScorePipeline(delta, time.Now())).([]any)
	if !ok || len(stages) != 2 {
		t.Fatalf("pipeline = %v, want two stages", stages)
	}

	counters := field(t, stages[0], "$set")
	for key, d := range map[string]float64{
		"certificationPoints":    -500,
		"verifiedCertifications": -1,
		"totalCertifications":    1,
		"profilePicturePoints":   10,
	} {
		want := map[string]any{"$max": []any{0.0, map[string]any{"$add": []any{
			map[string]any{"$ifNull": []any{"$" + key, 0.0}},
			d,
		}}}}
		if got := field(t, counters, key); !reflect.DeepEqual(got, want) {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
	if _, ok := counters.(map[string]any)["certificationLevel"]; ok {
		t.Fatal("level is derived in the same stage as the points it depends on")
	}

	level := field(t, stages[1], "$set").(map[string]any)
	if len(level) != 1 {
		t.Fatalf("second stage sets %v, want only certificationLevel", level)
	}
}

// evalLevel runs the $switch the way the server does: the first matching branch wins.
func evalLevel(t *testing.T, sw any, points int) string {
	t.Helper()
	spec := field(t, sw, "$switch")
	for _, b := range field(t, spec, "branches").([]any) {
		cond := field(t, field(t, b, "case"), "$gte").([]any)
		if cond[0] != "$certificationPoints" {
			t.Fatalf("branch compares %v, want $certificationPoints", cond[0])
		}
		if float64(points) >= cond[1].(float64) {
			return field(t, b, "then").(string)
		}
	}
	return field(t, spec, "default").(string)
}

func TestScorePipelineLevelMatchesThresholds(t *testing.T) {
	stages := decode(t, ScorePipeline(models.ScoreDelta{}, time.Now())).([]any)
	sw := field(t, field(t, stages[1], "$set"), "certificationLevel")

	branches := field(t, field(t, sw, "$switch"), "branches").([]any)
	if len(branches) != len(models.LevelThresholds) {
		t.Fatalf("%d branches for %d thresholds", len(branches), len(models.LevelThresholds))
	}

	points := []int{0, 49}
	for _, th := range models.LevelThresholds {
		points = append(points, th.MinPoints-1, th.MinPoints, th.MinPoints+1)
	}
	points = append(points, 10000)
	for _, p := range points {
		if got, want := evalLevel(t, sw, p), string(models.CalculatedLevel(p)); got != want {
			t.Errorf("points %d: pipeline level %s, want %s", p, got, want)
		}
	}
}

// TestScorePipelineAgainstMongo needs a server at MONGO_TEST_URL.
func TestScorePipelineAgainstMongo(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URL")
	if uri == "" {
		t.Skip("MONGO_TEST_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect(ctx)
	coll := client.Database(fmt.Sprintf("fixerhub_test_%d", time.Now().UnixNano())).Collection("users")
	defer coll.Database().Drop(ctx)

	if _, err := coll.InsertOne(ctx, bson.M{"id": "provider-1", "certificationPoints": 20}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	steps := []struct {
		delta  models.ScoreDelta
		points int
		level  models.Level
	}{
		{models.ScoreDelta{CertificationPoints: -50}, 0, models.LevelBronze},
		{models.ScoreDelta{CertificationPoints: 160, VerifiedCertifications: 1}, 160, models.LevelGold},
		{models.ScoreDelta{CertificationPoints: -20}, 140, models.LevelSilver},
	}
	for i, step := range steps {
		var u models.User
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := coll.FindOneAndUpdate(ctx, bson.M{"id": "provider-1"}, ScorePipeline(step.delta, time.Now()), opts).Decode(&u); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if u.CertificationPoints != step.points || u.CertificationLevel != step.level {
			t.Fatalf("step %d: points=%d level=%s, want %d %s", i, u.CertificationPoints, u.CertificationLevel, step.points, step.level)
		}
	}
}
