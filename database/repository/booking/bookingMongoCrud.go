package bookingRepo

import (
	"context"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.PaymentHistory == nil {
		booking.PaymentHistory = []models.PaymentRecord{}
	}
	if booking.Disputes == nil {
		booking.Disputes = []models.BookingDispute{}
	}

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return translate(err, "create", booking.ID)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		return nil, translate(err, "get", id)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) TransitionStatus(ctx context.Context, id string, change StatusChange) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := transitionUpdate(change, time.Now())
	filter := bson.M{"id": id, "status": change.From}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, r.missOrConflict(ctx, id, "booking is no longer %s", change.From)
	}
	if err != nil {
		return nil, translate(err, "transition", id)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) AddPaymentRecord(ctx context.Context, id string, rec models.PaymentRecord) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	update := bson.M{
		"$push": bson.M{"paymentHistory": rec},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return r.updateOne(ctx, id, update, "add payment record")
}

func (r *MongoBookingRepo) MarkAsPaid(ctx context.Context, id string, paid models.PaidUpdate) (*models.Booking, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := paidPipeline(paid)
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$nin": bson.A{models.BookingPaid, models.BookingDeclined, models.BookingCancelled}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, r.missOrConflict(ctx, id, "booking cannot be paid in its current status")
	}
	if err != nil {
		return nil, translate(err, "mark as paid", id)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) SetPaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"paymentStatus": status, "updatedAt": time.Now()}}
	return r.updateOne(ctx, id, update, "set payment status")
}

func (r *MongoBookingRepo) AddDispute(ctx context.Context, id string, ref models.BookingDispute) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := mongo.Pipeline{bson.D{{Key: "$set", Value: bson.D{
		{Key: "disputes", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$disputes", bson.A{}}}},
			bson.D{{Key: "$literal", Value: bson.A{ref}}},
		}}}},
		{Key: "paymentStatus", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$paymentStatus", models.PaymentPaid}}},
			models.PaymentDisputed,
			"$paymentStatus",
		}}}},
		{Key: "updatedAt", Value: time.Now()},
	}}}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return translate(err, "add dispute", id)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("booking", id)
	}
	return nil
}

func (r *MongoBookingRepo) SetRating(ctx context.Context, id string, rating int, review string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"rating": rating, "review": review, "updatedAt": time.Now()}}
	return r.updateOne(ctx, id, update, "set rating")
}

func (r *MongoBookingRepo) updateOne(ctx context.Context, id string, update bson.M, op string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return translate(err, op, id)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("booking", id)
	}
	return nil
}

// missOrConflict explains why a guarded update matched nothing.
func (r *MongoBookingRepo) missOrConflict(ctx context.Context, id, format string, args ...any) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return translate(err, "count", id)
	}
	if n == 0 {
		return apperrors.NotFound("booking", id)
	}
	return apperrors.Conflict(format, args...)
}

// transitionUpdate builds the status change. A price change needs an aggregation pipeline so
// originalPrice can read the stored price, and inside a pipeline literal values are wrapped.
func transitionUpdate(change StatusChange, now time.Time) any {
	set := bson.M{"status": change.To, "updatedAt": now}
	if change.Quotation != nil {
		set["quotation"] = change.Quotation
	}
	if change.CancelReason != "" {
		set["cancelReason"] = change.CancelReason
	}
	if change.PaymentStatus != "" {
		set["paymentStatus"] = change.PaymentStatus
	}
	if change.Price == nil {
		return bson.M{"$set": set}
	}

	// originalPrice keeps the first pre-negotiation price.
	for _, key := range []string{"quotation", "cancelReason"} {
		if v, ok := set[key]; ok {
			set[key] = bson.M{"$literal": v}
		}
	}
	set["price"] = *change.Price
	set["originalPrice"] = bson.M{"$ifNull": bson.A{"$originalPrice", "$price"}}
	return mongo.Pipeline{bson.D{{Key: "$set", Value: set}}}
}

// paidPipeline settles a booking in one write. An existing invoice is kept; a new one takes
// its amount from the stored price.
func paidPipeline(paid models.PaidUpdate) mongo.Pipeline {
	set := bson.D{
		{Key: "paymentStatus", Value: paid.PaymentStatus},
		{Key: "status", Value: paid.Status},
		{Key: "paymentDate", Value: paid.PaymentDate},
		{Key: "paymentMethod", Value: paid.PaymentMethod},
		{Key: "paymentId", Value: bson.D{{Key: "$literal", Value: paid.PaymentID}}},
		{Key: "updatedAt", Value: paid.PaymentDate},
	}
	if paid.Invoice != nil {
		issued := bson.D{{Key: "$mergeObjects", Value: bson.A{
			bson.D{{Key: "$literal", Value: paid.Invoice}},
			bson.D{{Key: "amount", Value: "$price"}},
		}}}
		set = append(set, bson.E{Key: "invoice", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$invoice", issued}}}})
	}
	return mongo.Pipeline{bson.D{{Key: "$set", Value: set}}}
}
