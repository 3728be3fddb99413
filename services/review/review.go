package review

import (
	"context"
	"math"
	"strings"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"
	"fixerhub/services/events"
	"fixerhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultReviewService) Create(ctx context.Context, seekerID string, req models.NewReviewRequest) (*models.Review, error) {
	b, err := s.Bookings.GetByID(ctx, req.Booking)
	if err != nil {
		return nil, err
	}
	if b.ServiceSeeker != seekerID {
		return nil, apperrors.Forbidden("only the booking's seeker can review it")
	}
	if !b.CanBeReviewed() {
		return nil, apperrors.Conflict("booking in status %s cannot be reviewed yet", b.Status)
	}

	r := &models.Review{
		ID:              uuid.NewString(),
		Booking:         b.ID,
		ServiceProvider: b.ServiceProvider,
		ServiceSeeker:   seekerID,
		Ratings:         req.Ratings,
		OverallRating:   req.Ratings.Overall(),
		Comment:         strings.TrimSpace(req.Comment),
		WouldRecommend:  req.WouldRecommend,
	}
	if err := models.Validate(r); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, r); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("booking %s has already been reviewed", b.ID)
		}
		return nil, err
	}

	// The booking keeps a whole-star copy of the overall rating.
	stars := int(math.Round(r.OverallRating))
	if err := s.Bookings.SetRating(ctx, b.ID, stars, r.Comment); err != nil {
		utils.GetLogger().Warn("review saved but booking rating not set", zap.String("bookingId", b.ID), zap.Error(err))
	}
	s.refreshSummary(ctx, b.ServiceProvider)

	s.Notifier.Push(ctx, models.PushPayload{
		UserID: b.ServiceProvider,
		Title:  "New review",
		Body:   r.Comment,
		Data:   map[string]string{"type": "review", "reviewId": r.ID},
	})
	s.Events.Publish(ctx, events.SubjectReviewCreated, r.ID, map[string]any{
		"serviceProvider": r.ServiceProvider,
		"overallRating":   r.OverallRating,
	})
	return r, nil
}

// refreshSummary recomputes the provider's average from stored reviews so concurrent reviews
// cannot skew it.
func (s *DefaultReviewService) refreshSummary(ctx context.Context, providerID string) {
	summary, err := s.Repo.RatingSummary(ctx, providerID)
	if err != nil {
		utils.GetLogger().Warn("rating summary failed", zap.String("provider", providerID), zap.Error(err))
		return
	}
	if err := s.Users.SetRatingSummary(ctx, providerID, summary); err != nil {
		utils.GetLogger().Warn("rating summary not saved", zap.String("provider", providerID), zap.Error(err))
	}
}

func (s *DefaultReviewService) Respond(ctx context.Context, providerID, reviewID, comment string) (*models.Review, error) {
	r, err := s.Repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.ServiceProvider != providerID {
		return nil, apperrors.Forbidden("only the reviewed provider can respond")
	}
	resp := models.ProviderResponse{Comment: strings.TrimSpace(comment), RespondedAt: time.Now()}
	if err := models.Validate(resp); err != nil {
		return nil, err
	}
	return s.Repo.SetProviderResponse(ctx, reviewID, resp)
}

func (s *DefaultReviewService) ListByProvider(ctx context.Context, providerID string, limit, skip int64) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Repo.ListByProvider(ctx, providerID, limit, skip)
}
