package memory

import (
	"context"
	"sort"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"
)

type ReviewRepo struct{ s *Store }

func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.reviews {
		if existing.ID == review.ID || existing.Booking == review.Booking {
			return apperrors.Conflict("review already exists")
		}
	}
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now
	rv := *review
	r.s.reviews[rv.ID] = &rv
	return nil
}

func (r *ReviewRepo) find(key string, keep func(rv *models.Review) bool) (*models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rv := range r.s.reviews {
		if keep(rv) {
			out := *rv
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("review", key)
}

func (r *ReviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	return r.find(id, func(rv *models.Review) bool { return rv.ID == id })
}

func (r *ReviewRepo) GetByBooking(ctx context.Context, bookingID string) (*models.Review, error) {
	return r.find(bookingID, func(rv *models.Review) bool { return rv.Booking == bookingID })
}

func (r *ReviewRepo) ListByProvider(ctx context.Context, providerID string, limit, skip int64) ([]models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reviews := []models.Review{}
	for _, rv := range r.s.reviews {
		if rv.ServiceProvider == providerID {
			reviews = append(reviews, *rv)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return page(reviews, limit, skip), nil
}

func (r *ReviewRepo) SetProviderResponse(ctx context.Context, id string, response models.ProviderResponse) (*models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}
	if rv.ProviderResponse != nil {
		return nil, apperrors.Conflict("review already has a provider response")
	}
	rv.ProviderResponse = &response
	rv.UpdatedAt = response.RespondedAt
	out := *rv
	return &out, nil
}

func (r *ReviewRepo) RatingSummary(ctx context.Context, providerID string) (models.RatingSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var (
		sum   float64
		count int
	)
	for _, rv := range r.s.reviews {
		if rv.ServiceProvider == providerID {
			sum += rv.OverallRating
			count++
		}
	}
	if count == 0 {
		return models.RatingSummary{}, nil
	}
	return models.RatingSummary{AverageRating: sum / float64(count), TotalReviews: count}, nil
}
