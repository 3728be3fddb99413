package models

import (
	"math"
	"time"
)

// Ratings are the six sub-scores a seeker gives, each 1 to 5.
type Ratings struct {
	Quality         int `bson:"quality" json:"quality" validate:"min=1,max=5"`
	Punctuality     int `bson:"punctuality" json:"punctuality" validate:"min=1,max=5"`
	Communication   int `bson:"communication" json:"communication" validate:"min=1,max=5"`
	Professionalism int `bson:"professionalism" json:"professionalism" validate:"min=1,max=5"`
	ValueForMoney   int `bson:"valueForMoney" json:"valueForMoney" validate:"min=1,max=5"`
	Cleanliness     int `bson:"cleanliness" json:"cleanliness" validate:"min=1,max=5"`
}

// Overall is the mean of the sub-ratings rounded to one decimal place.
func (r Ratings) Overall() float64 {
	sum := r.Quality + r.Punctuality + r.Communication + r.Professionalism + r.ValueForMoney + r.Cleanliness
	return math.Round(float64(sum)/6*10) / 10
}

type ProviderResponse struct {
	Comment     string    `bson:"comment" json:"comment" validate:"required,max=1000"`
	RespondedAt time.Time `bson:"respondedAt" json:"respondedAt"`
}

type Review struct {
	ID               string            `bson:"id" json:"id"`
	Booking          string            `bson:"booking" json:"booking" validate:"required"`
	ServiceProvider  string            `bson:"serviceProvider" json:"serviceProvider" validate:"required"`
	ServiceSeeker    string            `bson:"serviceSeeker" json:"serviceSeeker" validate:"required"`
	Ratings          Ratings           `bson:"ratings" json:"ratings"`
	OverallRating    float64           `bson:"overallRating" json:"overallRating"`
	Comment          string            `bson:"comment" json:"comment" validate:"min=10,max=1000"`
	WouldRecommend   bool              `bson:"wouldRecommend" json:"wouldRecommend"`
	ProviderResponse *ProviderResponse `bson:"providerResponse,omitempty" json:"providerResponse,omitempty"`
	CreatedAt        time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt" json:"updatedAt"`
}

type NewReviewRequest struct {
	Booking        string  `json:"booking" binding:"required"`
	Ratings        Ratings `json:"ratings"`
	Comment        string  `json:"comment" binding:"required"`
	WouldRecommend bool    `json:"wouldRecommend"`
}

// RatingSummary is the aggregate shown on a provider profile.
type RatingSummary struct {
	AverageRating float64 `bson:"average" json:"averageRating"`
	TotalReviews  int     `bson:"count" json:"totalReviews"`
}
