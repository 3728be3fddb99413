package userRepo

import (
	"context"

	"fixerhub/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user. A duplicate email is a conflict.
	Create(ctx context.Context, user *models.User) error
	// GetByID retrieves a user by their unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by their email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateProfile writes the client-editable fields of user. Scoring counters are untouched.
	UpdateProfile(ctx context.Context, user *models.User) error
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetVerified(ctx context.Context, id string) error
	SetRole(ctx context.Context, id string, role models.Role) error
	// SetProfilePicture replaces the picture and returns the user as it was before the write.
	SetProfilePicture(ctx context.Context, id, url, publicID string) (*models.User, error)
	// ApplyScoreDelta changes the scoring counters in one atomic write, floors them at zero,
	// re-derives the level, and returns the updated user.
	ApplyScoreDelta(ctx context.Context, id string, delta models.ScoreDelta) (*models.User, error)
	// SetScore overwrites the certification counters with recomputed values, but only while the
	// stored counters still equal seen. Otherwise it returns a Conflict error.
	SetScore(ctx context.Context, score, seen models.ProviderScore) error
	SetRatingSummary(ctx context.Context, id string, summary models.RatingSummary) error
	SearchProviders(ctx context.Context, criteria models.ProviderSearchCriteria) ([]models.User, error)
	List(ctx context.Context, role models.Role, limit, skip int64) ([]models.User, error)
	CountByRole(ctx context.Context) (map[models.Role]int64, error)
	// ListProviderIDs returns every provider id, used by reconciliation.
	ListProviderIDs(ctx context.Context) ([]string, error)
}
