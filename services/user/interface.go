package user

import (
	"context"
	"io"
	"time"

	userRepo "fixerhub/database/repository/user"
	"fixerhub/models"
	"fixerhub/services/notification"
	"fixerhub/services/storage"
)

type UserService interface {
	// Registration and authentication
	Register(ctx context.Context, req models.UserRegistration) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	GoogleSignIn(ctx context.Context, idToken string, role models.Role) (*models.AuthResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error

	// Profile
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
	UploadProfilePicture(ctx context.Context, userID string, file io.Reader) (*models.User, error)
	RemoveProfilePicture(ctx context.Context, userID string) (*models.User, error)

	// Discovery
	SearchProviders(ctx context.Context, criteria models.ProviderSearchCriteria) ([]models.User, error)
	GetProvider(ctx context.Context, id string) (*models.User, error)

	// Admin
	ListUsers(ctx context.Context, role models.Role, limit, skip int64) ([]models.User, error)
	PromoteToAdmin(ctx context.Context, email string) (*models.User, error)
}

// TokenStore keeps single-use tokens for email verification and password reset.
type TokenStore interface {
	Save(ctx context.Context, purpose, token, userID string, ttl time.Duration) error
	// Consume returns the user id bound to token and deletes it.
	Consume(ctx context.Context, purpose, token string) (string, error)
}

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityVerifier checks an ID token issued by an external identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo        userRepo.UserRepository
	Tokens      TokenStore
	Notifier    notification.Notifier
	Storage     storage.StorageService
	Google      IdentityVerifier
	FrontendURL string
	TokenTTL    time.Duration
}
