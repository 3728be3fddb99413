package user

import (
	"context"
	"fmt"

	"fixerhub/apperrors"
	"fixerhub/models"
	"fixerhub/utils"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const googleIssuer = "https://accounts.google.com"

// OIDCVerifier validates Google ID tokens against Google's published keys.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewGoogleVerifier(ctx context.Context, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid Google token")
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, apperrors.Unauthorized("unreadable Google token claims")
	}
	return &GoogleIdentity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

// GoogleSignIn logs in the account bound to the token's email, creating a seeker or provider
// account on first use.
func (s *DefaultUserService) GoogleSignIn(ctx context.Context, idToken string, role models.Role) (*models.AuthResponse, error) {
	if s.Google == nil {
		return nil, apperrors.New(apperrors.KindUnauthorized, "Google sign-in is not configured")
	}
	identity, err := s.Google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !identity.EmailVerified || identity.Email == "" {
		return nil, apperrors.Unauthorized("Google account email is not verified")
	}

	existing, err := s.Repo.GetByEmail(ctx, identity.Email)
	if err == nil {
		return s.issueToken(existing)
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	if role == "" {
		role = models.RoleSeeker
	}
	if role == models.RoleAdmin {
		return nil, apperrors.Forbidden("admin accounts cannot self-register")
	}
	u := &models.User{
		ID:                 uuid.NewString(),
		Name:               identity.Name,
		Email:              identity.Email,
		Role:               role,
		ProfilePicture:     identity.Picture,
		IsVerified:         true,
		AuthProvider:       "google",
		CertificationLevel: models.LevelBronze,
	}
	if u.Name == "" {
		u.Name = identity.Email
	}
	// Provider details are completed through the profile endpoint.
	if err := s.Repo.Create(ctx, u); err != nil {
		utils.GetLogger().Error("GoogleSignIn: failed to create user", zap.Error(err))
		return nil, err
	}
	return s.issueToken(u)
}
