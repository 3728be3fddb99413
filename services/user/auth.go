package user

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"
	"fixerhub/services/notification"
	"fixerhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	purposeVerify = "verify"
	purposeReset  = "reset"

	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasNumber = regexp.MustCompile(`[0-9]`)
)

// VerifyPasswordComplexity checks that the password meets complexity requirements.
func VerifyPasswordComplexity(pw string) error {
	if len(pw) < 8 {
		return apperrors.Validation("password must be at least 8 characters long")
	}
	if !hasLetter.MatchString(pw) || !hasNumber.MatchString(pw) {
		return apperrors.Validation("password must include at least one letter and one number")
	}
	return nil
}

func (s *DefaultUserService) Register(ctx context.Context, req models.UserRegistration) (*models.AuthResponse, error) {
	if err := VerifyPasswordComplexity(req.Password); err != nil {
		return nil, err
	}
	if req.Role == models.RoleAdmin {
		return nil, apperrors.Forbidden("admin accounts cannot self-register")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("registration failed, please try again", err)
	}

	u := &models.User{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:       string(hash),
		Phone:              req.Phone,
		Role:               req.Role,
		Location:           req.Location,
		AuthProvider:       "password",
		CertificationLevel: models.LevelBronze,
	}
	if req.Role == models.RoleProvider {
		u.ServiceCategory = req.ServiceCategory
		u.HourlyRate = req.HourlyRate
		u.BankDetails = req.BankDetails
	}
	if err := models.Validate(u); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Conflict("a user with this email already exists")
		}
		utils.GetLogger().Error("Register: failed to create user", zap.Error(err))
		return nil, err
	}

	s.sendVerification(ctx, u)
	return s.issueToken(u)
}

func (s *DefaultUserService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		utils.GetLogger().Error("Login: failed to fetch user", zap.Error(err))
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, apperrors.Unauthorized("this account uses Google sign-in")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	return s.issueToken(u)
}

func (s *DefaultUserService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.Tokens.Consume(ctx, purposeVerify, token)
	if err != nil {
		return err
	}
	return s.Repo.SetVerified(ctx, userID)
}

func (s *DefaultUserService) ResendVerification(ctx context.Context, userID string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperrors.Conflict("email is already verified")
	}
	s.sendVerification(ctx, u)
	return nil
}

// RequestPasswordReset never reveals whether the email exists.
func (s *DefaultUserService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	token := uuid.NewString()
	if err := s.Tokens.Save(ctx, purposeReset, token, u.ID, resetTokenTTL); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", s.FrontendURL, token)
	s.Notifier.Email(ctx, notification.PasswordResetEmail(u.Email, link))
	return nil
}

func (s *DefaultUserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := VerifyPasswordComplexity(newPassword); err != nil {
		return err
	}
	userID, err := s.Tokens.Consume(ctx, purposeReset, token)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal("failed to reset password", err)
	}
	return s.Repo.SetPassword(ctx, userID, string(hash))
}

func (s *DefaultUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
			return apperrors.Unauthorized("current password is incorrect")
		}
	}
	if err := VerifyPasswordComplexity(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal("failed to change password", err)
	}
	return s.Repo.SetPassword(ctx, userID, string(hash))
}

func (s *DefaultUserService) sendVerification(ctx context.Context, u *models.User) {
	token := uuid.NewString()
	if err := s.Tokens.Save(ctx, purposeVerify, token, u.ID, verifyTokenTTL); err != nil {
		utils.GetLogger().Warn("failed to store verification token", zap.String("userId", u.ID), zap.Error(err))
		return
	}
	link := fmt.Sprintf("%s/verify-email?token=%s", s.FrontendURL, token)
	s.Notifier.Email(ctx, notification.VerificationEmail(u.Email, u.Name, link))
}

func (s *DefaultUserService) issueToken(u *models.User) (*models.AuthResponse, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = utils.TokenTTL()
	}
	token, err := utils.GenerateToken(u.ID, u.Email, string(u.Role), ttl)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}
	return &models.AuthResponse{Token: token, User: *u}, nil
}
