package user

import (
	"context"
	"io"

	"fixerhub/apperrors"
	"fixerhub/models"
	"fixerhub/services/storage"
	"fixerhub/utils"

	"go.uber.org/zap"
)

func (s *DefaultUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultUserService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	update.Apply(u)
	if err := models.Validate(u); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UploadProfilePicture stores the picture and awards the profile picture points the first
// time a user sets one.
func (s *DefaultUserService) UploadProfilePicture(ctx context.Context, userID string, file io.Reader) (*models.User, error) {
	if s.Storage == nil {
		return nil, apperrors.New(apperrors.KindInternal, "file storage is not configured")
	}
	stored, err := s.Storage.Upload(ctx, file, storage.FolderProfilePictures)
	if err != nil {
		return nil, apperrors.Internal("failed to upload picture", err)
	}

	before, err := s.Repo.SetProfilePicture(ctx, userID, stored.URL, stored.PublicID)
	if err != nil {
		_ = s.Storage.Delete(ctx, stored.PublicID)
		return nil, err
	}
	if before.ProfilePicturePublicID != "" {
		if err := s.Storage.Delete(ctx, before.ProfilePicturePublicID); err != nil {
			utils.GetLogger().Warn("failed to delete old profile picture", zap.String("userId", userID), zap.Error(err))
		}
	}
	if before.ProfilePicture == "" {
		return s.Repo.ApplyScoreDelta(ctx, userID, models.ScoreDelta{ProfilePicturePoints: models.ProfilePicturePoints})
	}
	return s.Repo.GetByID(ctx, userID)
}

// RemoveProfilePicture clears the picture and withdraws its points.
func (s *DefaultUserService) RemoveProfilePicture(ctx context.Context, userID string) (*models.User, error) {
	before, err := s.Repo.SetProfilePicture(ctx, userID, "", "")
	if err != nil {
		return nil, err
	}
	if before.ProfilePicture == "" {
		return s.Repo.GetByID(ctx, userID)
	}
	if s.Storage != nil && before.ProfilePicturePublicID != "" {
		if err := s.Storage.Delete(ctx, before.ProfilePicturePublicID); err != nil {
			utils.GetLogger().Warn("failed to delete profile picture", zap.String("userId", userID), zap.Error(err))
		}
	}
	return s.Repo.ApplyScoreDelta(ctx, userID, models.ScoreDelta{ProfilePicturePoints: -models.ProfilePicturePoints})
}

func (s *DefaultUserService) SearchProviders(ctx context.Context, criteria models.ProviderSearchCriteria) ([]models.User, error) {
	if criteria.MinLevel != "" && !criteria.MinLevel.Valid() {
		return nil, apperrors.Validation("unknown level %q", criteria.MinLevel)
	}
	providers, err := s.Repo.SearchProviders(ctx, criteria)
	if err != nil {
		return nil, err
	}
	for i := range providers {
		providers[i] = providers[i].Public()
	}
	return providers, nil
}

func (s *DefaultUserService) GetProvider(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsProvider() {
		return nil, apperrors.NotFound("provider", id)
	}
	public := u.Public()
	return &public, nil
}

func (s *DefaultUserService) ListUsers(ctx context.Context, role models.Role, limit, skip int64) ([]models.User, error) {
	return s.Repo.List(ctx, role, limit, skip)
}

func (s *DefaultUserService) PromoteToAdmin(ctx context.Context, email string) (*models.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	u.Role = models.RoleAdmin
	return u, nil
}
