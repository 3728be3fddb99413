package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"
)

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperrors.Conflict("user already exists")
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.CertificationLevel == "" {
		user.UpdateLevel()
	}
	u := *user
	r.s.users[user.ID] = &u
	return nil
}

func (r *UserRepo) get(id string) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, err := r.get(id)
	if err != nil {
		return nil, err
	}
	out := *u
	return &out, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (r *UserRepo) update(id string, fn func(u *models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, err := r.get(id)
	if err != nil {
		return err
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.update(user.ID, func(u *models.User) {
		u.Name = user.Name
		u.Phone = user.Phone
		u.Location = user.Location
		u.Bio = user.Bio
		u.ServiceCategory = user.ServiceCategory
		u.HourlyRate = user.HourlyRate
		u.BankDetails = user.BankDetails
		u.FCMToken = user.FCMToken
	})
}

func (r *UserRepo) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (r *UserRepo) SetVerified(ctx context.Context, id string) error {
	return r.update(id, func(u *models.User) { u.IsVerified = true })
}

func (r *UserRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	return r.update(id, func(u *models.User) { u.Role = role })
}

func (r *UserRepo) SetProfilePicture(ctx context.Context, id, url, publicID string) (*models.User, error) {
	var before models.User
	err := r.update(id, func(u *models.User) {
		before = *u
		u.ProfilePicture = url
		u.ProfilePicturePublicID = publicID
	})
	if err != nil {
		return nil, err
	}
	return &before, nil
}

func (r *UserRepo) ApplyScoreDelta(ctx context.Context, id string, delta models.ScoreDelta) (*models.User, error) {
	var after models.User
	err := r.update(id, func(u *models.User) {
		u.ApplyScoreDelta(delta)
		after = *u
	})
	if err != nil {
		return nil, err
	}
	return &after, nil
}

func (r *UserRepo) SetScore(ctx context.Context, score, seen models.ProviderScore) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, err := r.get(score.ProviderID)
	if err != nil {
		return err
	}
	if !u.CertificationScore().SameCounters(seen) {
		return apperrors.Conflict("counters of user %s changed during reconciliation", score.ProviderID)
	}
	u.CertificationPoints = score.CertificationPoints
	u.VerifiedCertifications = score.VerifiedCertifications
	u.TotalCertifications = score.TotalCertifications
	u.UpdateLevel()
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepo) SetRatingSummary(ctx context.Context, id string, summary models.RatingSummary) error {
	return r.update(id, func(u *models.User) {
		u.AverageRating = summary.AverageRating
		u.TotalReviews = summary.TotalReviews
	})
}

func (r *UserRepo) SearchProviders(ctx context.Context, criteria models.ProviderSearchCriteria) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	providers := []models.User{}
	for _, u := range r.s.users {
		if u.Role != models.RoleProvider {
			continue
		}
		if criteria.Category != "" && !strings.EqualFold(u.ServiceCategory, criteria.Category) {
			continue
		}
		if criteria.Location != "" && !strings.Contains(strings.ToLower(u.Location), strings.ToLower(criteria.Location)) {
			continue
		}
		if criteria.MinLevel.Valid() && u.CertificationPoints < criteria.MinLevel.MinPoints() {
			continue
		}
		if criteria.MinRating > 0 && u.AverageRating < criteria.MinRating {
			continue
		}
		out := *u
		out.PasswordHash = ""
		out.BankDetails = nil
		out.FCMToken = ""
		providers = append(providers, out)
	}
	sort.Slice(providers, func(i, j int) bool {
		if providers[i].AverageRating != providers[j].AverageRating {
			return providers[i].AverageRating > providers[j].AverageRating
		}
		return providers[i].CertificationPoints > providers[j].CertificationPoints
	})
	limit := criteria.Limit
	if limit <= 0 {
		limit = 20
	}
	return page(providers, limit, criteria.Skip), nil
}

func (r *UserRepo) List(ctx context.Context, role models.Role, limit, skip int64) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := []models.User{}
	for _, u := range r.s.users {
		if role == "" || u.Role == role {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return page(users, limit, skip), nil
}

func (r *UserRepo) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[models.Role]int64{}
	for _, u := range r.s.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (r *UserRepo) ListProviderIDs(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := []string{}
	for id, u := range r.s.users {
		if u.Role == models.RoleProvider {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
