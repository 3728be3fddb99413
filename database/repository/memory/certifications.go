package memory

import (
	"context"
	"sort"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"
)

type CertificationRepo struct{ s *Store }

// applyScore must be called with the store lock held.
func (r *CertificationRepo) applyScore(providerID string, delta models.ScoreDelta) (*models.User, error) {
	u, ok := r.s.users[providerID]
	if !ok {
		return nil, apperrors.NotFound("user", providerID)
	}
	if !delta.IsZero() {
		u.ApplyScoreDelta(delta)
		u.UpdatedAt = time.Now()
	}
	out := *u
	return &out, nil
}

func (r *CertificationRepo) Create(ctx context.Context, cert *models.Certification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.certifications[cert.ID]; ok {
		return apperrors.Conflict("certification already exists")
	}
	if _, err := r.applyScore(cert.ServiceProvider, models.ScoreDelta{TotalCertifications: 1}); err != nil {
		return err
	}
	now := time.Now()
	cert.CreatedAt = now
	cert.UpdatedAt = now
	c := *cert
	r.s.certifications[c.ID] = &c
	return nil
}

func (r *CertificationRepo) GetByID(ctx context.Context, id string) (*models.Certification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.certifications[id]
	if !ok {
		return nil, apperrors.NotFound("certification", id)
	}
	out := *c
	return &out, nil
}

func (r *CertificationRepo) filter(keep func(c *models.Certification) bool) []models.Certification {
	certs := []models.Certification{}
	for _, c := range r.s.certifications {
		if keep(c) {
			certs = append(certs, *c)
		}
	}
	return certs
}

func (r *CertificationRepo) ListByProvider(ctx context.Context, providerID string, status models.CertificationStatus) ([]models.Certification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	certs := r.filter(func(c *models.Certification) bool {
		return c.ServiceProvider == providerID && (status == "" || c.Status == status)
	})
	sort.Slice(certs, func(i, j int) bool { return certs[i].IssueDate.After(certs[j].IssueDate) })
	return certs, nil
}

func (r *CertificationRepo) ListByStatus(ctx context.Context, status models.CertificationStatus, limit, skip int64) ([]models.Certification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	certs := r.filter(func(c *models.Certification) bool { return c.Status == status })
	sort.Slice(certs, func(i, j int) bool { return certs[i].CreatedAt.Before(certs[j].CreatedAt) })
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return page(certs, limit, skip), nil
}

func (r *CertificationRepo) Review(ctx context.Context, id string, review models.CertificationReview) (*models.Certification, *models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.certifications[id]
	if !ok {
		return nil, nil, apperrors.NotFound("certification", id)
	}
	delta := models.ScoreDeltaFor(c.Status, review.Status, c.Points)
	owner, err := r.applyScore(c.ServiceProvider, delta)
	if err != nil {
		return nil, nil, err
	}

	reviewedAt := review.ReviewedAt
	c.Status = review.Status
	c.ReviewedBy = review.ReviewedBy
	c.ReviewedAt = &reviewedAt
	c.RejectionReason = review.RejectionReason
	c.UpdatedAt = reviewedAt
	out := *c
	return &out, owner, nil
}

func (r *CertificationRepo) Delete(ctx context.Context, id string) (*models.Certification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.certifications[id]
	if !ok {
		return nil, apperrors.NotFound("certification", id)
	}
	delta := models.ScoreDeltaFor(c.Status, models.CertificationRejected, c.Points)
	delta.TotalCertifications = -1
	if _, err := r.applyScore(c.ServiceProvider, delta); err != nil {
		return nil, err
	}
	delete(r.s.certifications, id)
	return c, nil
}

func (r *CertificationRepo) ProviderScores(ctx context.Context) ([]models.ProviderScore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byProvider := map[string]*models.ProviderScore{}
	for _, c := range r.s.certifications {
		score, ok := byProvider[c.ServiceProvider]
		if !ok {
			score = &models.ProviderScore{ProviderID: c.ServiceProvider}
			byProvider[c.ServiceProvider] = score
		}
		score.TotalCertifications++
		if c.Status == models.CertificationApproved {
			score.VerifiedCertifications++
			score.CertificationPoints += c.Points
		}
	}
	scores := make([]models.ProviderScore, 0, len(byProvider))
	for _, score := range byProvider {
		scores = append(scores, *score)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].ProviderID < scores[j].ProviderID })
	return scores, nil
}

func (r *CertificationRepo) ProviderScore(ctx context.Context, providerID string) (models.ProviderScore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	score := models.ProviderScore{ProviderID: providerID}
	for _, c := range r.s.certifications {
		if c.ServiceProvider != providerID {
			continue
		}
		score.TotalCertifications++
		if c.Status == models.CertificationApproved {
			score.VerifiedCertifications++
			score.CertificationPoints += c.Points
		}
	}
	return score, nil
}

func (r *CertificationRepo) CountByStatus(ctx context.Context) (map[models.CertificationStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[models.CertificationStatus]int64{}
	for _, c := range r.s.certifications {
		counts[c.Status]++
	}
	return counts, nil
}
