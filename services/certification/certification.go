package certification

import (
	"context"
	"io"
	"strings"
	"time"

	"fixerhub/apperrors"
	"fixerhub/models"
	"fixerhub/services/events"
	"fixerhub/services/notification"
	"fixerhub/services/storage"
	"fixerhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// fromUpload converts the multipart form into a pending certification.
func fromUpload(providerID string, form models.CertificationUpload) (*models.Certification, error) {
	issued, err := time.Parse(dateLayout, form.IssueDate)
	if err != nil {
		return nil, apperrors.Validation("issueDate must be YYYY-MM-DD")
	}
	cert := &models.Certification{
		ID:                  uuid.NewString(),
		ServiceProvider:     providerID,
		Title:               strings.TrimSpace(form.Title),
		IssuingOrganization: strings.TrimSpace(form.IssuingOrganization),
		CertificateNumber:   strings.TrimSpace(form.CertificateNumber),
		IssueDate:           issued,
		Category:            models.CertificationCategory(form.Category),
		Points:              form.Points,
	}
	if form.ExpiryDate != "" {
		expiry, err := time.Parse(dateLayout, form.ExpiryDate)
		if err != nil {
			return nil, apperrors.Validation("expiryDate must be YYYY-MM-DD")
		}
		if expiry.Before(issued) {
			return nil, apperrors.Validation("expiryDate is before issueDate")
		}
		cert.ExpiryDate = &expiry
	}
	cert.ApplyDefaults()
	return cert, nil
}

func (s *DefaultCertificationService) Upload(ctx context.Context, providerID string, form models.CertificationUpload, document io.Reader) (*models.Certification, error) {
	owner, err := s.Users.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if !owner.IsProvider() {
		return nil, apperrors.Forbidden("only service providers can upload certifications")
	}
	cert, err := fromUpload(providerID, form)
	if err != nil {
		return nil, err
	}
	// Validate the metadata before uploading; the real URL replaces this afterwards.
	cert.DocumentFile = "pending"
	if err := models.Validate(cert); err != nil {
		return nil, err
	}

	stored, err := s.Storage.Upload(ctx, document, storage.FolderCertifications)
	if err != nil {
		return nil, apperrors.Internal("failed to store certification document", err)
	}
	cert.DocumentFile = stored.URL
	cert.DocumentPublicID = stored.PublicID

	if err := s.Repo.Create(ctx, cert); err != nil {
		if delErr := s.Storage.Delete(ctx, stored.PublicID); delErr != nil {
			utils.GetLogger().Warn("failed to remove orphaned document", zap.String("publicId", stored.PublicID), zap.Error(delErr))
		}
		return nil, err
	}
	s.Events.Publish(ctx, events.SubjectCertificationCreated, cert.ID, map[string]any{
		"serviceProvider": cert.ServiceProvider,
		"points":          cert.Points,
	})
	return cert, nil
}

func (s *DefaultCertificationService) Get(ctx context.Context, actor models.Actor, id string) (*models.Certification, error) {
	cert, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.ServiceProvider != actor.ID && !actor.IsAdmin() && cert.Status != models.CertificationApproved {
		return nil, apperrors.NotFound("certification", id)
	}
	return cert, nil
}

func (s *DefaultCertificationService) ListMine(ctx context.Context, providerID string, status models.CertificationStatus) ([]models.Certification, error) {
	return s.Repo.ListByProvider(ctx, providerID, status)
}

func (s *DefaultCertificationService) ListActive(ctx context.Context, providerID string) ([]models.Certification, error) {
	certs, err := s.Repo.ListByProvider(ctx, providerID, models.CertificationApproved)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	active := certs[:0]
	for _, c := range certs {
		if c.IsActive(now) {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *DefaultCertificationService) ListPending(ctx context.Context, limit, skip int64) ([]models.Certification, error) {
	return s.Repo.ListByStatus(ctx, models.CertificationPending, limit, skip)
}

func (s *DefaultCertificationService) Approve(ctx context.Context, adminID, id string) (*models.Certification, error) {
	return s.review(ctx, id, models.CertificationReview{
		Status:     models.CertificationApproved,
		ReviewedBy: adminID,
		ReviewedAt: time.Now(),
	})
}

// Reject also revokes an approved certification, withdrawing its points.
func (s *DefaultCertificationService) Reject(ctx context.Context, adminID, id, reason string) (*models.Certification, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.Validation("a rejection reason is required")
	}
	return s.review(ctx, id, models.CertificationReview{
		Status:          models.CertificationRejected,
		ReviewedBy:      adminID,
		ReviewedAt:      time.Now(),
		RejectionReason: reason,
	})
}

func (s *DefaultCertificationService) review(ctx context.Context, id string, review models.CertificationReview) (*models.Certification, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == review.Status {
		return nil, apperrors.Conflict("certification is already %s", current.Status)
	}

	cert, owner, err := s.Repo.Review(ctx, id, review)
	if err != nil {
		utils.GetLogger().Error("certification review failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	utils.GetLogger().Info("certification reviewed",
		zap.String("id", cert.ID),
		zap.String("status", string(cert.Status)),
		zap.String("provider", owner.ID),
		zap.Int("points", owner.CertificationPoints),
		zap.String("level", string(owner.CertificationLevel)),
	)

	s.Notifier.Email(ctx, notification.CertificationReviewedEmail(owner.Email, cert.Title, cert.Status, cert.RejectionReason))
	s.Notifier.Push(ctx, models.PushPayload{
		UserID: owner.ID,
		Title:  "Certification " + string(cert.Status),
		Body:   cert.Title,
		Data:   map[string]string{"type": "certification", "certificationId": cert.ID},
	})
	s.Events.Publish(ctx, events.SubjectCertificationUpdated, cert.ID, map[string]any{
		"status":             cert.Status,
		"serviceProvider":    owner.ID,
		"certificationLevel": owner.CertificationLevel,
	})
	return cert, nil
}

func (s *DefaultCertificationService) Delete(ctx context.Context, actor models.Actor, id string) error {
	cert, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cert.ServiceProvider != actor.ID && !actor.IsAdmin() {
		return apperrors.Forbidden("you cannot delete this certification")
	}
	deleted, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted.DocumentPublicID != "" && s.Storage != nil {
		if err := s.Storage.Delete(ctx, deleted.DocumentPublicID); err != nil {
			utils.GetLogger().Warn("failed to delete certification document", zap.String("id", id), zap.Error(err))
		}
	}
	return nil
}
