package dispute

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

func (s *DefaultDisputeService) Create(ctx context.Context, actor models.Actor, req models.NewDisputeRequest) (*models.Dispute, error) {
	b, err := s.Bookings.GetByID(ctx, req.Booking)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(actor.ID) {
		return nil, apperrors.Forbidden("only a party to the booking can open a dispute")
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	now := time.Now()
	d := &models.Dispute{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Booking:         b.ID,
		ServiceProvider: b.ServiceProvider,
		ServiceSeeker:   b.ServiceSeeker,
		ReportedBy:      actor.ID,
		Category:        req.Category,
		Priority:        req.Priority,
		Status:          models.DisputeOpen,
		AdminNotes:      []models.AdminNote{},
		Messages:        []models.DisputeMessage{},
		Evidence:        []models.Evidence{},
	}
	if err := models.Validate(d); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, d); err != nil {
		return nil, err
	}

	if err := s.Bookings.AddDispute(ctx, b.ID, models.BookingDispute{
		DisputeID: d.ID,
		Title:     d.Title,
		OpenedBy:  actor.ID,
		CreatedAt: now,
	}); err != nil {
		utils.GetLogger().Error("dispute created but booking not linked",
			zap.String("disputeId", d.ID), zap.String("bookingId", b.ID), zap.Error(err))
		return nil, err
	}

	other := b.ServiceProvider
	if actor.ID == b.ServiceProvider {
		other = b.ServiceSeeker
	}
	s.Notifier.Push(ctx, models.PushPayload{
		UserID: other,
		Title:  "A dispute was opened",
		Body:   d.Title,
		Data:   map[string]string{"type": "dispute", "disputeId": d.ID},
	})
	s.Events.Publish(ctx, events.SubjectDisputeOpened, d.ID, map[string]any{
		"booking":  d.Booking,
		"category": d.Category,
		"priority": d.Priority,
	})
	return d, nil
}

func (s *DefaultDisputeService) Get(ctx context.Context, actor models.Actor, id string) (*models.Dispute, error) {
	d, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !d.IsParty(actor.ID) {
		return nil, apperrors.Forbidden("you are not a party to this dispute")
	}
	return d, nil
}

func (s *DefaultDisputeService) List(ctx context.Context, actor models.Actor, filter models.DisputeFilter) ([]models.Dispute, error) {
	if !actor.IsAdmin() {
		filter.Party = actor.ID
		filter.Assigned = ""
	}
	return s.Repo.List(ctx, filter)
}

func (s *DefaultDisputeService) AddMessage(ctx context.Context, actor models.Actor, id, message string) (*models.Dispute, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.Validation("message is required")
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.Repo.AddMessage(ctx, id, models.NewDisputeMessage(actor.ID, message, actor.IsAdmin(), time.Now()))
}

func (s *DefaultDisputeService) AddEvidence(ctx context.Context, actor models.Actor, id string, file io.Reader) (*models.Dispute, error) {
	d, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if d.Status.IsTerminal() {
		return nil, apperrors.Conflict("dispute is already %s", d.Status)
	}
	stored, err := s.Storage.Upload(ctx, file, storage.FolderEvidence)
	if err != nil {
		return nil, apperrors.Internal("failed to store evidence", err)
	}
	return s.Repo.AddEvidence(ctx, id, models.Evidence{
		URL:        stored.URL,
		PublicID:   stored.PublicID,
		UploadedBy: actor.ID,
		UploadedAt: time.Now(),
	})
}

func (s *DefaultDisputeService) AddAdminNote(ctx context.Context, adminID, id, note string) (*models.Dispute, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.Validation("note is required")
	}
	return s.Repo.AddAdminNote(ctx, id, models.NewAdminNote(note, adminID, time.Now()))
}

func (s *DefaultDisputeService) Assign(ctx context.Context, id, adminID string) (*models.Dispute, error) {
	admin, err := s.Users.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, apperrors.Validation("user %s is not an admin", adminID)
	}
	return s.Repo.Assign(ctx, id, adminID)
}

func (s *DefaultDisputeService) UpdateStatus(ctx context.Context, id string, status models.DisputeStatus) (*models.Dispute, error) {
	switch status {
	case models.DisputeUnderReview, models.DisputeClosed:
	case models.DisputeResolved:
		return nil, apperrors.Validation("use the resolve endpoint to resolve a dispute")
	default:
		return nil, apperrors.Validation("cannot move a dispute to %q", status)
	}
	return s.Repo.UpdateStatus(ctx, id, status)
}

func (s *DefaultDisputeService) Resolve(ctx context.Context, adminID, id string, req models.ResolveDisputeRequest) (*models.Dispute, error) {
	req.Resolution = strings.TrimSpace(req.Resolution)
	if req.Resolution == "" {
		return nil, apperrors.Validation("resolution is required")
	}
	if req.Outcome != nil && !req.Outcome.Valid() {
		return nil, apperrors.Validation("unknown outcome %q", *req.Outcome)
	}
	if req.OutcomeAmount != nil && *req.OutcomeAmount < 0 {
		return nil, apperrors.Validation("outcomeAmount must not be negative")
	}

	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, apperrors.Conflict("dispute is already %s", current.Status)
	}

	if req.Outcome != nil && req.Outcome.MovesMoney() {
		refund := models.RefundRequest{Reason: "dispute " + current.ID + ": " + req.Resolution}
		if *req.Outcome == models.OutcomePartialRefund && (req.OutcomeAmount == nil || *req.OutcomeAmount <= 0) {
			return nil, apperrors.Validation("a partial refund needs an outcomeAmount")
		}
		// Without an amount a refund returns the whole payment.
		if req.OutcomeAmount != nil {
			refund.Amount = *req.OutcomeAmount
		}
		p, err := s.Refunds.Refund(ctx, models.Actor{ID: adminID, Role: models.RoleAdmin}, current.Booking, refund)
		if err != nil {
			return nil, err
		}
		// Record what was actually returned.
		if p.RefundDetails != nil {
			amount := p.RefundDetails.Amount
			req.OutcomeAmount = &amount
		}
	}

	d, err := s.Repo.Resolve(ctx, id, models.NewResolution(req.Resolution, adminID, req.Outcome, req.OutcomeAmount, time.Now()))
	if err != nil {
		return nil, err
	}

	for _, party := range []string{d.ServiceSeeker, d.ServiceProvider} {
		u, err := s.Users.GetByID(ctx, party)
		if err != nil {
			utils.GetLogger().Warn("dispute resolved but party lookup failed", zap.String("user", party), zap.Error(err))
			continue
		}
		s.Notifier.Email(ctx, notification.DisputeResolvedEmail(u.Email, d.Title, d.Resolution))
	}
	s.Events.Publish(ctx, events.SubjectDisputeResolved, d.ID, map[string]any{
		"booking":       d.Booking,
		"outcome":       d.Outcome,
		"outcomeAmount": d.OutcomeAmount,
	})
	return d, nil
}
