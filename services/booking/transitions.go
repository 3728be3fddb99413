package booking

import (
	"context"
	"time"

	"fixerhub/apperrors"
	bookingRepo "fixerhub/database/repository/booking"
	"fixerhub/models"
	"fixerhub/services/events"
)

type party int

const (
	seeker party = iota
	provider
	either
)

// transition loads the booking, checks that actor may act as who, validates the move against
// the transition table, and applies it guarded by the status that was read.
func (s *DefaultBookingService) transition(ctx context.Context, actor models.Actor, id string, who party, to models.BookingStatus, change bookingRepo.StatusChange) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		allowed := (who == seeker && b.ServiceSeeker == actor.ID) ||
			(who == provider && b.ServiceProvider == actor.ID) ||
			(who == either && b.IsParty(actor.ID))
		if !allowed {
			return nil, apperrors.Forbidden("you cannot change this booking")
		}
	}
	if !b.Status.CanTransitionTo(to) {
		return nil, apperrors.Conflict("booking cannot move from %s to %s", b.Status, to)
	}

	change.From = b.Status
	change.To = to
	updated, err := s.Repo.TransitionStatus(ctx, id, change)
	if err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, events.SubjectBookingStatus, updated.ID, map[string]any{"from": change.From, "status": to})
	other := updated.ServiceProvider
	if actor.ID == updated.ServiceProvider {
		other = updated.ServiceSeeker
	}
	s.notify(ctx, other, "Booking update", "Your booking is now "+string(to), updated)
	return updated, nil
}

func (s *DefaultBookingService) RequestQuote(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, seeker, models.BookingQuoteRequested, bookingRepo.StatusChange{})
}

func (s *DefaultBookingService) SendQuote(ctx context.Context, actor models.Actor, id string, q QuoteRequest) (*models.Booking, error) {
	if q.Amount <= 0 {
		return nil, apperrors.Validation("quote amount must be positive")
	}
	now := time.Now()
	quotation := &models.Quotation{Amount: q.Amount, Notes: q.Notes, SentAt: now}
	if q.ValidForDays > 0 {
		quotation.ValidTo = now.AddDate(0, 0, q.ValidForDays)
	}
	amount := q.Amount
	return s.transition(ctx, actor, id, provider, models.BookingQuoteSent, bookingRepo.StatusChange{
		Price:     &amount,
		Quotation: quotation,
	})
}

func (s *DefaultBookingService) AcceptQuote(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Quotation != nil && !b.Quotation.ValidTo.IsZero() && time.Now().After(b.Quotation.ValidTo) {
		return nil, apperrors.Conflict("quotation expired on %s", b.Quotation.ValidTo.Format("2006-01-02"))
	}
	return s.transition(ctx, actor, id, seeker, models.BookingQuoteAccepted, bookingRepo.StatusChange{})
}

func (s *DefaultBookingService) DeclineQuote(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, seeker, models.BookingDeclined, bookingRepo.StatusChange{})
}

func (s *DefaultBookingService) Accept(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, provider, models.BookingAccepted, bookingRepo.StatusChange{})
}

func (s *DefaultBookingService) Decline(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, provider, models.BookingDeclined, bookingRepo.StatusChange{})
}

func (s *DefaultBookingService) Complete(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, provider, models.BookingCompleted, bookingRepo.StatusChange{})
}

func (s *DefaultBookingService) Cancel(ctx context.Context, actor models.Actor, id, reason string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, either, models.BookingCancelled, bookingRepo.StatusChange{CancelReason: reason})
}
