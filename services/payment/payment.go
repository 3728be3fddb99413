package payment

import (
	"context"
	"strings"
	"time"

	"fixerhub/apperrors"
	paymentRepo "fixerhub/database/repository/payment"
	"fixerhub/models"
	"fixerhub/services/events"
	"fixerhub/services/notification"
	"fixerhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// payable reports whether a booking may start a payment.
func payable(b *models.Booking) error {
	switch b.Status {
	case models.BookingQuoteAccepted, models.BookingAccepted, models.BookingCompleted:
	default:
		return apperrors.Conflict("booking in status %s cannot be paid", b.Status)
	}
	switch b.PaymentStatus {
	case models.PaymentUnpaid, models.PaymentFailed, models.PaymentProcessing:
		return nil
	}
	return apperrors.Conflict("booking payment is already %s", b.PaymentStatus)
}

func (s *DefaultPaymentService) currency() models.Currency {
	if s.Currency.Valid() {
		return s.Currency
	}
	return models.CurrencyLKR
}

func (s *DefaultPaymentService) loadForSeeker(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ServiceSeeker != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the booking's seeker can pay")
	}
	return b, nil
}

func (s *DefaultPaymentService) loadForProvider(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ServiceProvider != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the booking's provider can confirm payment")
	}
	return b, nil
}

func (s *DefaultPaymentService) newPayment(b *models.Booking, method models.PaymentMethod) *models.Payment {
	return &models.Payment{
		ID:            uuid.NewString(),
		Booking:       b.ID,
		Payer:         b.ServiceSeeker,
		Payee:         b.ServiceProvider,
		Amount:        b.Price,
		Currency:      s.currency(),
		PaymentMethod: method,
		Status:        models.PaymentStateCreated,
	}
}

// openPayment reuses the booking's open payment when it used the same method, and cancels it
// otherwise.
func (s *DefaultPaymentService) openPayment(ctx context.Context, b *models.Booking, method models.PaymentMethod) (*models.Payment, error) {
	existing, err := s.Repo.FindOpenByBooking(ctx, b.ID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	if err == nil {
		if existing.PaymentMethod == method && existing.Amount == b.Price {
			return existing, nil
		}
		if existing.StripePaymentIntentID != "" {
			if err := s.Gateway.CancelIntent(ctx, existing.StripePaymentIntentID); err != nil {
				utils.GetLogger().Warn("could not cancel superseded intent",
					zap.String("paymentId", existing.ID), zap.String("intent", existing.StripePaymentIntentID), zap.Error(err))
				return nil, apperrors.Conflict("the open card payment could not be cancelled, it may already be completing")
			}
		}
		if _, err := s.Repo.Transition(ctx, existing.ID, models.PaymentStateCancelled, paymentRepo.PaymentChange{}); err != nil && !apperrors.IsConflict(err) {
			return nil, err
		}
		utils.GetLogger().Info("cancelled superseded payment", zap.String("paymentId", existing.ID), zap.String("bookingId", b.ID))
	}
	p := s.newPayment(b, method)
	if err := models.Validate(p); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *DefaultPaymentService) CreateStripeIntent(ctx context.Context, actor models.Actor, bookingID string) (*models.Payment, error) {
	b, err := s.loadForSeeker(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if err := payable(b); err != nil {
		return nil, err
	}
	p, err := s.openPayment(ctx, b, models.MethodStripe)
	if err != nil {
		return nil, err
	}
	if p.StripePaymentIntentID != "" {
		intent, err := s.Gateway.GetIntent(ctx, p.StripePaymentIntentID)
		if err != nil {
			utils.GetLogger().Error("CreateStripeIntent: intent lookup failed", zap.String("bookingId", b.ID), zap.Error(err))
			return nil, apperrors.Internal("card payment could not be resumed", err)
		}
		p.ClientSecret = intent.ClientSecret
		return p, nil
	}

	intent, err := s.Gateway.CreateIntent(ctx, MinorUnits(p.Amount), strings.ToLower(string(p.Currency)), map[string]string{
		"bookingId": b.ID,
		"paymentId": p.ID,
	})
	if err != nil {
		utils.GetLogger().Error("CreateStripeIntent: gateway failed", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, apperrors.Internal("card payment could not be started", err)
	}

	p, err = s.Repo.Transition(ctx, p.ID, models.PaymentStatePendingCustomerAction, paymentRepo.PaymentChange{
		StripePaymentIntentID: intent.ID,
	})
	if err != nil {
		if cancelErr := s.Gateway.CancelIntent(ctx, intent.ID); cancelErr != nil {
			utils.GetLogger().Error("CreateStripeIntent: orphaned intent", zap.String("intent", intent.ID), zap.Error(cancelErr))
		}
		return nil, err
	}
	if err := s.Bookings.SetPaymentStatus(ctx, b.ID, models.PaymentProcessing); err != nil {
		return nil, err
	}
	p.ClientSecret = intent.ClientSecret
	return p, nil
}

func (s *DefaultPaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if event.IntentID == "" {
		utils.GetLogger().Debug("ignoring stripe event", zap.String("type", event.Type))
		return nil
	}

	p, err := s.Repo.GetByStripeIntent(ctx, event.IntentID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			utils.GetLogger().Warn("stripe event for unknown intent", zap.String("intent", event.IntentID))
			return nil
		}
		return err
	}

	switch event.Type {
	case EventIntentSucceeded:
		switch {
		case p.Status == models.PaymentStateConfirmed, p.Status == models.PaymentStateRefunded:
			return nil
		case !p.Status.CanTransitionTo(models.PaymentStateConfirmed):
			return s.refundLateCapture(ctx, p)
		}
		_, err = s.settle(ctx, p, event.IntentID)
		return err
	case EventIntentFailed, EventIntentCanceled:
		if !p.Status.IsOpen() {
			return nil
		}
		return s.fail(ctx, p, event.FailureReason)
	}
	return nil
}

func (s *DefaultPaymentService) SubmitBankTransfer(ctx context.Context, actor models.Actor, bookingID string, sub models.BankTransferSubmission) (*models.Payment, error) {
	if strings.TrimSpace(sub.Reference) == "" {
		return nil, apperrors.Validation("bank reference is required")
	}
	b, err := s.loadForSeeker(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if err := payable(b); err != nil {
		return nil, err
	}
	p, err := s.openPayment(ctx, b, models.MethodBankTransfer)
	if err != nil {
		return nil, err
	}
	p, err = s.Repo.Transition(ctx, p.ID, models.PaymentStatePendingProviderConfirmation, paymentRepo.PaymentChange{
		BankReference: sub.Reference,
		ReceiptURL:    sub.ReceiptURL,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Bookings.SetPaymentStatus(ctx, b.ID, models.PaymentPendingVerification); err != nil {
		return nil, err
	}
	if err := s.Bookings.AddPaymentRecord(ctx, b.ID, models.PaymentRecord{
		Amount:        p.Amount,
		Method:        models.MethodBankTransfer,
		Status:        "pending_verification",
		TransactionID: sub.Reference,
		Notes:         "bank transfer submitted",
		Timestamp:     time.Now(),
	}); err != nil {
		return nil, err
	}
	s.Notifier.Push(ctx, models.PushPayload{
		UserID: b.ServiceProvider,
		Title:  "Bank transfer submitted",
		Body:   "Please confirm receipt of reference " + sub.Reference,
		Data:   map[string]string{"type": "payment", "bookingId": b.ID},
	})
	return p, nil
}

func (s *DefaultPaymentService) ConfirmBankTransfer(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.loadForProvider(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.FindOpenByBooking(ctx, b.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Conflict("no bank transfer is awaiting confirmation")
		}
		return nil, err
	}
	if p.PaymentMethod != models.MethodBankTransfer || p.Status != models.PaymentStatePendingProviderConfirmation {
		return nil, apperrors.Conflict("no bank transfer is awaiting confirmation")
	}
	return s.settle(ctx, p, p.BankReference)
}

func (s *DefaultPaymentService) RejectBankTransfer(ctx context.Context, actor models.Actor, bookingID, reason string) (*models.Payment, error) {
	b, err := s.loadForProvider(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.FindOpenByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if p.PaymentMethod != models.MethodBankTransfer || p.Status != models.PaymentStatePendingProviderConfirmation {
		return nil, apperrors.Conflict("no bank transfer is awaiting confirmation")
	}
	if reason == "" {
		reason = "transfer not received"
	}
	if err := s.fail(ctx, p, reason); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, p.ID)
}

func (s *DefaultPaymentService) ConfirmCash(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.loadForProvider(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if err := payable(b); err != nil {
		return nil, err
	}
	p, err := s.openPayment(ctx, b, models.MethodCash)
	if err != nil {
		return nil, err
	}
	return s.settle(ctx, p, "CASH-"+p.ID[:8])
}

// settle confirms p and marks its booking paid. The booking write is the single atomic
// MarkAsPaid update; the payment record and history entry follow it.
func (s *DefaultPaymentService) settle(ctx context.Context, p *models.Payment, transactionID string) (*models.Booking, error) {
	if !p.Status.CanTransitionTo(models.PaymentStateConfirmed) {
		return nil, apperrors.Conflict("payment cannot move to %s", models.PaymentStateConfirmed)
	}
	b, err := s.Booking.MarkAsPaid(ctx, p.Booking, p.PaymentMethod, transactionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.Transition(ctx, p.ID, models.PaymentStateConfirmed, paymentRepo.PaymentChange{Invoice: b.Invoice}); err != nil {
		utils.GetLogger().Error("settle: booking paid but payment not confirmed",
			zap.String("paymentId", p.ID), zap.String("bookingId", b.ID), zap.Error(err))
		return nil, err
	}
	if err := s.Booking.AddPaymentRecord(ctx, b.ID, models.PaymentRecord{
		Amount:        p.Amount,
		Method:        p.PaymentMethod,
		Status:        "completed",
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}); err != nil {
		return nil, err
	}

	if payer, err := s.Users.GetByID(ctx, b.ServiceSeeker); err == nil && b.Invoice != nil {
		s.Notifier.Email(ctx, notification.InvoiceEmail(payer.Email, b.Invoice))
	}
	return b, nil
}

// refundLateCapture returns money captured for a card payment that was already cancelled or
// failed. The booking stays with whichever payment replaced it.
func (s *DefaultPaymentService) refundLateCapture(ctx context.Context, p *models.Payment) error {
	const reason = "payment superseded"
	refundID, err := s.Gateway.Refund(ctx, p.StripePaymentIntentID, MinorUnits(p.Amount), reason)
	if err != nil {
		return apperrors.Internal("late card capture could not be refunded", err)
	}
	details := &models.RefundDetails{
		Amount:     p.Amount,
		Reason:     reason,
		RefundID:   refundID,
		RefundedAt: time.Now(),
	}
	refunded, err := s.Repo.Transition(ctx, p.ID, models.PaymentStateRefunded, paymentRepo.PaymentChange{Refund: details})
	if err != nil {
		return err
	}
	utils.GetLogger().Warn("refunded late card capture",
		zap.String("paymentId", p.ID), zap.String("bookingId", p.Booking), zap.String("previousStatus", string(p.Status)))
	s.Events.Publish(ctx, events.SubjectPaymentRefunded, refunded.ID, details)
	s.Notifier.Push(ctx, models.PushPayload{
		UserID: p.Payer,
		Title:  "Duplicate payment refunded",
		Body:   "A card payment you no longer needed has been refunded",
		Data:   map[string]string{"type": "payment", "bookingId": p.Booking},
	})
	return nil
}

func (s *DefaultPaymentService) fail(ctx context.Context, p *models.Payment, reason string) error {
	if _, err := s.Repo.Transition(ctx, p.ID, models.PaymentStateFailed, paymentRepo.PaymentChange{FailureReason: reason}); err != nil {
		return err
	}
	if err := s.Bookings.SetPaymentStatus(ctx, p.Booking, models.PaymentFailed); err != nil {
		return err
	}
	if err := s.Booking.AddPaymentRecord(ctx, p.Booking, models.PaymentRecord{
		Amount:        p.Amount,
		Method:        p.PaymentMethod,
		Status:        "failed",
		TransactionID: p.StripePaymentIntentID,
		Notes:         reason,
		Timestamp:     time.Now(),
	}); err != nil {
		return err
	}
	s.Notifier.Push(ctx, models.PushPayload{
		UserID: p.Payer,
		Title:  "Payment failed",
		Body:   reason,
		Data:   map[string]string{"type": "payment", "bookingId": p.Booking},
	})
	return nil
}

// Refund returns money for a settled booking. Only admins may refund.
func (s *DefaultPaymentService) Refund(ctx context.Context, actor models.Actor, bookingID string, req models.RefundRequest) (*models.Payment, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only admins can issue refunds")
	}
	p, err := s.Repo.FindConfirmedByBooking(ctx, bookingID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Conflict("booking has no settled payment to refund")
		}
		return nil, err
	}
	amount := req.Amount
	if amount <= 0 {
		amount = p.Amount
	}
	if amount > p.Amount {
		return nil, apperrors.Validation("refund %.2f exceeds payment %.2f", amount, p.Amount)
	}

	details := &models.RefundDetails{
		Amount:     amount,
		Reason:     req.Reason,
		RefundedBy: actor.ID,
		RefundedAt: time.Now(),
	}
	if p.PaymentMethod == models.MethodStripe && p.StripePaymentIntentID != "" {
		refundID, err := s.Gateway.Refund(ctx, p.StripePaymentIntentID, MinorUnits(amount), req.Reason)
		if err != nil {
			return nil, apperrors.Internal("refund failed at the card processor", err)
		}
		details.RefundID = refundID
	}

	refunded, err := s.Repo.Transition(ctx, p.ID, models.PaymentStateRefunded, paymentRepo.PaymentChange{Refund: details})
	if err != nil {
		return nil, err
	}
	if err := s.Bookings.SetPaymentStatus(ctx, bookingID, models.PaymentRefunded); err != nil {
		return nil, err
	}
	if err := s.Booking.AddPaymentRecord(ctx, bookingID, models.PaymentRecord{
		Amount:        amount,
		Method:        models.MethodRefund,
		Status:        "refunded",
		TransactionID: details.RefundID,
		Notes:         req.Reason,
		Timestamp:     details.RefundedAt,
	}); err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, events.SubjectPaymentRefunded, refunded.ID, details)
	s.Notifier.Push(ctx, models.PushPayload{
		UserID: refunded.Payer,
		Title:  "Refund issued",
		Body:   "Your refund is on its way",
		Data:   map[string]string{"type": "payment", "bookingId": bookingID},
	})
	return refunded, nil
}

func (s *DefaultPaymentService) ListForBooking(ctx context.Context, actor models.Actor, bookingID string) ([]models.Payment, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !b.IsParty(actor.ID) {
		return nil, apperrors.Forbidden("you are not a party to this booking")
	}
	return s.Repo.ListByBooking(ctx, bookingID)
}
