package dispute

import (
	"context"
	"strings"
	"sync"
	"testing"

	"fixerhub/apperrors"
	"fixerhub/database/repository"
	"fixerhub/database/repository/memory"
	"fixerhub/models"
	"fixerhub/services/events"
)

type fakeRefunder struct {
	calls []models.RefundRequest
	err   error
}

func (r *fakeRefunder) Refund(_ context.Context, actor models.Actor, bookingID string, req models.RefundRequest) (*models.Payment, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.calls = append(r.calls, req)
	amount := req.Amount
	if amount == 0 {
		amount = 3000
	}
	return &models.Payment{
		Booking:       bookingID,
		Status:        models.PaymentStateRefunded,
		RefundDetails: &models.RefundDetails{Amount: amount, Reason: req.Reason, RefundedBy: actor.ID},
	}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	pushes []models.PushPayload
	emails []models.EmailPayload
}

func (n *recordingNotifier) Push(_ context.Context, p models.PushPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, p)
}

func (n *recordingNotifier) Email(_ context.Context, e models.EmailPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, e)
}

var (
	seeker   = models.Actor{ID: "seeker-1", Role: models.RoleSeeker}
	provider = models.Actor{ID: "provider-1", Role: models.RoleProvider}
	admin    = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
	stranger = models.Actor{ID: "seeker-2", Role: models.RoleSeeker}
)

type fixture struct {
	svc      *DefaultDisputeService
	repos    repository.Repositories
	refunds  *fakeRefunder
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	users := []*models.User{
		{ID: seeker.ID, Name: "Nimal", Email: "nimal@example.lk", Role: models.RoleSeeker},
		{ID: stranger.ID, Name: "Kamal", Email: "kamal@example.lk", Role: models.RoleSeeker},
		{ID: provider.ID, Name: "Sunil", Email: "sunil@example.lk", Role: models.RoleProvider},
		{ID: admin.ID, Name: "Admin", Email: "admin@example.lk", Role: models.RoleAdmin},
	}
	for _, u := range users {
		if err := repos.Users.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	b := &models.Booking{
		ID:              "booking-1",
		ServiceSeeker:   seeker.ID,
		ServiceProvider: provider.ID,
		Date:            "2024-06-01",
		Time:            "10:00",
		Description:     "Fix the leaking tap",
		Price:           3000,
		Status:          models.BookingCompleted,
		PaymentStatus:   models.PaymentPaid,
	}
	if err := repos.Bookings.Create(ctx, b); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	refunds := &fakeRefunder{}
	n := &recordingNotifier{}
	return &fixture{
		svc: &DefaultDisputeService{
			Repo:     repos.Disputes,
			Bookings: repos.Bookings,
			Users:    repos.Users,
			Refunds:  refunds,
			Notifier: n,
			Events:   events.Noop{},
		},
		repos:    repos,
		refunds:  refunds,
		notifier: n,
	}
}

func (f *fixture) open(t *testing.T) *models.Dispute {
	t.Helper()
	d, err := f.svc.Create(context.Background(), seeker, models.NewDisputeRequest{
		Booking:     "booking-1",
		Title:       "  Tap still leaks  ",
		Description: "The tap started leaking again the next day.",
		Category:    models.DisputeServiceQuality,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return d
}

func TestCreateLinksBookingAndNotifiesOtherParty(t *testing.T) {
	f := newFixture(t)
	d := f.open(t)

	if d.Status != models.DisputeOpen || d.Priority != models.PriorityMedium {
		t.Fatalf("got status %s priority %s", d.Status, d.Priority)
	}
	if d.Title != "Tap still leaks" || d.ReportedBy != seeker.ID || d.ServiceProvider != provider.ID {
		t.Fatalf("unexpected dispute %+v", d)
	}

	b, err := f.repos.Bookings.GetByID(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(b.Disputes) != 1 || b.Disputes[0].DisputeID != d.ID {
		t.Fatalf("booking disputes = %+v", b.Disputes)
	}
	if b.PaymentStatus != models.PaymentDisputed {
		t.Fatalf("payment status = %s, want disputed", b.PaymentStatus)
	}
	if len(f.notifier.pushes) != 1 || f.notifier.pushes[0].UserID != provider.ID {
		t.Fatalf("pushes = %+v", f.notifier.pushes)
	}
}

func TestCreateRequiresParty(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), stranger, models.NewDisputeRequest{
		Booking:     "booking-1",
		Title:       "Not mine",
		Description: "Not my booking",
		Category:    models.DisputeOther,
	})
	if apperrors.KindOf(err) != apperrors.KindForbidden {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), seeker, models.NewDisputeRequest{
		Booking:     "booking-1",
		Title:       "Odd",
		Description: "Odd category",
		Category:    "weather",
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestVisibilityAndMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.open(t)

	if _, err := f.svc.Get(ctx, stranger, d.ID); apperrors.KindOf(err) != apperrors.KindForbidden {
		t.Fatalf("stranger Get: got %v, want forbidden", err)
	}
	if _, err := f.svc.Get(ctx, admin, d.ID); err != nil {
		t.Fatalf("admin Get: %v", err)
	}

	if _, err := f.svc.AddMessage(ctx, provider, d.ID, "   "); !apperrors.IsValidation(err) {
		t.Fatalf("blank message: got %v, want validation error", err)
	}
	if _, err := f.svc.AddMessage(ctx, provider, d.ID, "I will come back tomorrow"); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	got, err := f.svc.AddMessage(ctx, admin, d.ID, "Please confirm once fixed")
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if len(got.Messages) != 2 || got.Messages[0].IsAdmin || !got.Messages[1].IsAdmin {
		t.Fatalf("messages = %+v", got.Messages)
	}

	list, err := f.svc.List(ctx, stranger, models.DisputeFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("stranger sees %d disputes", len(list))
	}
	list, err = f.svc.List(ctx, provider, models.DisputeFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("provider sees %d disputes, want 1", len(list))
	}
}

func TestAssignRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.open(t)

	if _, err := f.svc.Assign(ctx, d.ID, provider.ID); !apperrors.IsValidation(err) {
		t.Fatalf("assign to provider: got %v, want validation error", err)
	}
	got, err := f.svc.Assign(ctx, d.ID, admin.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if got.AssignedAdmin != admin.ID || got.Status != models.DisputeUnderReview {
		t.Fatalf("got admin %q status %s", got.AssignedAdmin, got.Status)
	}
}

func TestUpdateStatusRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.open(t)

	if _, err := f.svc.UpdateStatus(ctx, d.ID, models.DisputeResolved); !apperrors.IsValidation(err) {
		t.Fatalf("resolve via status: got %v, want validation error", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, d.ID, models.DisputeOpen); !apperrors.IsValidation(err) {
		t.Fatalf("reopen: got %v, want validation error", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, d.ID, models.DisputeClosed); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, d.ID, models.DisputeClosed); !apperrors.IsConflict(err) {
		t.Fatalf("close twice: got %v, want conflict", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, d.ID, models.DisputeUnderReview); !apperrors.IsConflict(err) {
		t.Fatalf("review closed: got %v, want conflict", err)
	}
}

func TestResolveWithoutMoney(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.open(t)

	outcome := models.OutcomeWarning
	got, err := f.svc.Resolve(ctx, admin.ID, d.ID, models.ResolveDisputeRequest{
		Resolution: "Provider warned",
		Outcome:    &outcome,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Status != models.DisputeResolved || got.ResolvedBy != admin.ID || got.ResolvedAt == nil {
		t.Fatalf("unexpected resolution %+v", got)
	}
	if len(f.refunds.calls) != 0 {
		t.Fatalf("refunder called %d times", len(f.refunds.calls))
	}
	if len(f.notifier.emails) != 2 {
		t.Fatalf("sent %d emails, want 2", len(f.notifier.emails))
	}

	if _, err := f.svc.Resolve(ctx, admin.ID, d.ID, models.ResolveDisputeRequest{Resolution: "Again"}); !apperrors.IsConflict(err) {
		t.Fatalf("resolve twice: got %v, want conflict", err)
	}
}

func TestResolveWithRefundRecordsAmount(t *testing.T) {
	f := newFixture(t)
	d := f.open(t)

	outcome := models.OutcomeRefund
	got, err := f.svc.Resolve(context.Background(), admin.ID, d.ID, models.ResolveDisputeRequest{
		Resolution: "Full refund",
		Outcome:    &outcome,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(f.refunds.calls) != 1 || f.refunds.calls[0].Amount != 0 {
		t.Fatalf("refund calls = %+v", f.refunds.calls)
	}
	if !strings.Contains(f.refunds.calls[0].Reason, d.ID) {
		t.Fatalf("refund reason %q does not name the dispute", f.refunds.calls[0].Reason)
	}
	if got.OutcomeAmount == nil || *got.OutcomeAmount != 3000 {
		t.Fatalf("outcome amount = %v, want 3000", got.OutcomeAmount)
	}
}

func TestResolveRefundWithAmountRefundsThatAmount(t *testing.T) {
	f := newFixture(t)
	d := f.open(t)

	outcome := models.OutcomeRefund
	amount := 500.0
	got, err := f.svc.Resolve(context.Background(), admin.ID, d.ID, models.ResolveDisputeRequest{
		Resolution:    "Refund the call-out fee",
		Outcome:       &outcome,
		OutcomeAmount: &amount,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(f.refunds.calls) != 1 || f.refunds.calls[0].Amount != 500 {
		t.Fatalf("refund calls = %+v", f.refunds.calls)
	}
	if got.OutcomeAmount == nil || *got.OutcomeAmount != 500 {
		t.Fatalf("outcome amount = %v, want 500", got.OutcomeAmount)
	}
}

func TestResolvePartialRefundNeedsAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.open(t)

	outcome := models.OutcomePartialRefund
	if _, err := f.svc.Resolve(ctx, admin.ID, d.ID, models.ResolveDisputeRequest{
		Resolution: "Half back",
		Outcome:    &outcome,
	}); !apperrors.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}

	amount := 1500.0
	got, err := f.svc.Resolve(ctx, admin.ID, d.ID, models.ResolveDisputeRequest{
		Resolution:    "Half back",
		Outcome:       &outcome,
		OutcomeAmount: &amount,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(f.refunds.calls) != 1 || f.refunds.calls[0].Amount != 1500 {
		t.Fatalf("refund calls = %+v", f.refunds.calls)
	}
	if *got.OutcomeAmount != 1500 {
		t.Fatalf("outcome amount = %v", *got.OutcomeAmount)
	}
}

func TestResolveKeepsDisputeOpenWhenRefundFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.open(t)
	f.refunds.err = apperrors.Conflict("booking has no settled payment to refund")

	outcome := models.OutcomeRefund
	_, err := f.svc.Resolve(ctx, admin.ID, d.ID, models.ResolveDisputeRequest{Resolution: "Refund", Outcome: &outcome})
	if !apperrors.IsConflict(err) {
		t.Fatalf("got %v, want conflict", err)
	}
	got, err := f.svc.Get(ctx, admin, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.DisputeOpen {
		t.Fatalf("status = %s, want open", got.Status)
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.open(t)

	bogus := models.DisputeOutcome("jail")
	negative := -1.0
	for name, req := range map[string]models.ResolveDisputeRequest{
		"blank":    {Resolution: "  "},
		"outcome":  {Resolution: "x", Outcome: &bogus},
		"negative": {Resolution: "x", OutcomeAmount: &negative},
	} {
		if _, err := f.svc.Resolve(ctx, admin.ID, d.ID, req); !apperrors.IsValidation(err) {
			t.Errorf("%s: got %v, want validation error", name, err)
		}
	}
	if _, err := f.svc.Resolve(ctx, admin.ID, "missing", models.ResolveDisputeRequest{Resolution: "x"}); !apperrors.IsNotFound(err) {
		t.Fatalf("missing: got %v, want not found", err)
	}
}
