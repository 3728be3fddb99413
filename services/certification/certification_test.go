package certification

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"fixerhub/apperrors"
	"fixerhub/database/repository"
	certificationRepo "fixerhub/database/repository/certification"
	"fixerhub/database/repository/memory"
	"fixerhub/models"
	"fixerhub/services/events"
	"fixerhub/services/notification"
	"fixerhub/services/storage"
)

type fakeStorage struct {
	mu      sync.Mutex
	n       int
	deleted []string
}

func (s *fakeStorage) Upload(_ context.Context, file io.Reader, folder string) (storage.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	id := fmt.Sprintf("%s/doc-%d", folder, s.n)
	return storage.StoredFile{URL: "https://files.example.com/" + id, PublicID: id}, nil
}

func (s *fakeStorage) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, publicID)
	return nil
}

const (
	providerID = "provider-1"
	adminID    = "admin-1"
)

func newService(t *testing.T) (*DefaultCertificationService, repository.Repositories, *fakeStorage) {
	t.Helper()
	repos := memory.NewStore().Repositories()
	ctx := context.Background()
	users := []*models.User{
		{ID: providerID, Name: "Sunil", Email: "sunil@example.lk", Role: models.RoleProvider},
		{ID: "seeker-1", Name: "Nimal", Email: "nimal@example.lk", Role: models.RoleSeeker},
		{ID: adminID, Name: "Admin", Email: "admin@example.lk", Role: models.RoleAdmin},
	}
	for _, u := range users {
		if err := repos.Users.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	store := &fakeStorage{}
	svc := &DefaultCertificationService{
		Repo:     repos.Certifications,
		Users:    repos.Users,
		Storage:  store,
		Notifier: notification.Discard{},
		Events:   events.Noop{},
	}
	return svc, repos, store
}

func upload(t *testing.T, svc *DefaultCertificationService, points int) *models.Certification {
	t.Helper()
	cert, err := svc.Upload(context.Background(), providerID, models.CertificationUpload{
		Title:               "NVQ Level 4 Plumbing",
		IssuingOrganization: "TVEC",
		IssueDate:           "2022-01-15",
		Category:            string(models.CategoryTrade),
		Points:              points,
	}, strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return cert
}

func provider(t *testing.T, repos repository.Repositories) *models.User {
	t.Helper()
	u, err := repos.Users.GetByID(context.Background(), providerID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return u
}

func TestApproveThenRejectRestoresScore(t *testing.T) {
	svc, repos, _ := newService(t)
	ctx := context.Background()

	cert := upload(t, svc, 60)
	if cert.Status != models.CertificationPending {
		t.Fatalf("status = %s", cert.Status)
	}
	if u := provider(t, repos); u.TotalCertifications != 1 || u.CertificationPoints != 0 {
		t.Fatalf("after upload: %+v", u)
	}

	if _, err := svc.Approve(ctx, adminID, cert.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	u := provider(t, repos)
	if u.CertificationPoints != 60 || u.CertificationLevel != models.LevelSilver || u.VerifiedCertifications != 1 {
		t.Fatalf("after approve: points=%d level=%s verified=%d", u.CertificationPoints, u.CertificationLevel, u.VerifiedCertifications)
	}

	rejected, err := svc.Reject(ctx, adminID, cert.ID, "document is illegible")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.RejectionReason != "document is illegible" || rejected.ReviewedBy != adminID {
		t.Fatalf("rejected = %+v", rejected)
	}
	u = provider(t, repos)
	if u.CertificationPoints != 0 || u.CertificationLevel != models.LevelBronze || u.VerifiedCertifications != 0 {
		t.Fatalf("after reject: points=%d level=%s verified=%d", u.CertificationPoints, u.CertificationLevel, u.VerifiedCertifications)
	}
}

func TestReviewTwiceConflicts(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	cert := upload(t, svc, 10)

	if _, err := svc.Approve(ctx, adminID, cert.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := svc.Approve(ctx, adminID, cert.ID); !apperrors.IsConflict(err) {
		t.Fatalf("second approval should conflict, got %v", err)
	}
	if _, err := svc.Reject(ctx, adminID, cert.ID, "  "); !apperrors.IsValidation(err) {
		t.Fatalf("blank reason should be rejected, got %v", err)
	}
}

func TestConcurrentApprovalsKeepEveryPoint(t *testing.T) {
	svc, repos, _ := newService(t)
	ctx := context.Background()

	const n = 20
	certs := make([]*models.Certification, n)
	for i := range certs {
		certs[i] = upload(t, svc, 5)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, c := range certs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := svc.Approve(ctx, adminID, id); err != nil {
				errs <- err
			}
		}(c.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Approve: %v", err)
	}

	u := provider(t, repos)
	if u.CertificationPoints != 5*n || u.VerifiedCertifications != n {
		t.Fatalf("points=%d verified=%d, want %d/%d", u.CertificationPoints, u.VerifiedCertifications, 5*n, n)
	}
	if u.CertificationLevel != models.LevelSilver {
		t.Fatalf("level = %s", u.CertificationLevel)
	}
}

func TestUploadRules(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "seeker-1", models.CertificationUpload{
		Title: "First Aid", IssuingOrganization: "Red Cross", IssueDate: "2023-01-01",
	}, strings.NewReader("x"))
	if apperrors.KindOf(err) != apperrors.KindForbidden {
		t.Fatalf("seeker upload should be forbidden, got %v", err)
	}

	_, err = svc.Upload(ctx, providerID, models.CertificationUpload{
		Title: "First Aid", IssuingOrganization: "Red Cross", IssueDate: "2023-01-01", ExpiryDate: "2022-01-01",
	}, strings.NewReader("x"))
	if !apperrors.IsValidation(err) {
		t.Fatalf("expiry before issue should be invalid, got %v", err)
	}

	_, err = svc.Upload(ctx, providerID, models.CertificationUpload{
		Title: "First Aid", IssuingOrganization: "Red Cross", IssueDate: "2023-01-01", Points: 500,
	}, strings.NewReader("x"))
	if !apperrors.IsValidation(err) {
		t.Fatalf("points above the maximum should be invalid, got %v", err)
	}

	cert := upload(t, svc, 0)
	if cert.Points != models.DefaultCertificationPoints || cert.DocumentFile == "pending" {
		t.Fatalf("defaults/document not applied: %+v", cert)
	}
}

func TestGetHidesUnapprovedFromOthers(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	cert := upload(t, svc, 10)

	stranger := models.Actor{ID: "seeker-1", Role: models.RoleSeeker}
	if _, err := svc.Get(ctx, stranger, cert.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("pending certificate visible to stranger: %v", err)
	}
	if _, err := svc.Get(ctx, models.Actor{ID: providerID, Role: models.RoleProvider}, cert.ID); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	if _, err := svc.Approve(ctx, adminID, cert.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := svc.Get(ctx, stranger, cert.ID); err != nil {
		t.Fatalf("approved certificate hidden: %v", err)
	}
}

func TestDeleteApprovedWithdrawsPoints(t *testing.T) {
	svc, repos, store := newService(t)
	ctx := context.Background()
	cert := upload(t, svc, 40)
	if _, err := svc.Approve(ctx, adminID, cert.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if err := svc.Delete(ctx, models.Actor{ID: "seeker-1", Role: models.RoleSeeker}, cert.ID); apperrors.KindOf(err) != apperrors.KindForbidden {
		t.Fatalf("stranger delete should be forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, models.Actor{ID: providerID, Role: models.RoleProvider}, cert.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	u := provider(t, repos)
	if u.CertificationPoints != 0 || u.VerifiedCertifications != 0 || u.TotalCertifications != 0 {
		t.Fatalf("after delete: %+v", u)
	}
	if len(store.deleted) != 1 || store.deleted[0] != cert.DocumentPublicID {
		t.Fatalf("document not removed: %v", store.deleted)
	}
}

func TestReconcileRepairsDrift(t *testing.T) {
	svc, repos, _ := newService(t)
	ctx := context.Background()
	cert := upload(t, svc, 30)
	if _, err := svc.Approve(ctx, adminID, cert.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	if _, err := repos.Users.ApplyScoreDelta(ctx, providerID, models.ScoreDelta{CertificationPoints: 200}); err != nil {
		t.Fatalf("ApplyScoreDelta: %v", err)
	}

	changed, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}
	u := provider(t, repos)
	if u.CertificationPoints != 30 || u.CertificationLevel != models.LevelBronze {
		t.Fatalf("after reconcile: points=%d level=%s", u.CertificationPoints, u.CertificationLevel)
	}

	if changed, err = svc.Reconcile(ctx); err != nil || changed != 0 {
		t.Fatalf("second Reconcile changed=%d err=%v", changed, err)
	}
}

// racingRepo runs a hook once at a chosen point of reconciliation.
type racingRepo struct {
	certificationRepo.CertificationRepository
	afterScores func()
	beforeScore func()
}

func (r *racingRepo) ProviderScores(ctx context.Context) ([]models.ProviderScore, error) {
	scores, err := r.CertificationRepository.ProviderScores(ctx)
	if r.afterScores != nil {
		hook := r.afterScores
		r.afterScores = nil
		hook()
	}
	return scores, err
}

func (r *racingRepo) ProviderScore(ctx context.Context, id string) (models.ProviderScore, error) {
	if r.beforeScore != nil {
		hook := r.beforeScore
		r.beforeScore = nil
		hook()
	}
	return r.CertificationRepository.ProviderScore(ctx, id)
}

func TestReconcileKeepsApprovalAfterSnapshot(t *testing.T) {
	svc, repos, _ := newService(t)
	ctx := context.Background()
	cert := upload(t, svc, 30)

	svc.Repo = &racingRepo{
		CertificationRepository: repos.Certifications,
		afterScores: func() {
			if _, err := svc.Approve(ctx, adminID, cert.ID); err != nil {
				t.Fatalf("Approve: %v", err)
			}
		},
	}
	changed, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if changed != 0 {
		t.Fatalf("changed = %d, want 0", changed)
	}
	u := provider(t, repos)
	if u.CertificationPoints != 30 || u.VerifiedCertifications != 1 || u.TotalCertifications != 1 {
		t.Fatalf("points=%d verified=%d total=%d", u.CertificationPoints, u.VerifiedCertifications, u.TotalCertifications)
	}
}

func TestReconcileSkipsProviderWhoseCountersMoved(t *testing.T) {
	svc, repos, _ := newService(t)
	ctx := context.Background()
	cert := upload(t, svc, 30)
	if _, err := repos.Users.ApplyScoreDelta(ctx, providerID, models.ScoreDelta{CertificationPoints: 200}); err != nil {
		t.Fatalf("ApplyScoreDelta: %v", err)
	}

	svc.Repo = &racingRepo{
		CertificationRepository: repos.Certifications,
		beforeScore: func() {
			if _, err := svc.Approve(ctx, adminID, cert.ID); err != nil {
				t.Fatalf("Approve: %v", err)
			}
		},
	}
	changed, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	u := provider(t, repos)
	if changed != 0 || u.CertificationPoints != 230 || u.VerifiedCertifications != 1 {
		t.Fatalf("changed=%d points=%d verified=%d", changed, u.CertificationPoints, u.VerifiedCertifications)
	}

	changed, err = svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	u = provider(t, repos)
	if changed != 1 || u.CertificationPoints != 30 || u.VerifiedCertifications != 1 {
		t.Fatalf("changed=%d points=%d verified=%d", changed, u.CertificationPoints, u.VerifiedCertifications)
	}
}

func TestSetScoreRejectsStaleCounters(t *testing.T) {
	_, repos, _ := newService(t)
	ctx := context.Background()
	stale := models.ProviderScore{ProviderID: providerID, CertificationPoints: 5}
	want := models.ProviderScore{ProviderID: providerID, CertificationPoints: 300, VerifiedCertifications: 3, TotalCertifications: 3}

	if err := repos.Users.SetScore(ctx, want, stale); !apperrors.IsConflict(err) {
		t.Fatalf("stale counters: got %v, want conflict", err)
	}
	if err := repos.Users.SetScore(ctx, want, models.ProviderScore{ProviderID: providerID}); err != nil {
		t.Fatalf("SetScore: %v", err)
	}
	if u := provider(t, repos); u.CertificationPoints != 300 || u.CertificationLevel != models.CalculatedLevel(300) {
		t.Fatalf("points=%d level=%s", u.CertificationPoints, u.CertificationLevel)
	}
}
