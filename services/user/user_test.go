package user

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"fixerhub/apperrors"
	"fixerhub/config"
	"fixerhub/database/repository/memory"
	"fixerhub/models"
	"fixerhub/services/storage"
	"fixerhub/utils"
)

func TestMain(m *testing.M) {
	config.AppConfig.JWTSecret = "test-secret"
	os.Exit(m.Run())
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
	last   map[string]string
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: map[string]string{}, last: map[string]string{}}
}

func (m *memTokens) Save(_ context.Context, purpose, token, userID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[purpose+":"+token] = userID
	m.last[purpose] = token
	return nil
}

func (m *memTokens) Consume(_ context.Context, purpose, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[purpose+":"+token]
	if !ok {
		return "", apperrors.Validation("token is invalid or has expired")
	}
	delete(m.tokens, purpose+":"+token)
	return id, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	emails []models.EmailPayload
}

func (n *recordingNotifier) Push(context.Context, models.PushPayload) {}

func (n *recordingNotifier) Email(_ context.Context, e models.EmailPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, e)
}

type fakeStorage struct {
	n       int
	deleted []string
}

func (s *fakeStorage) Upload(_ context.Context, _ io.Reader, folder string) (storage.StoredFile, error) {
	s.n++
	id := fmt.Sprintf("%s/pic-%d", folder, s.n)
	return storage.StoredFile{URL: "https://files.example.com/" + id, PublicID: id}, nil
}

func (s *fakeStorage) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

type fakeVerifier struct {
	identity *GoogleIdentity
}

func (v fakeVerifier) Verify(_ context.Context, raw string) (*GoogleIdentity, error) {
	if raw != "good-token" {
		return nil, apperrors.Unauthorized("invalid Google token")
	}
	return v.identity, nil
}

type fixture struct {
	svc      *DefaultUserService
	tokens   *memTokens
	notifier *recordingNotifier
	storage  *fakeStorage
}

func newFixture() *fixture {
	f := &fixture{tokens: newMemTokens(), notifier: &recordingNotifier{}, storage: &fakeStorage{}}
	f.svc = &DefaultUserService{
		Repo:        memory.NewStore().Repositories().Users,
		Tokens:      f.tokens,
		Notifier:    f.notifier,
		Storage:     f.storage,
		FrontendURL: "https://fixerhub.example.lk",
		TokenTTL:    time.Hour,
	}
	return f
}

func seekerRegistration() models.UserRegistration {
	return models.UserRegistration{
		Name:     " Nimal Perera ",
		Email:    "Nimal@Example.lk",
		Password: "s3cretpass",
		Role:     models.RoleSeeker,
	}
}

func TestVerifyPasswordComplexity(t *testing.T) {
	for pw, ok := range map[string]bool{
		"short1":     false,
		"longenough": false,
		"12345678":   false,
		"abc12345":   true,
	} {
		err := VerifyPasswordComplexity(pw)
		if (err == nil) != ok {
			t.Errorf("VerifyPasswordComplexity(%q) = %v, want ok=%v", pw, err, ok)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, seekerRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.Email != "nimal@example.lk" || resp.User.Name != "Nimal Perera" || resp.User.IsVerified {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	claims, err := utils.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != resp.User.ID || claims.Role != string(models.RoleSeeker) {
		t.Fatalf("claims = %+v", claims)
	}
	if len(f.notifier.emails) != 1 || !strings.Contains(f.notifier.emails[0].HTML, "/verify-email?token=") {
		t.Fatalf("verification email not sent: %+v", f.notifier.emails)
	}

	if _, err := f.svc.Register(ctx, seekerRegistration()); !apperrors.IsConflict(err) {
		t.Fatalf("duplicate email: got %v, want conflict", err)
	}

	if _, err := f.svc.Login(ctx, "nimal@example.lk", "s3cretpass"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := f.svc.Login(ctx, "nimal@example.lk", "wrongpass1"); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("wrong password: got %v, want unauthorized", err)
	}
	if _, err := f.svc.Login(ctx, "nobody@example.lk", "s3cretpass"); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("unknown email: got %v, want unauthorized", err)
	}
}

func TestRegisterRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	admin := seekerRegistration()
	admin.Role = models.RoleAdmin
	if _, err := f.svc.Register(ctx, admin); apperrors.KindOf(err) != apperrors.KindForbidden {
		t.Fatalf("admin: got %v, want forbidden", err)
	}

	weak := seekerRegistration()
	weak.Password = "password"
	if _, err := f.svc.Register(ctx, weak); !apperrors.IsValidation(err) {
		t.Fatalf("weak password: got %v, want validation error", err)
	}

	provider := seekerRegistration()
	provider.Email = "sunil@example.lk"
	provider.Role = models.RoleProvider
	if _, err := f.svc.Register(ctx, provider); !apperrors.IsValidation(err) {
		t.Fatalf("provider without details: got %v, want validation error", err)
	}
	provider.ServiceCategory = "plumbing"
	provider.HourlyRate = 2500
	provider.BankDetails = &models.BankDetails{AccountName: "Sunil", AccountNumber: "00123456", BankName: "BOC"}
	resp, err := f.svc.Register(ctx, provider)
	if err != nil {
		t.Fatalf("Register provider: %v", err)
	}
	if resp.User.CertificationLevel != models.LevelBronze {
		t.Fatalf("level = %s, want bronze", resp.User.CertificationLevel)
	}
}

func TestVerifyEmailTokenIsSingleUse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, seekerRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token := f.tokens.last[purposeVerify]

	if err := f.svc.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if err := f.svc.VerifyEmail(ctx, token); !apperrors.IsValidation(err) {
		t.Fatalf("reused token: got %v, want validation error", err)
	}
	u, err := f.svc.GetUserByID(ctx, resp.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if !u.IsVerified {
		t.Fatal("user not verified")
	}
	if err := f.svc.ResendVerification(ctx, u.ID); !apperrors.IsConflict(err) {
		t.Fatalf("resend after verify: got %v, want conflict", err)
	}
}

func TestPasswordReset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, seekerRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := f.svc.RequestPasswordReset(ctx, "ghost@example.lk"); err != nil {
		t.Fatalf("unknown email should not error: %v", err)
	}
	if err := f.svc.RequestPasswordReset(ctx, "nimal@example.lk"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	token := f.tokens.last[purposeReset]
	if token == "" {
		t.Fatal("no reset token saved")
	}

	if err := f.svc.ResetPassword(ctx, token, "weak"); !apperrors.IsValidation(err) {
		t.Fatalf("weak password: got %v, want validation error", err)
	}
	if err := f.svc.ResetPassword(ctx, token, "n3wpassword"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := f.svc.Login(ctx, "nimal@example.lk", "n3wpassword"); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
	if err := f.svc.ResetPassword(ctx, token, "an0therpass"); !apperrors.IsValidation(err) {
		t.Fatalf("reused token: got %v, want validation error", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, seekerRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := f.svc.ChangePassword(ctx, resp.User.ID, "wrongpass1", "n3wpassword"); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("wrong current: got %v, want unauthorized", err)
	}
	if err := f.svc.ChangePassword(ctx, resp.User.ID, "s3cretpass", "n3wpassword"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.Login(ctx, "nimal@example.lk", "s3cretpass"); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("old password still works: %v", err)
	}
}

func TestGoogleSignIn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.GoogleSignIn(ctx, "good-token", ""); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("not configured: got %v, want unauthorized", err)
	}

	f.svc.Google = fakeVerifier{identity: &GoogleIdentity{Subject: "g-1", Email: "kamal@example.lk", EmailVerified: true, Name: "Kamal"}}
	if _, err := f.svc.GoogleSignIn(ctx, "bad-token", ""); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("bad token: got %v, want unauthorized", err)
	}
	if _, err := f.svc.GoogleSignIn(ctx, "good-token", models.RoleAdmin); apperrors.KindOf(err) != apperrors.KindForbidden {
		t.Fatalf("admin role: got %v, want forbidden", err)
	}

	first, err := f.svc.GoogleSignIn(ctx, "good-token", "")
	if err != nil {
		t.Fatalf("GoogleSignIn: %v", err)
	}
	if first.User.Role != models.RoleSeeker || !first.User.IsVerified || first.User.AuthProvider != "google" {
		t.Fatalf("unexpected user %+v", first.User)
	}
	again, err := f.svc.GoogleSignIn(ctx, "good-token", models.RoleProvider)
	if err != nil {
		t.Fatalf("GoogleSignIn: %v", err)
	}
	if again.User.ID != first.User.ID || again.User.Role != models.RoleSeeker {
		t.Fatalf("second sign-in created a new account: %+v", again.User)
	}
	if _, err := f.svc.Login(ctx, "kamal@example.lk", "whatever1"); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("password login on google account: got %v, want unauthorized", err)
	}

	f.svc.Google = fakeVerifier{identity: &GoogleIdentity{Email: "x@example.lk", EmailVerified: false}}
	if _, err := f.svc.GoogleSignIn(ctx, "good-token", ""); apperrors.KindOf(err) != apperrors.KindUnauthorized {
		t.Fatalf("unverified email: got %v, want unauthorized", err)
	}
}

func TestProfilePicturePoints(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	resp, err := f.svc.Register(ctx, seekerRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	id := resp.User.ID

	u, err := f.svc.UploadProfilePicture(ctx, id, strings.NewReader("png"))
	if err != nil {
		t.Fatalf("UploadProfilePicture: %v", err)
	}
	if u.ProfilePicturePoints != models.ProfilePicturePoints {
		t.Fatalf("points = %d, want %d", u.ProfilePicturePoints, models.ProfilePicturePoints)
	}

	u, err = f.svc.UploadProfilePicture(ctx, id, strings.NewReader("png"))
	if err != nil {
		t.Fatalf("UploadProfilePicture: %v", err)
	}
	if u.ProfilePicturePoints != models.ProfilePicturePoints {
		t.Fatalf("replacing awarded points again: %d", u.ProfilePicturePoints)
	}
	if len(f.storage.deleted) != 1 {
		t.Fatalf("old picture not deleted: %v", f.storage.deleted)
	}

	u, err = f.svc.RemoveProfilePicture(ctx, id)
	if err != nil {
		t.Fatalf("RemoveProfilePicture: %v", err)
	}
	if u.ProfilePicturePoints != 0 || u.ProfilePicture != "" {
		t.Fatalf("after removal: points %d picture %q", u.ProfilePicturePoints, u.ProfilePicture)
	}
	u, err = f.svc.RemoveProfilePicture(ctx, id)
	if err != nil {
		t.Fatalf("RemoveProfilePicture twice: %v", err)
	}
	if u.ProfilePicturePoints != 0 {
		t.Fatalf("points went to %d", u.ProfilePicturePoints)
	}
}

func TestProviderDiscovery(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seeker, err := f.svc.Register(ctx, seekerRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := f.svc.GetProvider(ctx, seeker.User.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("seeker as provider: got %v, want not found", err)
	}
	if _, err := f.svc.SearchProviders(ctx, models.ProviderSearchCriteria{MinLevel: "mythic"}); !apperrors.IsValidation(err) {
		t.Fatalf("bad level: got %v, want validation error", err)
	}

	promoted, err := f.svc.PromoteToAdmin(ctx, "nimal@example.lk")
	if err != nil {
		t.Fatalf("PromoteToAdmin: %v", err)
	}
	if !promoted.IsAdmin() {
		t.Fatal("user not promoted")
	}
	if _, err := f.svc.PromoteToAdmin(ctx, "ghost@example.lk"); !apperrors.IsNotFound(err) {
		t.Fatalf("unknown email: got %v, want not found", err)
	}
}
