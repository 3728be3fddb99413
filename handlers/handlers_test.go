package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"fixerhub/database/repository"
	"fixerhub/database/repository/memory"
	"fixerhub/middleware"
	"fixerhub/models"
	"fixerhub/services/booking"
	"fixerhub/services/events"
	"fixerhub/services/notification"
	"fixerhub/services/review"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// as stands in for the JWT middleware with a fixed caller taken from the X-Test-User header.
func as(roles map[string]models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(middleware.ContextUserID, id)
			c.Set(middleware.ContextRole, roles[id])
		}
		c.Next()
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, repository.Repositories) {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	roles := map[string]models.Role{}
	for _, u := range []*models.User{
		{ID: "seeker-1", Name: "Nimal", Email: "nimal@example.lk", Role: models.RoleSeeker},
		{ID: "provider-1", Name: "Sunil", Email: "sunil@example.lk", Role: models.RoleProvider, HourlyRate: 2500},
	} {
		if err := repos.Users.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
		roles[u.ID] = u.Role
	}

	bookings := NewBookingHandler(&booking.DefaultBookingService{
		Repo:     repos.Bookings,
		Users:    repos.Users,
		Notifier: notification.Discard{},
		Events:   events.Noop{},
	})
	reviews := NewReviewHandler(&review.DefaultReviewService{
		Repo:     repos.Reviews,
		Bookings: repos.Bookings,
		Users:    repos.Users,
		Notifier: notification.Discard{},
		Events:   events.Noop{},
	})

	r := gin.New()
	r.Use(as(roles))
	r.POST("/api/bookings", bookings.CreateBookingHandler)
	r.GET("/api/bookings", bookings.ListBookingsHandler)
	r.GET("/api/bookings/:id", bookings.GetBookingHandler)
	r.POST("/api/bookings/:id/accept", bookings.AcceptHandler())
	r.POST("/api/bookings/:id/complete", bookings.CompleteHandler())
	r.POST("/api/bookings/:id/quote", bookings.SendQuoteHandler)
	r.POST("/api/reviews", reviews.CreateHandler)
	r.GET("/api/providers/:id/reviews", reviews.ListForProviderHandler)
	return r, repos
}

func call(r http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestBookingEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := call(r, http.MethodPost, "/api/bookings", "seeker-1", models.NewBookingRequest{
		ServiceProvider: "provider-1",
		Date:            "2024-06-01",
		Time:            "09:30",
		Description:     "Replace the kitchen sink",
		Price:           4000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	b := decode[models.Booking](t, w)
	if b.Status != models.BookingPending || b.ServiceSeeker != "seeker-1" {
		t.Fatalf("unexpected booking %+v", b)
	}

	if w := call(r, http.MethodPost, "/api/bookings/"+b.ID+"/accept", "seeker-1", nil); w.Code != http.StatusForbidden {
		t.Fatalf("seeker accept: %d %s", w.Code, w.Body.String())
	}
	if w := call(r, http.MethodPost, "/api/bookings/"+b.ID+"/accept", "provider-1", nil); w.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", w.Code, w.Body.String())
	}
	w = call(r, http.MethodPost, "/api/bookings/"+b.ID+"/accept", "provider-1", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("accept twice: %d %s", w.Code, w.Body.String())
	}
	if msg := decode[utils.ErrorResponse](t, w).Message; msg == "" {
		t.Fatal("conflict response has no message")
	}

	w = call(r, http.MethodGet, "/api/bookings", "provider-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	list := decode[struct {
		Bookings []models.Booking `json:"bookings"`
	}](t, w)
	if len(list.Bookings) != 1 || list.Bookings[0].Status != models.BookingAccepted {
		t.Fatalf("list = %+v", list.Bookings)
	}
}

func TestBookingEndpointErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := call(r, http.MethodPost, "/api/bookings", "seeker-1", map[string]string{"date": "2024-06-01"}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: %d %s", w.Code, w.Body.String())
	}
	w := call(r, http.MethodPost, "/api/bookings", "seeker-1", models.NewBookingRequest{
		ServiceProvider: "provider-9",
		Date:            "2024-06-01",
		Time:            "09:30",
		Description:     "Unknown provider",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown provider: %d %s", w.Code, w.Body.String())
	}
	if w := call(r, http.MethodGet, "/api/bookings/missing", "seeker-1", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing booking: %d %s", w.Code, w.Body.String())
	}
	if w := call(r, http.MethodPost, "/api/bookings/missing/quote", "provider-1", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty quote: %d %s", w.Code, w.Body.String())
	}
}

func TestReviewEndpoints(t *testing.T) {
	r, repos := newTestRouter(t)
	ctx := context.Background()
	done := &models.Booking{
		ID:              "booking-done",
		ServiceSeeker:   "seeker-1",
		ServiceProvider: "provider-1",
		Date:            "2024-06-01",
		Time:            "09:30",
		Description:     "Fix the gate",
		Status:          models.BookingCompleted,
		PaymentStatus:   models.PaymentUnpaid,
	}
	if err := repos.Bookings.Create(ctx, done); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	req := models.NewReviewRequest{
		Booking: done.ID,
		Ratings: models.Ratings{Quality: 5, Punctuality: 4, Communication: 5, Professionalism: 5, ValueForMoney: 4, Cleanliness: 5},
		Comment: "Great work on the gate",
	}
	w := call(r, http.MethodPost, "/api/reviews", "seeker-1", req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create review: %d %s", w.Code, w.Body.String())
	}
	if got := decode[models.Review](t, w); got.OverallRating != 4.7 {
		t.Fatalf("overall = %v, want 4.7", got.OverallRating)
	}
	if w := call(r, http.MethodPost, "/api/reviews", "seeker-1", req); w.Code != http.StatusConflict {
		t.Fatalf("duplicate review: %d %s", w.Code, w.Body.String())
	}

	w = call(r, http.MethodGet, "/api/providers/provider-1/reviews?limit=500", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list reviews: %d %s", w.Code, w.Body.String())
	}
	list := decode[struct {
		Reviews []models.Review `json:"reviews"`
	}](t, w)
	if len(list.Reviews) != 1 {
		t.Fatalf("got %d reviews, want 1", len(list.Reviews))
	}
}
