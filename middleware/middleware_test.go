package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"fixerhub/config"
	"fixerhub/models"
	"fixerhub/utils"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.AppConfig.JWTSecret = "test-secret"
	os.Exit(m.Run())
}

func token(t *testing.T, subject string, role models.Role, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.GenerateToken(subject, subject+"@example.lk", string(role), ttl)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		actor := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newRouter(JWTAuthMiddleware())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"expired", "Bearer " + token(t, "seeker-1", models.RoleSeeker, -time.Minute), http.StatusUnauthorized},
		{"valid", "Bearer " + token(t, "seeker-1", models.RoleSeeker, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(r, tt.header); w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestJWTAuthRejectsOtherSecret(t *testing.T) {
	tok := token(t, "seeker-1", models.RoleSeeker, time.Hour)
	config.AppConfig.JWTSecret = "rotated"
	defer func() { config.AppConfig.JWTSecret = "test-secret" }()

	if w := do(newRouter(JWTAuthMiddleware()), "Bearer "+tok); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := newRouter(OptionalAuthMiddleware())

	w := do(r, "")
	if w.Code != http.StatusOK || w.Body.String() != `{"id":"","role":""}` {
		t.Fatalf("anonymous: %d %s", w.Code, w.Body.String())
	}
	w = do(r, "Bearer "+token(t, "provider-1", models.RoleProvider, time.Hour))
	if w.Code != http.StatusOK || w.Body.String() != `{"id":"provider-1","role":"service_provider"}` {
		t.Fatalf("signed in: %d %s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	r := newRouter(JWTAuthMiddleware(), AdminOnly())

	if w := do(r, "Bearer "+token(t, "seeker-1", models.RoleSeeker, time.Hour)); w.Code != http.StatusForbidden {
		t.Fatalf("seeker: status = %d, want 403", w.Code)
	}
	if w := do(r, "Bearer "+token(t, "admin-1", models.RoleAdmin, time.Hour)); w.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", w.Code)
	}

	anonymous := newRouter(RequireRole(models.RoleProvider, models.RoleSeeker))
	if w := do(anonymous, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d, want 401", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(5))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 5; i++ {
		if code := send("203.0.113.7"); code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i+1, code)
		}
	}
	if code := send("203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("over limit: status = %d, want 429", code)
	}
	if code := send("198.51.100.2"); code != http.StatusNoContent {
		t.Fatalf("other client: status = %d", code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
		{"socket", nil, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = req
			if got := getClientIP(c); got != tt.want {
				t.Fatalf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
