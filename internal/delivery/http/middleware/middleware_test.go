package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	type payload struct {
		Title string `json:"title" validate:"required"`
	}

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperror.Validation(map[string][]string{"title": {"is required"}}))
	})
	r.GET("/forbidden", func(c *gin.Context) {
		_ = c.Error(apperror.Forbidden("nope"))
	})
	r.GET("/validator", func(c *gin.Context) {
		_ = c.Error(validator.New().Struct(payload{}))
	})
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(domain.ErrNotFound)
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection reset"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/app", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode(t, w)
	assert.False(t, env.Status)
	assert.Equal(t, []string{"is required"}, env.Errors["title"])

	w = serve(r, httptest.NewRequest(http.MethodGet, "/forbidden", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "nope", decode(t, w).Message)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/validator", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w).Errors, "Title")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

type stubAuth struct {
	users map[int64]*domain.User
}

func (s *stubAuth) Register(context.Context, domain.RegisterInput) (*domain.AuthResult, error) {
	return nil, nil
}
func (s *stubAuth) Login(context.Context, domain.LoginInput) (*domain.AuthResult, error) {
	return nil, nil
}
func (s *stubAuth) ForgotPassword(context.Context, string) error { return nil }
func (s *stubAuth) VerifyResetOTP(context.Context, string, string) (string, error) {
	return "", nil
}
func (s *stubAuth) ResetPassword(context.Context, string, string) error { return nil }
func (s *stubAuth) GetCurrentUser(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "trades", time.Hour)
	stub := &stubAuth{users: map[int64]*domain.User{
		7: {ID: 7, Email: "pat@example.com", UserType: domain.UserTypeContractor},
	}}

	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens, stub), func(c *gin.Context) {
		id, _ := c.Get(string(domain.KeyUserID))
		role, _ := c.Get(string(domain.KeyUserRole))
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	r.GET("/contractors", AuthMiddleware(tokens, stub), RequireUserTypes(domain.UserTypeLaborer), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	token, _, err := tokens.Issue(7, "pat@example.com", "laborer")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"contractor"}`, w.Body.String())

	// Role comes from the stored user, not the token claim
	req = httptest.NewRequest(http.MethodGet, "/contractors", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	gone, _, err := tokens.Issue(8, "gone@example.com", "laborer")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+gone)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestRateLimiterFallsBackToMemory(t *testing.T) {
	rl := NewRateLimiter(nil, nil)

	r := gin.New()
	r.GET("/ping", rl.Middleware(DefaultRateLimitConfig(2, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.False(t, decode(t, w).Status)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(nil, nil)
	cfg := DefaultRateLimitConfig(1, time.Minute)
	cfg.KeyFunc = func(c *gin.Context) string { return c.GetHeader("X-Key") }

	r := gin.New()
	r.GET("/ping", rl.Middleware(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, key := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Key", key)
		assert.Equal(t, http.StatusOK, serve(r, req).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Key", "a")
	assert.Equal(t, http.StatusTooManyRequests, serve(r, req).Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com/"}, true))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(string(domain.KeyRequestID)))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", serve(r, req).Body.String())
}
