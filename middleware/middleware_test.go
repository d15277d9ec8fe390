package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUsers map[primitive.ObjectID]*models.User

func (f fakeUsers) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, utils.ErrNotFound
}

func newTestServer(auth *Authenticator) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(false)
	e.Validator = utils.NewValidator()

	ok := func(c echo.Context) error { return utils.OK(c, CurrentUser(c).Name) }
	e.GET("/me", ok, auth.Require)
	e.GET("/admin", ok, auth.Require, RequireAdmin)
	return e
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Envelope {
	t.Helper()
	var env utils.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAuthenticator(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	expired := utils.NewTokenManager("test-secret", -time.Hour)
	other := utils.NewTokenManager("other-secret", time.Hour)

	customer := &models.User{ID: primitive.NewObjectID(), Name: "cust", IsActive: true}
	admin := &models.User{ID: primitive.NewObjectID(), Name: "boss", IsActive: true, IsAdmin: true}
	disabled := &models.User{ID: primitive.NewObjectID(), Name: "gone", IsActive: false}
	users := fakeUsers{customer.ID: customer, admin.ID: admin, disabled.ID: disabled}

	e := newTestServer(NewAuthenticator(tokens, users))

	sign := func(m *utils.TokenManager, id primitive.ObjectID) string {
		tok, err := m.GenerateJWT(id.Hex())
		require.NoError(t, err)
		return "Bearer " + tok
	}

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, "Missing authorization header"},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized, "Invalid authorization header format"},
		{"garbage token", "/me", "Bearer not.a.jwt", http.StatusUnauthorized, "Invalid or expired token"},
		{"expired token", "/me", sign(expired, customer.ID), http.StatusUnauthorized, "Invalid or expired token"},
		{"foreign secret", "/me", sign(other, customer.ID), http.StatusUnauthorized, "Invalid or expired token"},
		{"unknown user", "/me", sign(tokens, primitive.NewObjectID()), http.StatusUnauthorized, "User no longer exists"},
		{"deactivated user", "/me", sign(tokens, disabled.ID), http.StatusUnauthorized, "Account is deactivated"},
		{"customer", "/me", sign(tokens, customer.ID), http.StatusOK, ""},
		{"customer on admin route", "/admin", sign(tokens, customer.ID), http.StatusForbidden, "Admin access required"},
		{"admin on admin route", "/admin", sign(tokens, admin.ID), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decode(t, rec)
			assert.Equal(t, tt.wantStatus == http.StatusOK, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}

	tests := []struct {
		name        string
		err         func(c echo.Context) error
		debug       bool
		wantStatus  int
		wantError   string
		wantDetails map[string]string
	}{
		{
			name:       "app error",
			err:        func(echo.Context) error { return utils.NotFound("Product not found") },
			wantStatus: http.StatusNotFound,
			wantError:  "Product not found",
		},
		{
			name:       "wrapped app error",
			err:        func(echo.Context) error { return fmt.Errorf("load: %w", utils.Forbidden("nope")) },
			wantStatus: http.StatusForbidden,
			wantError:  "nope",
		},
		{
			name: "validation",
			err: func(c echo.Context) error {
				return c.Validate(&payload{Email: "bad"})
			},
			wantStatus:  http.StatusBadRequest,
			wantError:   "Validation failed",
			wantDetails: map[string]string{"email": "must be a valid email address"},
		},
		{
			name:       "duplicate",
			err:        func(echo.Context) error { return fmt.Errorf("insert: %w", utils.ErrDuplicate) },
			wantStatus: http.StatusBadRequest,
			wantError:  "Duplicate value for a unique field",
		},
		{
			name:       "echo error",
			err:        func(echo.Context) error { return echo.ErrMethodNotAllowed },
			wantStatus: http.StatusMethodNotAllowed,
			wantError:  "Method Not Allowed",
		},
		{
			name:       "internal hidden in production",
			err:        func(echo.Context) error { return utils.Internal("Failed to create order", errors.New("socket closed")) },
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to create order",
		},
		{
			name:       "internal exposed in development",
			err:        func(echo.Context) error { return errors.New("socket closed") },
			debug:      true,
			wantStatus: http.StatusInternalServerError,
			wantError:  "socket closed",
		},
		{
			name:       "unknown error in production",
			err:        func(echo.Context) error { return errors.New("socket closed") },
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Validator = utils.NewValidator()
			e.HTTPErrorHandler = ErrorHandler(tt.debug)
			e.GET("/", tt.err)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
			assert.Equal(t, tt.wantDetails, env.Details)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(false)
	e.POST("/login", func(c echo.Context) error { return utils.Message(c, "ok") }, rl.Limit)

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"))

	now = now.Add(time.Hour)
	rl.Cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestMetricsPassesErrorsThrough(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(false)
	e.Use(Metrics)
	e.GET("/boom", func(echo.Context) error { return utils.BadRequest("bad") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
