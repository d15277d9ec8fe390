package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brushbolt/store-backend/models"
	"github.com/brushbolt/store-backend/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by Authenticator.Require.
const (
	UserKey   = "user"
	UserIDKey = "userID"
)

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Authenticator struct {
	tokens *utils.TokenManager
	users  UserLookup
}

func NewAuthenticator(tokens *utils.TokenManager, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Require rejects requests without a valid bearer token for an active user.
func (a *Authenticator) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return utils.Unauthorized("Missing authorization header")
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return utils.Unauthorized("Invalid authorization header format")
		}

		claims, err := a.tokens.ValidateJWT(tokenParts[1])
		if err != nil {
			return utils.Unauthorized("Invalid or expired token")
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return utils.Unauthorized("Invalid or expired token")
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		user, err := a.users.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.Unauthorized("User no longer exists")
			}
			return utils.Internal("Failed to load user", err)
		}
		if !user.IsActive {
			return utils.Unauthorized("Account is deactivated")
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		return next(c)
	}
}

// RequireAdmin must run after Require.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.Unauthorized("Authentication required")
		}
		if !user.IsAdmin {
			return utils.Forbidden("Admin access required")
		}
		return next(c)
	}
}

// CurrentUser returns the authenticated user, or nil outside Require.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(UserKey).(*models.User)
	return user
}
