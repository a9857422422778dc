package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go-trades-backend/internal/delivery/http/response"
	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/auth"
	"go-trades-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type TokenParser interface {
	Parse(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware verifies the bearer token and loads the caller. The user
// type is read from the database rather than the token so a stale claim
// cannot outlive a change.
func AuthMiddleware(tokens TokenParser, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}
		userID, _ := claims.UserID()

		user, err := authUC.GetCurrentUser(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Log.Warn("auth user lookup failed", "user_id", userID, "error", err)
			}
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), user.UserType)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// RequireUserTypes rejects callers whose user type is not listed.
func RequireUserTypes(types ...domain.UserType) gin.HandlerFunc {
	allowed := make(map[domain.UserType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return func(c *gin.Context) {
		role, _ := c.Get(string(domain.KeyUserRole))
		userType, _ := role.(domain.UserType)
		if !allowed[userType] {
			response.Error(c, http.StatusForbidden, "You are not allowed to perform this action", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
