package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jvincentbasto/my-space/internal/model"
	"go.uber.org/zap"
)

// SessionResolver turns a session secret into the logged in user. A nil user
// and nil error mean "not logged in".
type SessionResolver interface {
	CurrentUser(ctx context.Context, secret string) (*model.User, error)
}

// NewSessionMiddleware resolves the session cookie and sets "user" and
// "userID". When required is false anonymous requests pass through.
func NewSessionMiddleware(r SessionResolver, cookieName string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		secret, err := c.Cookie(cookieName)
		if err != nil {
			secret = ""
		}

		user, err := r.CurrentUser(c.Request.Context(), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to resolve session", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if user == nil {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Not logged in",
					"requestID": requestID,
				})
				return
			}

			c.Next()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// User returns the user set by the session middleware, if any
func User(c *gin.Context) *model.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}

	u, _ := v.(*model.User)
	return u
}
