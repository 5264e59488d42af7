package middleware

import (
	"errors"
	"net/http"

	"stocks-simulator/session"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

// SessionReader resolves the user bound to a request.
type SessionReader interface {
	UserID(c *gin.Context) (uint, error)
}

// RequireAuth lets authenticated requests through with the user id stored
// under UserIDKey and redirects everything else to /login.
func RequireAuth(sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := sessions.UserID(c)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				log.WithError(err).Error("Session lookup failed")
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the id set by RequireAuth.
func UserID(c *gin.Context) uint {
	return c.MustGet(UserIDKey).(uint)
}

// LoggedIn reports whether RequireAuth admitted this request.
func LoggedIn(c *gin.Context) bool {
	_, ok := c.Get(UserIDKey)
	return ok
}
