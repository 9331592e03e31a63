package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "session_id"

const contextKeyUserID = "user_id"

// Sessions is what the middleware needs from a session store.
// Implemented by *Store.
type Sessions interface {
	GetUserID(ctx context.Context, id string) (int64, bool)
}

// UserIDFromContext returns the current user ID set by RequireSession. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// SetUserID stores the user ID in the gin context. Exported for handler tests.
func SetUserID(c *gin.Context, userID int64) {
	c.Set(contextKeyUserID, userID)
}

// RequireSession returns a middleware that checks for a valid session cookie
// and sets the current user ID in context. Browsers get redirected to the
// login page when the session is missing or invalid.
func RequireSession(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		userID, ok := sessions.GetUserID(c.Request.Context(), sessionID)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}
