package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const eventIDKey = "event_id"

type sessionValidator interface {
	Validate(token string) (uuid.UUID, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// RequireSession rejects requests without a valid staff session and stores
// the session's event id in the request context.
func RequireSession(sessions sessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		eventID, err := sessions.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			c.Abort()
			return
		}

		c.Set(eventIDKey, eventID)
		c.Next()
	}
}

// sessionEventID reads the event id stored by RequireSession.
func sessionEventID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(eventIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
