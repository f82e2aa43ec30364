package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"checkin-backend/models"
	"checkin-backend/session"
)

type StaffHandler struct {
	sessions *session.Manager
}

func NewStaffHandler(sessions *session.Manager) *StaffHandler {
	return &StaffHandler{sessions: sessions}
}

// Login exchanges an event code + PIN for a bearer session token.
func (h *StaffHandler) Login(c *gin.Context) {
	var req models.StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staffSession, err := h.sessions.Authenticate(c, req.EventCode, req.PIN)
	if err != nil {
		if errors.Is(err, session.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid event code or PIN"})
			return
		}
		log.Printf("Error authenticating staff for event code %s: %v", req.EventCode, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
		return
	}

	log.Printf("Issued staff session for event %s", staffSession.EventID)

	c.JSON(http.StatusOK, gin.H{
		"token":      staffSession.Token,
		"expires_at": staffSession.ExpiresAt,
		"event": gin.H{
			"id":   staffSession.EventID,
			"name": staffSession.EventName,
		},
	})
}

// Logout revokes the presented session. It succeeds regardless of whether
// the token was still live.
func (h *StaffHandler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization header required"})
		return
	}

	h.sessions.Revoke(token)
	c.Status(http.StatusNoContent)
}
