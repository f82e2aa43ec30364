package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"checkin-backend/checkin"
	"checkin-backend/models"
)

type CheckinHandler struct {
	coordinator *checkin.Coordinator
}

func NewCheckinHandler(coordinator *checkin.Coordinator) *CheckinHandler {
	return &CheckinHandler{coordinator: coordinator}
}

// CheckIn records an arrival from a scanned code, or from a guest id when
// staff fall back to a manual lookup. The coordinator validates the session
// itself, so this endpoint is not behind RequireSession.
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if (req.Code == "") == (req.GuestID == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one of code or guest_id is required"})
		return
	}

	token := bearerToken(c)

	var result models.CheckInResult
	var err error
	if req.Code != "" {
		result, err = h.coordinator.CheckIn(c, token, req.Code, req.StaffName)
	} else {
		guestID, parseErr := uuid.Parse(req.GuestID)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest ID format"})
			return
		}
		result, err = h.coordinator.CheckInByGuestID(c, token, guestID, req.StaffName)
	}

	if err != nil {
		switch {
		case errors.Is(err, checkin.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
		case errors.Is(err, checkin.ErrCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Code not found"})
		default:
			log.Printf("Error checking in guest: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check in guest"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":            result.Outcome,
		"already_checked_in": result.Outcome == models.OutcomeAlreadyCheckedIn,
		"guest": gin.H{
			"id":           result.GuestID,
			"display_name": result.DisplayName,
		},
		"arrived_at": result.ArrivedAt,
		"arrived_by": result.ArrivedBy,
		"method":     result.Method,
		"stats":      result.Stats,
	})
}
