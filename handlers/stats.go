package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"checkin-backend/stats"
	"checkin-backend/store"
)

type StatsHandler struct {
	stats  *stats.Aggregator
	guests store.GuestStore
}

func NewStatsHandler(aggregator *stats.Aggregator, guests store.GuestStore) *StatsHandler {
	return &StatsHandler{stats: aggregator, guests: guests}
}

// eventFromPath parses the :id parameter and checks it against the session's
// event. A foreign event id gets the same 404 an unknown one would.
func (h *StatsHandler) eventFromPath(c *gin.Context) (uuid.UUID, bool) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return uuid.Nil, false
	}

	sessionEvent, ok := sessionEventID(c)
	if !ok || sessionEvent != eventID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return uuid.Nil, false
	}
	return eventID, true
}

// GetStats is the polling fallback for dashboards that cannot hold a live
// connection, and the resync path after a dropped one.
func (h *StatsHandler) GetStats(c *gin.Context) {
	eventID, ok := h.eventFromPath(c)
	if !ok {
		return
	}

	eventStats, err := h.stats.EventStats(c, eventID)
	if err != nil {
		log.Printf("Error aggregating stats for event %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, eventStats)
}

// GetArrivals lists checked-in guests, most recent first, for the dashboard's
// initial render.
func (h *StatsHandler) GetArrivals(c *gin.Context) {
	eventID, ok := h.eventFromPath(c)
	if !ok {
		return
	}

	arrivals, err := h.guests.ArrivalsByEvent(c, eventID)
	if err != nil {
		log.Printf("Error listing arrivals for event %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load arrivals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"arrivals": arrivals,
		"count":    len(arrivals),
	})
}
