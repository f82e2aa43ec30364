package models

import (
	"time"

	"github.com/google/uuid"
)

// Check-in outcome constants
const (
	OutcomeCheckedIn        = "CHECKED_IN"
	OutcomeAlreadyCheckedIn = "ALREADY_CHECKED_IN"
)

// CheckInResult reports which outcome a scan produced. For
// ALREADY_CHECKED_IN the arrival fields carry the values stored by the
// winning call, never the ones this call attempted to write.
type CheckInResult struct {
	Outcome     string      `json:"outcome"`
	GuestID     uuid.UUID   `json:"guest_id"`
	DisplayName string      `json:"display_name"`
	ArrivedAt   time.Time   `json:"arrived_at"`
	ArrivedBy   string      `json:"arrived_by"`
	Method      string      `json:"method"`
	Stats       *EventStats `json:"stats,omitempty"`
}

// ArrivalEvent is the transient payload broadcast to dashboards after a
// successful transition. Publish-once, no retention.
type ArrivalEvent struct {
	GuestID     uuid.UUID  `json:"guest_id"`
	DisplayName string     `json:"display_name"`
	ArrivedAt   time.Time  `json:"arrived_at"`
	ArrivedBy   string     `json:"arrived_by"`
	Method      string     `json:"method"`
	Stats       EventStats `json:"stats"`
}

// CheckInRequest accepts either a scanned code or a guest id for the manual
// fallback; exactly one must be set.
type CheckInRequest struct {
	Code      string `json:"code"`
	GuestID   string `json:"guest_id"`
	StaffName string `json:"staff_name"`
}

// StaffLoginRequest exchanges the event's shared secret pair for a session
type StaffLoginRequest struct {
	EventCode string `json:"event_code" binding:"required"`
	PIN       string `json:"pin" binding:"required"`
}

// StaffSession is the bearer capability handed to a check-in device. It
// carries no individual staff identity.
type StaffSession struct {
	Token     string    `json:"token"`
	EventID   uuid.UUID `json:"event_id"`
	EventName string    `json:"event_name"`
	ExpiresAt time.Time `json:"expires_at"`
}
