package models

import (
	"time"

	"github.com/google/uuid"
)

// Arrival method constants
const (
	MethodScanned = "SCANNED"
	MethodManual  = "MANUAL"
)

// Event represents one occasion being staffed (matches events table)
type Event struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	EventCode      string    `json:"event_code" db:"event_code"`
	PINHash        string    `json:"-" db:"pin_hash"`
	ExpectedGuests int       `json:"expected_guests" db:"expected_guests"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// EventStats holds the dashboard counts derived from guest rows
type EventStats struct {
	TotalGuests    int     `json:"total_guests"`
	CheckedInCount int     `json:"checked_in_count"`
	PendingCount   int     `json:"pending_count"`
	CheckedInRate  float64 `json:"checked_in_rate"`
}
