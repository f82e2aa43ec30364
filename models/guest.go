package models

import (
	"time"

	"github.com/google/uuid"
)

// Guest represents one invitee (matches guests table). The scannable code is
// assigned at creation and never reissued; the arrival fields flip exactly
// once, via the coordinator's conditional transition only.
type Guest struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	EventID       uuid.UUID  `json:"event_id" db:"event_id"`
	DisplayName   string     `json:"display_name" db:"display_name"`
	Code          string     `json:"code" db:"code"`
	Arrived       bool       `json:"arrived" db:"arrived"`
	ArrivedAt     *time.Time `json:"arrived_at,omitempty" db:"arrived_at"`
	ArrivedBy     *string    `json:"arrived_by,omitempty" db:"arrived_by"`
	ArrivalMethod *string    `json:"arrival_method,omitempty" db:"arrival_method"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
