package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"checkin-backend/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// GuestStore is the read/transition surface the coordinator and aggregator
// work against. Guests are created elsewhere; this core only resolves them
// and flips their arrival fields.
type GuestStore interface {
	// GuestByCode resolves a scannable code to its guest. Codes are unique
	// across the whole system, so no event hint is needed.
	GuestByCode(ctx context.Context, code string) (models.Guest, error)

	// GuestByID resolves a guest for the manual fallback path.
	GuestByID(ctx context.Context, id uuid.UUID) (models.Guest, error)

	// MarkArrived attempts the single conditional transition from
	// not-arrived to arrived. It returns true only if this call flipped the
	// flag; false means a prior or concurrent call already won and the
	// stored arrival fields are untouched.
	MarkArrived(ctx context.Context, id uuid.UUID, at time.Time, by string, method string) (bool, error)

	// EventCounts returns total and arrived guest counts for an event.
	EventCounts(ctx context.Context, eventID uuid.UUID) (total int, arrived int, err error)

	// ArrivalsByEvent lists checked-in guests, most recent first.
	ArrivalsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Guest, error)
}

// EventStore resolves events for staff authentication and stats endpoints.
type EventStore interface {
	EventByCode(ctx context.Context, code string) (models.Event, error)
	EventByID(ctx context.Context, id uuid.UUID) (models.Event, error)
}
