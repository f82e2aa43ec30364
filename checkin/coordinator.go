package checkin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"checkin-backend/models"
	"checkin-backend/session"
	"checkin-backend/stats"
	"checkin-backend/store"
)

// ErrCodeNotFound is returned when a scanned code matches nothing the
// session is allowed to see. An unknown code and a code belonging to a
// different event are deliberately indistinguishable.
var ErrCodeNotFound = errors.New("code not found")

// ErrUnauthorized mirrors the session manager's rejection so handlers can
// map on one package.
var ErrUnauthorized = session.ErrUnauthorized

// SessionValidator is the slice of the session manager the coordinator
// needs.
type SessionValidator interface {
	Validate(token string) (uuid.UUID, error)
}

// Publisher is the slice of the broadcast hub the coordinator needs.
type Publisher interface {
	Publish(eventID uuid.UUID, ev models.ArrivalEvent)
}

// Coordinator owns the arrival transition. It never holds guest state
// itself; the store's conditional update is the only mutation, and the
// coordinator's job is to order everything around it: session first, lookup
// second, transition third, broadcast only for the call that won.
type Coordinator struct {
	guests   store.GuestStore
	sessions SessionValidator
	stats    *stats.Aggregator
	hub      Publisher
	clock    func() time.Time
}

func NewCoordinator(guests store.GuestStore, sessions SessionValidator, aggregator *stats.Aggregator, hub Publisher) *Coordinator {
	return &Coordinator{
		guests:   guests,
		sessions: sessions,
		stats:    aggregator,
		hub:      hub,
		clock:    time.Now,
	}
}

// CheckIn records an arrival from a scanned code.
func (c *Coordinator) CheckIn(ctx context.Context, token, code, staffName string) (models.CheckInResult, error) {
	return c.transition(ctx, token, staffName, models.MethodScanned, func(lookupCtx context.Context) (models.Guest, error) {
		return c.guests.GuestByCode(lookupCtx, code)
	})
}

// CheckInByGuestID is the manual fallback for a guest whose code cannot be
// scanned. It reaches the guest differently but runs the identical
// transition, so the at-most-once property holds for both entry points.
func (c *Coordinator) CheckInByGuestID(ctx context.Context, token string, guestID uuid.UUID, staffName string) (models.CheckInResult, error) {
	return c.transition(ctx, token, staffName, models.MethodManual, func(lookupCtx context.Context) (models.Guest, error) {
		return c.guests.GuestByID(lookupCtx, guestID)
	})
}

func (c *Coordinator) transition(ctx context.Context, token, staffName, method string, locate func(context.Context) (models.Guest, error)) (models.CheckInResult, error) {
	// Session expiry is checked before any row is touched; an expired
	// session never reaches the conditional write.
	eventID, err := c.sessions.Validate(token)
	if err != nil {
		return models.CheckInResult{}, ErrUnauthorized
	}

	guest, err := locate(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.CheckInResult{}, ErrCodeNotFound
		}
		return models.CheckInResult{}, fmt.Errorf("failed to resolve guest: %w", err)
	}

	// A guest from another event looks exactly like an unknown code.
	if guest.EventID != eventID {
		return models.CheckInResult{}, ErrCodeNotFound
	}

	if guest.Arrived {
		return alreadyCheckedIn(guest), nil
	}

	if staffName == "" {
		staffName = "staff"
	}

	now := c.clock().UTC()
	won, err := c.guests.MarkArrived(ctx, guest.ID, now, staffName, method)
	if err != nil {
		return models.CheckInResult{}, fmt.Errorf("failed to record arrival: %w", err)
	}

	if !won {
		// A concurrent call beat this one to the conditional write. Report
		// the arrival record that call stored, not the values attempted
		// here.
		current, err := c.guests.GuestByID(ctx, guest.ID)
		if err != nil {
			return models.CheckInResult{}, fmt.Errorf("failed to reload guest after lost race: %w", err)
		}
		return alreadyCheckedIn(current), nil
	}

	result := models.CheckInResult{
		Outcome:     models.OutcomeCheckedIn,
		GuestID:     guest.ID,
		DisplayName: guest.DisplayName,
		ArrivedAt:   now,
		ArrivedBy:   staffName,
		Method:      method,
	}

	// The transition is committed; stats and broadcast are best-effort and
	// never turn a recorded arrival into a failure.
	eventStats, err := c.stats.EventStats(ctx, guest.EventID)
	if err != nil {
		log.Printf("Failed to aggregate stats after check-in for guest %s: %v", guest.ID, err)
		return result, nil
	}
	result.Stats = &eventStats

	c.hub.Publish(guest.EventID, models.ArrivalEvent{
		GuestID:     guest.ID,
		DisplayName: guest.DisplayName,
		ArrivedAt:   now,
		ArrivedBy:   staffName,
		Method:      method,
		Stats:       eventStats,
	})

	return result, nil
}

func alreadyCheckedIn(guest models.Guest) models.CheckInResult {
	result := models.CheckInResult{
		Outcome:     models.OutcomeAlreadyCheckedIn,
		GuestID:     guest.ID,
		DisplayName: guest.DisplayName,
	}
	if guest.ArrivedAt != nil {
		result.ArrivedAt = *guest.ArrivedAt
	}
	if guest.ArrivedBy != nil {
		result.ArrivedBy = *guest.ArrivedBy
	}
	if guest.ArrivalMethod != nil {
		result.Method = *guest.ArrivalMethod
	}
	return result
}
