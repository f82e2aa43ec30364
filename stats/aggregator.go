package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"checkin-backend/models"
	"checkin-backend/store"
)

// Aggregator derives dashboard counts from the guest rows on demand. There
// is no running counter to drift from the source of truth; every call
// recomputes from the store.
type Aggregator struct {
	guests store.GuestStore
}

func NewAggregator(guests store.GuestStore) *Aggregator {
	return &Aggregator{guests: guests}
}

func (a *Aggregator) EventStats(ctx context.Context, eventID uuid.UUID) (models.EventStats, error) {
	total, arrived, err := a.guests.EventCounts(ctx, eventID)
	if err != nil {
		return models.EventStats{}, fmt.Errorf("failed to aggregate event stats: %w", err)
	}

	stats := models.EventStats{
		TotalGuests:    total,
		CheckedInCount: arrived,
		PendingCount:   total - arrived,
	}
	if total > 0 {
		stats.CheckedInRate = float64(arrived) / float64(total)
	}
	return stats, nil
}
