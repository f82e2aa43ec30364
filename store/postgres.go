package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"checkin-backend/models"
)

// Postgres implements GuestStore and EventStore over a pgx pool.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const guestColumns = `id, event_id, display_name, code, arrived, arrived_at, arrived_by, arrival_method, created_at, updated_at`

func scanGuest(row pgx.Row) (models.Guest, error) {
	var g models.Guest
	err := row.Scan(
		&g.ID,
		&g.EventID,
		&g.DisplayName,
		&g.Code,
		&g.Arrived,
		&g.ArrivedAt,
		&g.ArrivedBy,
		&g.ArrivalMethod,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Guest{}, ErrNotFound
		}
		return models.Guest{}, err
	}
	return g, nil
}

func (s *Postgres) GuestByCode(ctx context.Context, code string) (models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE code = $1`
	return scanGuest(s.db.QueryRow(ctx, query, code))
}

func (s *Postgres) GuestByID(ctx context.Context, id uuid.UUID) (models.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`
	return scanGuest(s.db.QueryRow(ctx, query, id))
}

// MarkArrived performs the conditional transition as one atomic UPDATE. The
// WHERE clause re-checks the flag at write time, so under concurrent scans
// exactly one caller sees a row affected; everyone else leaves the stored
// arrival fields alone.
func (s *Postgres) MarkArrived(ctx context.Context, id uuid.UUID, at time.Time, by string, method string) (bool, error) {
	query := `
		UPDATE guests
		SET arrived = true, arrived_at = $2, arrived_by = $3, arrival_method = $4, updated_at = $2
		WHERE id = $1 AND NOT arrived
	`

	tag, err := s.db.Exec(ctx, query, id, at, by, method)
	if err != nil {
		return false, fmt.Errorf("failed to mark guest arrived: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Postgres) EventCounts(ctx context.Context, eventID uuid.UUID) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE arrived)
		FROM guests
		WHERE event_id = $1
	`

	var total, arrived int
	if err := s.db.QueryRow(ctx, query, eventID).Scan(&total, &arrived); err != nil {
		return 0, 0, fmt.Errorf("failed to count guests: %w", err)
	}
	return total, arrived, nil
}

func (s *Postgres) ArrivalsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Guest, error) {
	query := `
		SELECT ` + guestColumns + `
		FROM guests
		WHERE event_id = $1 AND arrived
		ORDER BY arrived_at DESC
	`

	rows, err := s.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (s *Postgres) EventByCode(ctx context.Context, code string) (models.Event, error) {
	query := `SELECT id, name, event_code, pin_hash, expected_guests, created_at FROM events WHERE event_code = $1`
	return s.scanEvent(ctx, query, code)
}

func (s *Postgres) EventByID(ctx context.Context, id uuid.UUID) (models.Event, error) {
	query := `SELECT id, name, event_code, pin_hash, expected_guests, created_at FROM events WHERE id = $1`
	return s.scanEvent(ctx, query, id)
}

func (s *Postgres) scanEvent(ctx context.Context, query string, arg any) (models.Event, error) {
	var e models.Event
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&e.ID,
		&e.Name,
		&e.EventCode,
		&e.PINHash,
		&e.ExpectedGuests,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}
