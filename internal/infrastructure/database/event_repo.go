package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaops/internal/domain"
	"vaops/internal/domain/entities"
	"vaops/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

// EventRepository reads event rows owned by the event management component.
type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) FindByID(ctx context.Context, id int64) (*entities.Event, error) {
	q := queryFrom(ctx, r.pool)
	var e entities.Event
	err := q.QueryRow(ctx,
		`SELECT id, title, status, scheduled_at, created_at, updated_at
		 FROM events WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Status, &e.ScheduledAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return &e, nil
}
