package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaops/internal/domain"
	"vaops/internal/domain/allocation"
	"vaops/internal/domain/entities"
	"vaops/internal/ports/output"
)

var _ output.GateRepository = (*GateRepository)(nil)

// GateRepository is the gate registry backed by Postgres.
type GateRepository struct {
	pool *pgxpool.Pool
}

func NewGateRepository(pool *pgxpool.Pool) *GateRepository {
	return &GateRepository{pool: pool}
}

// ListOccupancy joins gates against the participant column matching the role.
// Label-ascending order is the allocation tie-break and must not change.
func (r *GateRepository) ListOccupancy(ctx context.Context, eventID int64, role entities.GateRole) (allocation.Snapshot, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidGate
	}
	q := queryFrom(ctx, r.pool)
	rows, err := q.Query(ctx,
		`SELECT g.id, g.event_id, g.label, g.role, g.created_at, COALESCE(p.id, 0)
		 FROM gates g
		 LEFT JOIN participants p
		   ON g.id = CASE WHEN g.role = 'departure' THEN p.departure_gate_id ELSE p.arrival_gate_id END
		 WHERE g.event_id = $1 AND g.role = $2
		 ORDER BY g.label ASC`, eventID, string(role))
	if err != nil {
		return nil, fmt.Errorf("list gate occupancy: %w", err)
	}
	defer rows.Close()

	var snap allocation.Snapshot
	for rows.Next() {
		var slot allocation.Slot
		if err := rows.Scan(&slot.Gate.ID, &slot.Gate.EventID, &slot.Gate.Label, &slot.Gate.Role, &slot.Gate.CreatedAt, &slot.OccupantID); err != nil {
			return nil, fmt.Errorf("scan gate occupancy: %w", err)
		}
		snap = append(snap, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list gate occupancy: %w", err)
	}
	return snap, nil
}

func (r *GateRepository) FindByID(ctx context.Context, id int64) (*entities.Gate, error) {
	q := queryFrom(ctx, r.pool)
	var g entities.Gate
	err := q.QueryRow(ctx,
		`SELECT id, event_id, label, role, created_at FROM gates WHERE id = $1`, id,
	).Scan(&g.ID, &g.EventID, &g.Label, &g.Role, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidGate
	}
	if err != nil {
		return nil, fmt.Errorf("get gate by id: %w", err)
	}
	return &g, nil
}
