package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaops/internal/domain"
	"vaops/internal/domain/entities"
	"vaops/internal/ports/output"
)

var _ output.ParticipantRepository = (*ParticipantRepository)(nil)

// ParticipantRepository implements output.ParticipantRepository on pgx.
// Unique-constraint violations on the gate columns come back as
// domain.ErrGateConflict (see pgerr.go): the index, not this code, is the
// final arbiter of the one-occupant invariant.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

func (r *ParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	q := queryFrom(ctx, r.pool)
	err := q.QueryRow(ctx,
		`INSERT INTO participants (event_id, user_id, departure_gate_id, arrival_gate_id, joined_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		participant.EventID,
		participant.UserID,
		int8FromGateRef(participant.Departure),
		int8FromGateRef(participant.Arrival),
		pgtype.Timestamptz{Time: participant.JoinedAt, Valid: true},
	).Scan(&participant.ID, &participant.CreatedAt, &participant.UpdatedAt)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) FindByEventIDAndUserID(ctx context.Context, eventID int64, userID string) (*entities.Participant, error) {
	q := queryFrom(ctx, r.pool)
	row := q.QueryRow(ctx,
		`SELECT id, event_id, user_id, departure_gate_id, arrival_gate_id, joined_at, created_at, updated_at
		 FROM participants WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	p, err := scanParticipant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotParticipant
	}
	if err != nil {
		return nil, fmt.Errorf("get participant by event id and user id: %w", err)
	}
	return p, nil
}

func (r *ParticipantRepository) FindByEventID(ctx context.Context, eventID int64) ([]entities.Participant, error) {
	q := queryFrom(ctx, r.pool)
	rows, err := q.Query(ctx,
		`SELECT id, event_id, user_id, departure_gate_id, arrival_gate_id, joined_at, created_at, updated_at
		 FROM participants WHERE event_id = $1 ORDER BY joined_at ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("get participants by event id: %w", err)
	}
	defer rows.Close()

	var out []entities.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get participants by event id: %w", err)
	}
	return out, nil
}

func (r *ParticipantRepository) UpdateGate(ctx context.Context, participantID int64, role entities.GateRole, ref entities.GateRef) error {
	column := "departure_gate_id"
	if role == entities.GateRoleArrival {
		column = "arrival_gate_id"
	}
	q := queryFrom(ctx, r.pool)
	tag, err := q.Exec(ctx,
		fmt.Sprintf(`UPDATE participants SET %s = $1, updated_at = now() WHERE id = $2`, column),
		int8FromGateRef(ref), participantID)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update participant gate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotParticipant
	}
	return nil
}

func (r *ParticipantRepository) Delete(ctx context.Context, participantID int64) error {
	q := queryFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM participants WHERE id = $1`, participantID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotParticipant
	}
	return nil
}
