package database

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"vaops/internal/domain/entities"
)

// Nullable gate columns travel as pgtype.Int8; in Go they are the tagged
// GateRef value.

func gateRefFromInt8(v pgtype.Int8) entities.GateRef {
	if !v.Valid {
		return entities.GateRef{}
	}
	return entities.BoundTo(v.Int64)
}

func int8FromGateRef(ref entities.GateRef) pgtype.Int8 {
	if !ref.Assigned {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: ref.GateID, Valid: true}
}

func scanParticipant(row pgx.Row) (*entities.Participant, error) {
	var (
		p        entities.Participant
		dep, arr pgtype.Int8
	)
	err := row.Scan(&p.ID, &p.EventID, &p.UserID, &dep, &arr, &p.JoinedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Departure = gateRefFromInt8(dep)
	p.Arrival = gateRefFromInt8(arr)
	return &p, nil
}
