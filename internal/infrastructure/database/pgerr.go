package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"vaops/internal/domain"
)

// SQLSTATE codes this layer reacts to.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
)

// Constraint names declared in the migrations. The mapper keys on them: the
// unique indexes on the occupied gate columns are the final arbiter of the
// one-occupant invariant, and a violation must read as a conflict, not as a
// storage failure.
const (
	constraintEventUser     = "participants_event_id_user_id_key"
	constraintDepartureGate = "participants_departure_gate_id_key"
	constraintArrivalGate   = "participants_arrival_gate_id_key"
)

// mapConstraintErr translates unique violations into domain errors. Other
// errors pass through unchanged.
func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintEventUser:
		return domain.ErrAlreadyJoined
	case constraintDepartureGate, constraintArrivalGate:
		return domain.ErrGateConflict
	}
	return err
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeSerializationFailure
}
