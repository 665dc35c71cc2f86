package output

import (
	"context"

	"vaops/internal/domain/entities"
)

// ParticipantRepository owns participant rows. Implementations must surface a
// storage-level uniqueness violation on an occupied gate as
// domain.ErrGateConflict and on a duplicate (event, user) pair as
// domain.ErrAlreadyJoined, so the database stays the final arbiter even when
// two decisions raced on stale snapshots.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *entities.Participant) error
	FindByEventIDAndUserID(ctx context.Context, eventID int64, userID string) (*entities.Participant, error)
	FindByEventID(ctx context.Context, eventID int64) ([]entities.Participant, error)
	// UpdateGate writes one role's gate field, releasing and acquiring in a
	// single statement so no transient double-binding is ever visible.
	UpdateGate(ctx context.Context, participantID int64, role entities.GateRole, ref entities.GateRef) error
	Delete(ctx context.Context, participantID int64) error
}
