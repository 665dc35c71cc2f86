package output

import (
	"context"

	"vaops/internal/domain/allocation"
	"vaops/internal/domain/entities"
)

// GateRepository is the gate registry: a consistent view of the gates of one
// event and their current occupants. ListOccupancy must run inside the same
// transaction as any subsequent participant write, otherwise the snapshot is
// allowed to go stale between read and commit.
type GateRepository interface {
	// ListOccupancy returns every gate of the given role for the event,
	// ordered by gate label ascending, each paired with its occupant if any.
	ListOccupancy(ctx context.Context, eventID int64, role entities.GateRole) (allocation.Snapshot, error)
	FindByID(ctx context.Context, id int64) (*entities.Gate, error)
}
