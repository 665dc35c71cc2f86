package output

import (
	"context"

	"vaops/internal/domain/allocation"
	"vaops/internal/domain/entities"
)

// RosterNotifier announces roster changes to the community channel. It is
// invoked by the outer layer strictly after commit and is best-effort: a
// delivery failure never fails the operation that triggered it.
type RosterNotifier interface {
	AnnounceJoin(ctx context.Context, event *entities.Event, participant *entities.Participant, departure, arrival allocation.Decision) error
	AnnounceGateAssigned(ctx context.Context, event *entities.Event, participant *entities.Participant, gate entities.Gate) error
	AnnounceLeave(ctx context.Context, event *entities.Event, userID string) error
}
