package output

import (
	"context"

	"vaops/internal/domain/entities"
)

// EventRepository is the read-only view of events owned by the event
// management component.
type EventRepository interface {
	FindByID(ctx context.Context, id int64) (*entities.Event, error)
}
