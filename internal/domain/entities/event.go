package entities

import "time"

// Event is a scheduled group flight. It is created and edited by the event
// management component; this service only reads its identity to scope gate
// and participant queries.
type Event struct {
	ID          int64
	Title       string
	Status      string
	ScheduledAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
