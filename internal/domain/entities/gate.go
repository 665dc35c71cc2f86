package entities

import "time"

// GateRole distinguishes departure slots from arrival slots. The two sets are
// allocated independently.
type GateRole string

const (
	GateRoleDeparture GateRole = "departure"
	GateRoleArrival   GateRole = "arrival"
)

func (r GateRole) Valid() bool {
	return r == GateRoleDeparture || r == GateRoleArrival
}

// Gate is a named departure or arrival slot belonging to exactly one event.
// Gates are immutable once an event is published; at most one participant may
// occupy a gate at a time.
type Gate struct {
	ID        int64
	EventID   int64
	Label     string
	Role      GateRole
	CreatedAt time.Time
}
