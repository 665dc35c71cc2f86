package entities

import "time"

// GateRef is the assignment state of one gate slot on a participant:
// either unassigned, or bound to a gate. It is persisted as a nullable
// column but carried as a tagged value so the allocation decisions and the
// stored state share one vocabulary.
type GateRef struct {
	GateID   int64
	Assigned bool
}

// BoundTo returns a GateRef bound to the given gate.
func BoundTo(gateID int64) GateRef {
	return GateRef{GateID: gateID, Assigned: true}
}

// Participant represents one pilot's membership in one event. Both gate
// fields may be unassigned; that is a valid state, not an error.
type Participant struct {
	ID        int64
	EventID   int64
	UserID    string
	Departure GateRef
	Arrival   GateRef
	JoinedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GateFor returns the participant's assignment state for the given role.
func (p *Participant) GateFor(role GateRole) GateRef {
	if role == GateRoleArrival {
		return p.Arrival
	}
	return p.Departure
}

// SetGate overwrites the participant's assignment state for the given role.
func (p *Participant) SetGate(role GateRole, ref GateRef) {
	if role == GateRoleArrival {
		p.Arrival = ref
		return
	}
	p.Departure = ref
}
