// Package allocation holds the pure gate allocation engine. It performs no
// I/O: callers load an occupancy snapshot inside their transaction, ask for a
// decision, and write the result back within the same transaction.
package allocation

import "vaops/internal/domain/entities"

// Outcome classifies the result of one allocation decision.
type Outcome int

const (
	// Bound: the explicitly requested gate was free and has been chosen.
	Bound Outcome = iota
	// Unavailable: the explicitly requested gate is occupied (or absent from
	// the snapshot). The caller must surface a conflict, never substitute a
	// different gate.
	Unavailable
	// AutoAssigned: no gate was requested; the first free gate in label
	// order has been chosen.
	AutoAssigned
	// NoneAvailable: no gate was requested and every gate of the role is
	// occupied (or none exist). Not an error; the slot stays unassigned.
	NoneAvailable
)

func (o Outcome) String() string {
	switch o {
	case Bound:
		return "bound"
	case Unavailable:
		return "unavailable"
	case AutoAssigned:
		return "auto_assigned"
	case NoneAvailable:
		return "none_available"
	}
	return "unknown"
}

// Slot pairs one gate with its current occupant, if any.
type Slot struct {
	Gate       entities.Gate
	OccupantID int64 // participant id, 0 when the gate is free
}

func (s Slot) Free() bool { return s.OccupantID == 0 }

// Snapshot is the occupancy of every gate of one role for one event, ordered
// by gate label ascending. The ordering is the auto-assignment tie-break, so
// decisions are deterministic for a given snapshot.
type Snapshot []Slot

// Contains reports whether the snapshot holds a gate with the given id.
func (s Snapshot) Contains(gateID int64) bool {
	for _, slot := range s {
		if slot.Gate.ID == gateID {
			return true
		}
	}
	return false
}

// WithoutOccupant returns a copy of the snapshot in which every slot held by
// the given participant is treated as free. Used on reassignment so a
// participant may reclaim or swap their own gate.
func (s Snapshot) WithoutOccupant(participantID int64) Snapshot {
	if participantID == 0 {
		return s
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	for i := range out {
		if out[i].OccupantID == participantID {
			out[i].OccupantID = 0
		}
	}
	return out
}

// Decision is the outcome of one allocation request. Gate is populated for
// Bound and AutoAssigned outcomes and zero otherwise.
type Decision struct {
	Outcome Outcome
	Gate    entities.Gate
}

// Assigned reports whether the decision binds a gate.
func (d Decision) Assigned() bool {
	return d.Outcome == Bound || d.Outcome == AutoAssigned
}

// Ref converts the decision into a participant gate field value.
func (d Decision) Ref() entities.GateRef {
	if !d.Assigned() {
		return entities.GateRef{}
	}
	return entities.BoundTo(d.Gate.ID)
}

// Decide resolves one gate request against an occupancy snapshot.
// requestedGateID == 0 means automatic mode. The same snapshot and request
// always produce the same decision.
func Decide(snap Snapshot, requestedGateID int64) Decision {
	if requestedGateID != 0 {
		for _, slot := range snap {
			if slot.Gate.ID != requestedGateID {
				continue
			}
			if !slot.Free() {
				return Decision{Outcome: Unavailable}
			}
			return Decision{Outcome: Bound, Gate: slot.Gate}
		}
		return Decision{Outcome: Unavailable}
	}
	for _, slot := range snap {
		if slot.Free() {
			return Decision{Outcome: AutoAssigned, Gate: slot.Gate}
		}
	}
	return Decision{Outcome: NoneAvailable}
}
