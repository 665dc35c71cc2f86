package input

import (
	"context"

	"vaops/internal/domain"
	"vaops/internal/domain/allocation"
	"vaops/internal/domain/entities"
)

// JoinRequest describes one join call. A zero gate id means automatic mode
// for that role: the first free gate in label order is taken, and exhaustion
// leaves the field unassigned instead of failing the join.
type JoinRequest struct {
	EventID         int64
	UserID          string
	DepartureGateID int64
	ArrivalGateID   int64
}

// JoinResult carries the created participant together with the per-role
// allocation decisions, so the outer layer can tell explicit binding,
// automatic assignment and exhaustion apart when rendering the outcome.
type JoinResult struct {
	Participant *entities.Participant
	Departure   allocation.Decision
	Arrival     allocation.Decision
}

// GatesAssigned counts how many of the two slots ended up bound (0, 1 or 2).
func (r *JoinResult) GatesAssigned() int {
	n := 0
	if r.Departure.Assigned() {
		n++
	}
	if r.Arrival.Assigned() {
		n++
	}
	return n
}

// AssignResult carries the updated participant and the gate that was bound.
type AssignResult struct {
	Participant *entities.Participant
	Gate        entities.Gate
}

// ParticipationUseCase is the only entry point that mutates participants and
// gate occupancy.
type ParticipationUseCase interface {
	JoinEvent(ctx context.Context, req JoinRequest) (*JoinResult, error)
	LeaveEvent(ctx context.Context, eventID int64, userID string) error
	AssignGate(ctx context.Context, eventID int64, userID string, gateID int64, role entities.GateRole) (*AssignResult, error)
	ClearGate(ctx context.Context, eventID int64, userID string, role entities.GateRole) error
	AdminAssignGate(ctx context.Context, eventID int64, targetUserID string, gateID int64, role entities.GateRole, callerRoles domain.RoleSet) (*AssignResult, error)
	AdminRemoveParticipant(ctx context.Context, eventID int64, targetUserID string, callerRoles domain.RoleSet) error
}
