package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vaops/internal/domain"
	"vaops/internal/domain/allocation"
	"vaops/internal/domain/entities"
	"vaops/internal/ports/input"
	"vaops/internal/ports/output"
)

var _ input.ParticipationUseCase = (*ParticipationService)(nil)

// ParticipationService orchestrates join, leave and gate reassignment. It is
// the only component that writes participant rows, and every write happens
// inside one transaction together with the occupancy reads that justified it.
type ParticipationService struct {
	tx           output.TxManager
	eventRepo    output.EventRepository
	gateRepo     output.GateRepository
	participants output.ParticipantRepository
	guard        output.AuthorizationGuard
}

func NewParticipationService(
	tx output.TxManager,
	eventRepo output.EventRepository,
	gateRepo output.GateRepository,
	participants output.ParticipantRepository,
	guard output.AuthorizationGuard,
) *ParticipationService {
	return &ParticipationService{
		tx:           tx,
		eventRepo:    eventRepo,
		gateRepo:     gateRepo,
		participants: participants,
		guard:        guard,
	}
}

// resolveGate loads the occupancy snapshot for one role and runs the
// allocation engine against it. excludeParticipantID, when non-zero, treats
// that participant's own occupancy as free so a pilot can reclaim or swap
// their gate. An explicitly requested gate that is not part of the event/role
// is domain.ErrInvalidGate; one occupied by someone else is
// domain.ErrGateConflict.
func (s *ParticipationService) resolveGate(ctx context.Context, eventID int64, role entities.GateRole, requestedGateID, excludeParticipantID int64) (allocation.Decision, error) {
	snap, err := s.gateRepo.ListOccupancy(ctx, eventID, role)
	if err != nil {
		return allocation.Decision{}, fmt.Errorf("load %s occupancy: %w", role, err)
	}
	if requestedGateID != 0 && !snap.Contains(requestedGateID) {
		return allocation.Decision{}, domain.ErrInvalidGate
	}
	d := allocation.Decide(snap.WithoutOccupant(excludeParticipantID), requestedGateID)
	if d.Outcome == allocation.Unavailable {
		return d, domain.ErrGateConflict
	}
	return d, nil
}

func (s *ParticipationService) JoinEvent(ctx context.Context, req input.JoinRequest) (*input.JoinResult, error) {
	var result input.JoinResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.eventRepo.FindByID(ctx, req.EventID); err != nil {
			return err
		}
		existing, err := s.participants.FindByEventIDAndUserID(ctx, req.EventID, req.UserID)
		if err != nil && !errors.Is(err, domain.ErrNotParticipant) {
			return fmt.Errorf("find participant: %w", err)
		}
		if existing != nil {
			return domain.ErrAlreadyJoined
		}

		// An explicit request that cannot be honored aborts the whole join:
		// the pilot asked for that gate, we never substitute silently.
		departure, err := s.resolveGate(ctx, req.EventID, entities.GateRoleDeparture, req.DepartureGateID, 0)
		if err != nil {
			return err
		}
		arrival, err := s.resolveGate(ctx, req.EventID, entities.GateRoleArrival, req.ArrivalGateID, 0)
		if err != nil {
			return err
		}

		participant := &entities.Participant{
			EventID:   req.EventID,
			UserID:    req.UserID,
			Departure: departure.Ref(),
			Arrival:   arrival.Ref(),
			JoinedAt:  time.Now(),
		}
		if err := s.participants.Create(ctx, participant); err != nil {
			return fmt.Errorf("create participant: %w", err)
		}
		result = input.JoinResult{Participant: participant, Departure: departure, Arrival: arrival}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ParticipationService) LeaveEvent(ctx context.Context, eventID int64, userID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		participant, err := s.participants.FindByEventIDAndUserID(ctx, eventID, userID)
		if err != nil {
			return err
		}
		// Deleting the row releases any held gates with it.
		if err := s.participants.Delete(ctx, participant.ID); err != nil {
			return fmt.Errorf("delete participant: %w", err)
		}
		return nil
	})
}

func (s *ParticipationService) AssignGate(ctx context.Context, eventID int64, userID string, gateID int64, role entities.GateRole) (*input.AssignResult, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidGate
	}
	var result input.AssignResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
			return err
		}
		participant, err := s.participants.FindByEventIDAndUserID(ctx, eventID, userID)
		if err != nil {
			return err
		}
		d, err := s.resolveGate(ctx, eventID, role, gateID, participant.ID)
		if err != nil {
			return err
		}
		// Release-then-acquire is a single field write: the participant never
		// holds two gates of one role, and the old gate frees exactly when
		// the new one binds.
		if err := s.participants.UpdateGate(ctx, participant.ID, role, d.Ref()); err != nil {
			return fmt.Errorf("update %s gate: %w", role, err)
		}
		participant.SetGate(role, d.Ref())
		result = input.AssignResult{Participant: participant, Gate: d.Gate}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ParticipationService) ClearGate(ctx context.Context, eventID int64, userID string, role entities.GateRole) error {
	if !role.Valid() {
		return domain.ErrInvalidGate
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		participant, err := s.participants.FindByEventIDAndUserID(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if err := s.participants.UpdateGate(ctx, participant.ID, role, entities.GateRef{}); err != nil {
			return fmt.Errorf("clear %s gate: %w", role, err)
		}
		return nil
	})
}

func (s *ParticipationService) AdminAssignGate(ctx context.Context, eventID int64, targetUserID string, gateID int64, role entities.GateRole, callerRoles domain.RoleSet) (*input.AssignResult, error) {
	if !s.guard.HasEventManagementCapability(callerRoles) {
		return nil, domain.ErrAccessDenied
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidGate
	}
	var result input.AssignResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
			return err
		}
		participant, err := s.participants.FindByEventIDAndUserID(ctx, eventID, targetUserID)
		switch {
		case errors.Is(err, domain.ErrNotParticipant):
			// Staff pre-assigning a seat for a pilot who never joined: the
			// assignment implicitly creates the membership.
			d, err := s.resolveGate(ctx, eventID, role, gateID, 0)
			if err != nil {
				return err
			}
			participant = &entities.Participant{
				EventID:  eventID,
				UserID:   targetUserID,
				JoinedAt: time.Now(),
			}
			participant.SetGate(role, d.Ref())
			if err := s.participants.Create(ctx, participant); err != nil {
				return fmt.Errorf("create participant: %w", err)
			}
			result = input.AssignResult{Participant: participant, Gate: d.Gate}
			return nil
		case err != nil:
			return err
		}

		d, err := s.resolveGate(ctx, eventID, role, gateID, participant.ID)
		if err != nil {
			return err
		}
		if err := s.participants.UpdateGate(ctx, participant.ID, role, d.Ref()); err != nil {
			return fmt.Errorf("update %s gate: %w", role, err)
		}
		participant.SetGate(role, d.Ref())
		result = input.AssignResult{Participant: participant, Gate: d.Gate}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ParticipationService) AdminRemoveParticipant(ctx context.Context, eventID int64, targetUserID string, callerRoles domain.RoleSet) error {
	if !s.guard.HasEventManagementCapability(callerRoles) {
		return domain.ErrAccessDenied
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		participant, err := s.participants.FindByEventIDAndUserID(ctx, eventID, targetUserID)
		if err != nil {
			return err
		}
		if err := s.participants.Delete(ctx, participant.ID); err != nil {
			return fmt.Errorf("delete participant: %w", err)
		}
		return nil
	})
}
