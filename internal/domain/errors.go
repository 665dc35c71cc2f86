package domain

import "errors"

// Domain errors.
var (
	ErrEventNotFound  = errors.New("event not found")
	ErrAlreadyJoined  = errors.New("user is already a participant of this event")
	ErrNotParticipant = errors.New("user is not a participant of this event")
	ErrInvalidGate    = errors.New("gate does not belong to this event and role")
	ErrGateConflict   = errors.New("gate is already occupied")
	ErrAccessDenied   = errors.New("event management capability required")
)
