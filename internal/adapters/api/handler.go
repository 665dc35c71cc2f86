package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vaops/internal/domain"
	"vaops/internal/domain/allocation"
	"vaops/internal/domain/entities"
	"vaops/internal/infrastructure/i18n"
	"vaops/internal/infrastructure/metrics"
	"vaops/internal/ports/input"
	"vaops/internal/ports/output"
)

type handler struct {
	participation input.ParticipationUseCase
	events        output.EventRepository
	gates         output.GateRepository
	participants  output.ParticipantRepository
	roles         output.RoleService
	translator    output.T
	notifier      output.RosterNotifier
	log           zerolog.Logger
}

func newHandler(deps Deps) *handler {
	return &handler{
		participation: deps.Participation,
		events:        deps.Events,
		gates:         deps.Gates,
		participants:  deps.Participants,
		roles:         deps.Roles,
		translator:    deps.Translator,
		notifier:      deps.Notifier,
		log:           deps.Log,
	}
}

type joinBody struct {
	DepartureGateID int64 `json:"departure_gate_id" binding:"omitempty,min=1"`
	ArrivalGateID   int64 `json:"arrival_gate_id" binding:"omitempty,min=1"`
}

type assignBody struct {
	Role string `json:"role" binding:"required,gaterole"`
}

func (h *handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrEventNotFound), errors.Is(err, domain.ErrNotParticipant):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidGate):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyJoined), errors.Is(err, domain.ErrGateConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrAccessDenied):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *handler) callerID(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
		return "", false
	}
	return userID, true
}

func eventID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("eventID"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return 0, false
	}
	return id, true
}

func gateID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("gateID"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gate id"})
		return 0, false
	}
	return id, true
}

func locale(c *gin.Context) string {
	return c.GetHeader("Accept-Language")
}

// callerRoles resolves the caller's role set for staff operations.
func (h *handler) callerRoles(c *gin.Context, userID string) (domain.RoleSet, bool) {
	roles, err := h.roles.GetUserRoles(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return roles, true
}

// announce runs a notifier call after a successful commit, best-effort.
func (h *handler) announce(ctx context.Context, fn func(ctx context.Context) error) {
	if h.notifier == nil {
		return
	}
	// Failure is already logged by the announcer; nothing else to do.
	_ = fn(ctx)
}

func gateRefID(ref entities.GateRef) any {
	if !ref.Assigned {
		return nil
	}
	return ref.GateID
}

func (h *handler) Join(c *gin.Context) {
	evID, ok := eventID(c)
	if !ok {
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	var body joinBody
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	result, err := h.participation.JoinEvent(ctx, input.JoinRequest{
		EventID:         evID,
		UserID:          userID,
		DepartureGateID: body.DepartureGateID,
		ArrivalGateID:   body.ArrivalGateID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrGateConflict) {
			metrics.ObserveGateConflict("join")
		}
		h.respondError(c, err)
		return
	}

	outcomeKey := i18n.JoinOutcomeKey(result.GatesAssigned())
	metrics.ObserveJoin(joinOutcomeLabel(result.GatesAssigned()))
	observeJoinAssignments(result)

	if event, err := h.events.FindByID(ctx, evID); err == nil {
		h.announce(ctx, func(ctx context.Context) error {
			return h.notifier.AnnounceJoin(ctx, event, result.Participant, result.Departure, result.Arrival)
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"participant_id":    result.Participant.ID,
		"departure_gate_id": gateRefID(result.Participant.Departure),
		"arrival_gate_id":   gateRefID(result.Participant.Arrival),
		"departure_outcome": result.Departure.Outcome.String(),
		"arrival_outcome":   result.Arrival.Outcome.String(),
		"message": h.translator.T(locale(c), outcomeKey, map[string]any{
			"Departure": result.Departure.Gate.Label,
			"Arrival":   result.Arrival.Gate.Label,
		}),
	})
}

func joinOutcomeLabel(gatesAssigned int) string {
	switch gatesAssigned {
	case 2:
		return "full"
	case 1:
		return "partial"
	}
	return "none"
}

func observeJoinAssignments(result *input.JoinResult) {
	if result.Departure.Assigned() {
		metrics.ObserveGateAssignment("departure", assignmentMode(result.Departure))
	}
	if result.Arrival.Assigned() {
		metrics.ObserveGateAssignment("arrival", assignmentMode(result.Arrival))
	}
}

func assignmentMode(d allocation.Decision) string {
	if d.Outcome == allocation.Bound {
		return "explicit"
	}
	return "auto"
}

func (h *handler) Leave(c *gin.Context) {
	evID, ok := eventID(c)
	if !ok {
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.participation.LeaveEvent(ctx, evID, userID); err != nil {
		h.respondError(c, err)
		return
	}
	metrics.ObserveLeave()

	if event, err := h.events.FindByID(ctx, evID); err == nil {
		h.announce(ctx, func(ctx context.Context) error {
			return h.notifier.AnnounceLeave(ctx, event, userID)
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": h.translator.T(locale(c), i18n.KeyLeft, nil)})
}

func (h *handler) AssignGate(c *gin.Context) {
	evID, ok := eventID(c)
	if !ok {
		return
	}
	gID, ok := gateID(c)
	if !ok {
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	var body assignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := entities.GateRole(body.Role)

	ctx := c.Request.Context()
	result, err := h.participation.AssignGate(ctx, evID, userID, gID, role)
	if err != nil {
		if errors.Is(err, domain.ErrGateConflict) {
			metrics.ObserveGateConflict("assign")
		}
		h.respondError(c, err)
		return
	}
	metrics.ObserveGateAssignment(string(role), "explicit")

	if event, err := h.events.FindByID(ctx, evID); err == nil {
		h.announce(ctx, func(ctx context.Context) error {
			return h.notifier.AnnounceGateAssigned(ctx, event, result.Participant, result.Gate)
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"gate_id": result.Gate.ID,
		"label":   result.Gate.Label,
		"message": h.translator.T(locale(c), i18n.KeyGateAssigned, map[string]any{"Label": result.Gate.Label}),
	})
}

func (h *handler) ClearGate(c *gin.Context) {
	evID, ok := eventID(c)
	if !ok {
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	role := entities.GateRole(c.Param("role"))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gate role"})
		return
	}

	if err := h.participation.ClearGate(c.Request.Context(), evID, userID, role); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": h.translator.T(locale(c), i18n.KeyGateCleared, map[string]any{"Role": string(role)}),
	})
}

func (h *handler) AdminAssignGate(c *gin.Context) {
	evID, ok := eventID(c)
	if !ok {
		return
	}
	gID, ok := gateID(c)
	if !ok {
		return
	}
	callerID, ok := h.callerID(c)
	if !ok {
		return
	}
	targetUserID := c.Param("userID")
	var body assignBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := entities.GateRole(body.Role)

	ctx := c.Request.Context()
	callerRoles, ok := h.callerRoles(c, callerID)
	if !ok {
		return
	}
	result, err := h.participation.AdminAssignGate(ctx, evID, targetUserID, gID, role, callerRoles)
	if err != nil {
		if errors.Is(err, domain.ErrGateConflict) {
			metrics.ObserveGateConflict("admin_assign")
		}
		h.respondError(c, err)
		return
	}
	metrics.ObserveGateAssignment(string(role), "admin")

	if event, err := h.events.FindByID(ctx, evID); err == nil {
		h.announce(ctx, func(ctx context.Context) error {
			return h.notifier.AnnounceGateAssigned(ctx, event, result.Participant, result.Gate)
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"gate_id":        result.Gate.ID,
		"label":          result.Gate.Label,
		"participant_id": result.Participant.ID,
	})
}

func (h *handler) AdminRemoveParticipant(c *gin.Context) {
	evID, ok := eventID(c)
	if !ok {
		return
	}
	callerID, ok := h.callerID(c)
	if !ok {
		return
	}
	targetUserID := c.Param("userID")

	ctx := c.Request.Context()
	callerRoles, ok := h.callerRoles(c, callerID)
	if !ok {
		return
	}
	if err := h.participation.AdminRemoveParticipant(ctx, evID, targetUserID, callerRoles); err != nil {
		h.respondError(c, err)
		return
	}
	metrics.ObserveLeave()

	if event, err := h.events.FindByID(ctx, evID); err == nil {
		h.announce(ctx, func(ctx context.Context) error {
			return h.notifier.AnnounceLeave(ctx, event, targetUserID)
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": h.translator.T(locale(c), i18n.KeyRemoved, nil),
	})
}

func (h *handler) GateOccupancy(c *gin.Context) {
	evID, ok := eventID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.events.FindByID(ctx, evID); err != nil {
		h.respondError(c, err)
		return
	}

	out := gin.H{}
	for _, role := range []entities.GateRole{entities.GateRoleDeparture, entities.GateRoleArrival} {
		snap, err := h.gates.ListOccupancy(ctx, evID, role)
		if err != nil {
			h.respondError(c, err)
			return
		}
		slots := make([]gin.H, 0, len(snap))
		for _, slot := range snap {
			entry := gin.H{"gate_id": slot.Gate.ID, "label": slot.Gate.Label, "occupied": !slot.Free()}
			slots = append(slots, entry)
		}
		out[string(role)] = slots
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) Roster(c *gin.Context) {
	evID, ok := eventID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.events.FindByID(ctx, evID); err != nil {
		h.respondError(c, err)
		return
	}
	participants, err := h.participants.FindByEventID(ctx, evID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(participants))
	for _, p := range participants {
		out = append(out, gin.H{
			"participant_id":    p.ID,
			"user_id":           p.UserID,
			"departure_gate_id": gateRefID(p.Departure),
			"arrival_gate_id":   gateRefID(p.Arrival),
			"joined_at":         p.JoinedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"participants": out})
}
