package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaops/internal/domain"
	"vaops/internal/domain/allocation"
	"vaops/internal/domain/entities"
	"vaops/internal/ports/input"
)

// fakeStore backs all repository ports with one mutex-guarded map set. Its
// WithinTx serializes transactions and re-checks the uniqueness constraints
// on every write, mirroring the role the database plays in production: the
// store, not the in-process logic, has the final word.
type fakeStore struct {
	mu           sync.Mutex
	events       map[int64]*entities.Event
	gates        map[int64]entities.Gate
	participants map[int64]*entities.Participant
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:       map[int64]*entities.Event{},
		gates:        map[int64]entities.Gate{},
		participants: map[int64]*entities.Participant{},
	}
}

func (f *fakeStore) addEvent(id int64, title string) {
	f.events[id] = &entities.Event{ID: id, Title: title, Status: "scheduled", ScheduledAt: time.Now().Add(24 * time.Hour)}
}

func (f *fakeStore) addGate(id, eventID int64, label string, role entities.GateRole) {
	f.gates[id] = entities.Gate{ID: id, EventID: eventID, Label: label, Role: role}
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx)
}

// fakeEventRepo and fakeGateRepo expose the store through the two read ports
// whose methods would otherwise collide on one type.
type fakeEventRepo struct{ *fakeStore }

func (f fakeEventRepo) FindByID(ctx context.Context, id int64) (*entities.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEventNotFound
}

type fakeGateRepo struct{ *fakeStore }

func (f fakeGateRepo) FindByID(ctx context.Context, id int64) (*entities.Gate, error) {
	if g, ok := f.gates[id]; ok {
		cp := g
		return &cp, nil
	}
	return nil, domain.ErrInvalidGate
}

func (f fakeGateRepo) ListOccupancy(ctx context.Context, eventID int64, role entities.GateRole) (allocation.Snapshot, error) {
	var snap allocation.Snapshot
	for _, g := range f.gates {
		if g.EventID != eventID || g.Role != role {
			continue
		}
		slot := allocation.Slot{Gate: g}
		for _, p := range f.participants {
			if ref := p.GateFor(role); ref.Assigned && ref.GateID == g.ID {
				slot.OccupantID = p.ID
			}
		}
		snap = append(snap, slot)
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].Gate.Label < snap[j].Gate.Label })
	return snap, nil
}

// checkConstraints mirrors the unique indexes of the schema. candidate may
// not yet be part of f.participants.
func (f *fakeStore) checkConstraints(candidate *entities.Participant) error {
	for _, p := range f.participants {
		if p.ID == candidate.ID {
			continue
		}
		if p.EventID == candidate.EventID && p.UserID == candidate.UserID {
			return domain.ErrAlreadyJoined
		}
		for _, role := range []entities.GateRole{entities.GateRoleDeparture, entities.GateRoleArrival} {
			mine, theirs := candidate.GateFor(role), p.GateFor(role)
			if mine.Assigned && theirs.Assigned && mine.GateID == theirs.GateID {
				return domain.ErrGateConflict
			}
		}
	}
	return nil
}

func (f *fakeStore) Create(ctx context.Context, participant *entities.Participant) error {
	f.nextID++
	participant.ID = f.nextID
	if err := f.checkConstraints(participant); err != nil {
		participant.ID = 0
		return err
	}
	cp := *participant
	f.participants[cp.ID] = &cp
	return nil
}

func (f *fakeStore) FindByEventIDAndUserID(ctx context.Context, eventID int64, userID string) (*entities.Participant, error) {
	for _, p := range f.participants {
		if p.EventID == eventID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotParticipant
}

func (f *fakeStore) FindByEventID(ctx context.Context, eventID int64) ([]entities.Participant, error) {
	var out []entities.Participant
	for _, p := range f.participants {
		if p.EventID == eventID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateGate(ctx context.Context, participantID int64, role entities.GateRole, ref entities.GateRef) error {
	p, ok := f.participants[participantID]
	if !ok {
		return domain.ErrNotParticipant
	}
	updated := *p
	updated.SetGate(role, ref)
	if err := f.checkConstraints(&updated); err != nil {
		return err
	}
	*p = updated
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, participantID int64) error {
	if _, ok := f.participants[participantID]; !ok {
		return domain.ErrNotParticipant
	}
	delete(f.participants, participantID)
	return nil
}

// assertNoDoubleBooking fails if any gate is held by two participants.
func (f *fakeStore) assertNoDoubleBooking(t *testing.T) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, role := range []entities.GateRole{entities.GateRoleDeparture, entities.GateRoleArrival} {
		held := map[int64]int64{}
		for _, p := range f.participants {
			ref := p.GateFor(role)
			if !ref.Assigned {
				continue
			}
			if other, taken := held[ref.GateID]; taken {
				t.Fatalf("gate %d (%s) held by participants %d and %d", ref.GateID, role, other, p.ID)
			}
			held[ref.GateID] = p.ID
		}
	}
}

type stubGuard struct {
	staff map[string]bool
}

func (g *stubGuard) HasEventManagementCapability(roles domain.RoleSet) bool {
	for _, r := range roles {
		if g.staff[r] {
			return true
		}
	}
	return false
}

func newService(store *fakeStore) *ParticipationService {
	guard := &stubGuard{staff: map[string]bool{"event_staff": true}}
	return NewParticipationService(store, fakeEventRepo{store}, fakeGateRepo{store}, store, guard)
}

// twoByTwo seeds event 1 with departure gates A1, A2 and arrival gates B1, B2.
func twoByTwo() *fakeStore {
	store := newFakeStore()
	store.addEvent(1, "Friday Night Ops")
	store.addGate(10, 1, "A1", entities.GateRoleDeparture)
	store.addGate(11, 1, "A2", entities.GateRoleDeparture)
	store.addGate(20, 1, "B1", entities.GateRoleArrival)
	store.addGate(21, 1, "B2", entities.GateRoleArrival)
	return store
}

var staffRoles = domain.RoleSet{"event_staff"}

func TestJoinAutoAssignsFirstFreeGates(t *testing.T) {
	svc := newService(twoByTwo())

	result, err := svc.JoinEvent(context.Background(), input.JoinRequest{EventID: 1, UserID: "p1"})
	require.NoError(t, err)

	assert.Equal(t, allocation.AutoAssigned, result.Departure.Outcome)
	assert.Equal(t, "A1", result.Departure.Gate.Label)
	assert.Equal(t, allocation.AutoAssigned, result.Arrival.Outcome)
	assert.Equal(t, "B1", result.Arrival.Gate.Label)
	assert.Equal(t, 2, result.GatesAssigned())
	assert.Equal(t, entities.BoundTo(10), result.Participant.Departure)
	assert.Equal(t, entities.BoundTo(20), result.Participant.Arrival)
}

func TestJoinExplicitBindsRequestedGate(t *testing.T) {
	svc := newService(twoByTwo())

	result, err := svc.JoinEvent(context.Background(), input.JoinRequest{EventID: 1, UserID: "p1", DepartureGateID: 11})
	require.NoError(t, err)

	assert.Equal(t, allocation.Bound, result.Departure.Outcome)
	assert.Equal(t, "A2", result.Departure.Gate.Label)
	// arrival was not requested, so it was auto-assigned
	assert.Equal(t, allocation.AutoAssigned, result.Arrival.Outcome)
}

func TestJoinExplicitConflictAbortsWholeJoin(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p1", DepartureGateID: 10})
	require.NoError(t, err)

	// p2 asks for the taken departure gate; arrival gates are still free but
	// the join must fail outright, never partially.
	_, err = svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p2", DepartureGateID: 10, ArrivalGateID: 21})
	assert.ErrorIs(t, err, domain.ErrGateConflict)

	_, err = store.FindByEventIDAndUserID(ctx, 1, "p2")
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestJoinAlreadyJoined(t *testing.T) {
	svc := newService(twoByTwo())
	ctx := context.Background()

	_, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p1"})
	require.NoError(t, err)

	_, err = svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p1"})
	assert.ErrorIs(t, err, domain.ErrAlreadyJoined)
}

func TestJoinEventNotFound(t *testing.T) {
	svc := newService(twoByTwo())

	_, err := svc.JoinEvent(context.Background(), input.JoinRequest{EventID: 99, UserID: "p1"})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestJoinForeignGateIsInvalid(t *testing.T) {
	store := twoByTwo()
	store.addEvent(2, "Other Event")
	store.addGate(30, 2, "C1", entities.GateRoleDeparture)
	svc := newService(store)

	_, err := svc.JoinEvent(context.Background(), input.JoinRequest{EventID: 1, UserID: "p1", DepartureGateID: 30})
	assert.ErrorIs(t, err, domain.ErrInvalidGate)

	// an arrival gate requested as departure is invalid too
	_, err = svc.JoinEvent(context.Background(), input.JoinRequest{EventID: 1, UserID: "p1", DepartureGateID: 20})
	assert.ErrorIs(t, err, domain.ErrInvalidGate)
}

func TestJoinExhaustionIsNotFailure(t *testing.T) {
	store := newFakeStore()
	store.addEvent(1, "Small Event")
	store.addGate(10, 1, "A1", entities.GateRoleDeparture)
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p1"})
	require.NoError(t, err)

	// all departure gates taken, no arrival gates exist at all
	result, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p2"})
	require.NoError(t, err)
	assert.Equal(t, allocation.NoneAvailable, result.Departure.Outcome)
	assert.Equal(t, allocation.NoneAvailable, result.Arrival.Outcome)
	assert.Equal(t, 0, result.GatesAssigned())
	assert.False(t, result.Participant.Departure.Assigned)
	assert.False(t, result.Participant.Arrival.Assigned)
}

func TestLeaveReleasesGates(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p1", DepartureGateID: 10})
	require.NoError(t, err)
	require.NoError(t, svc.LeaveEvent(ctx, 1, "p1"))

	// the gate is immediately assignable again
	result, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p2", DepartureGateID: 10})
	require.NoError(t, err)
	assert.Equal(t, allocation.Bound, result.Departure.Outcome)
}

func TestLeaveNotParticipant(t *testing.T) {
	svc := newService(twoByTwo())
	assert.ErrorIs(t, svc.LeaveEvent(context.Background(), 1, "ghost"), domain.ErrNotParticipant)
}

func TestAssignGateSwap(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p1", DepartureGateID: 10})
	require.NoError(t, err)

	result, err := svc.AssignGate(ctx, 1, "p1", 11, entities.GateRoleDeparture)
	require.NoError(t, err)
	assert.Equal(t, "A2", result.Gate.Label)
	store.assertNoDoubleBooking(t)

	// the old gate is free again
	other, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p2", DepartureGateID: 10})
	require.NoError(t, err)
	assert.Equal(t, allocation.Bound, other.Departure.Outcome)

	// reclaiming the currently held gate is a no-op success
	result, err = svc.AssignGate(ctx, 1, "p1", 11, entities.GateRoleDeparture)
	require.NoError(t, err)
	assert.Equal(t, int64(11), result.Gate.ID)
}

func TestAssignGateConflictAndErrors(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p1", DepartureGateID: 10})
	require.NoError(t, err)
	_, err = svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p2"})
	require.NoError(t, err)

	// p2 cannot take p1's gate
	_, err = svc.AssignGate(ctx, 1, "p2", 10, entities.GateRoleDeparture)
	assert.ErrorIs(t, err, domain.ErrGateConflict)

	// non-member cannot assign
	_, err = svc.AssignGate(ctx, 1, "ghost", 11, entities.GateRoleDeparture)
	assert.ErrorIs(t, err, domain.ErrNotParticipant)

	// wrong role for the gate
	_, err = svc.AssignGate(ctx, 1, "p1", 20, entities.GateRoleDeparture)
	assert.ErrorIs(t, err, domain.ErrInvalidGate)
}

func TestClearGate(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p1", DepartureGateID: 10})
	require.NoError(t, err)
	require.NoError(t, svc.ClearGate(ctx, 1, "p1", entities.GateRoleDeparture))

	p, err := store.FindByEventIDAndUserID(ctx, 1, "p1")
	require.NoError(t, err)
	assert.False(t, p.Departure.Assigned)
	// arrival assignment is untouched
	assert.True(t, p.Arrival.Assigned)
}

func TestAdminAssignGateImplicitJoin(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)
	ctx := context.Background()

	// the target never joined: staff assignment creates the membership
	result, err := svc.AdminAssignGate(ctx, 1, "p3", 10, entities.GateRoleDeparture, staffRoles)
	require.NoError(t, err)
	assert.Equal(t, "A1", result.Gate.Label)
	assert.Equal(t, entities.BoundTo(10), result.Participant.Departure)
	assert.False(t, result.Participant.Arrival.Assigned)

	p, err := store.FindByEventIDAndUserID(ctx, 1, "p3")
	require.NoError(t, err)
	assert.Equal(t, entities.BoundTo(10), p.Departure)
}

func TestAdminAssignGateExistingParticipant(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "p1"})
	require.NoError(t, err)

	result, err := svc.AdminAssignGate(ctx, 1, "p1", 11, entities.GateRoleDeparture, staffRoles)
	require.NoError(t, err)
	assert.Equal(t, int64(11), result.Gate.ID)
	store.assertNoDoubleBooking(t)
}

func TestAdminOperationsRequireCapability(t *testing.T) {
	svc := newService(twoByTwo())
	ctx := context.Background()
	pilot := domain.RoleSet{"pilot"}

	_, err := svc.AdminAssignGate(ctx, 1, "p1", 10, entities.GateRoleDeparture, pilot)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	err = svc.AdminRemoveParticipant(ctx, 1, "p1", pilot)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestAdminRemoveParticipant(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)
	ctx := context.Background()

	// removal works even for a participant holding no gates
	store.addEvent(2, "Gateless")
	_, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 2, UserID: "p1"})
	require.NoError(t, err)
	require.NoError(t, svc.AdminRemoveParticipant(ctx, 2, "p1", staffRoles))

	_, err = store.FindByEventIDAndUserID(ctx, 2, "p1")
	assert.ErrorIs(t, err, domain.ErrNotParticipant)

	assert.ErrorIs(t, svc.AdminRemoveParticipant(ctx, 2, "p1", staffRoles), domain.ErrNotParticipant)
}

// TestFullScenario walks the end-to-end sequence: auto join, explicit
// conflict, retry on another gate, leave frees gates, staff pre-assigns a
// seat for a pilot who never joined.
func TestFullScenario(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)
	ctx := context.Background()

	p1, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "P1"})
	require.NoError(t, err)
	assert.Equal(t, "A1", p1.Departure.Gate.Label)
	assert.Equal(t, "B1", p1.Arrival.Gate.Label)

	_, err = svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "P2", DepartureGateID: 10})
	require.ErrorIs(t, err, domain.ErrGateConflict)

	p2, err := svc.JoinEvent(ctx, input.JoinRequest{EventID: 1, UserID: "P2", DepartureGateID: 11})
	require.NoError(t, err)
	assert.Equal(t, allocation.Bound, p2.Departure.Outcome)
	assert.Equal(t, "A2", p2.Departure.Gate.Label)
	assert.Equal(t, allocation.AutoAssigned, p2.Arrival.Outcome)
	assert.Equal(t, "B2", p2.Arrival.Gate.Label)

	require.NoError(t, svc.LeaveEvent(ctx, 1, "P1"))

	p3, err := svc.AdminAssignGate(ctx, 1, "P3", 10, entities.GateRoleDeparture, staffRoles)
	require.NoError(t, err)
	assert.Equal(t, "A1", p3.Gate.Label)
	assert.False(t, p3.Participant.Arrival.Assigned)

	store.assertNoDoubleBooking(t)
}

func TestConcurrentExplicitJoinsSingleWinner(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)

	const pilots = 16
	errs := make(chan error, pilots)
	var wg sync.WaitGroup
	for i := 0; i < pilots; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.JoinEvent(context.Background(), input.JoinRequest{
				EventID:         1,
				UserID:          string(rune('a' + n)),
				DepartureGateID: 10,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	winners, losers := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			winners++
		case assert.ErrorIs(t, err, domain.ErrGateConflict):
			losers++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, pilots-1, losers)
	store.assertNoDoubleBooking(t)
}

func TestConcurrentAutoJoinsNeverDoubleBook(t *testing.T) {
	store := twoByTwo()
	svc := newService(store)

	const pilots = 12
	var wg sync.WaitGroup
	for i := 0; i < pilots; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			// auto mode never errors on exhaustion
			_, err := svc.JoinEvent(context.Background(), input.JoinRequest{
				EventID: 1,
				UserID:  string(rune('a' + n)),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	store.assertNoDoubleBooking(t)

	participants, err := store.FindByEventID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, participants, pilots)

	assigned := 0
	for _, p := range participants {
		if p.Departure.Assigned {
			assigned++
		}
	}
	// exactly as many departures assigned as gates exist
	assert.Equal(t, 2, assigned)
}
