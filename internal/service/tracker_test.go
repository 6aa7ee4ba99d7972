package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	mockauth "github.com/stewardly/ledger-api/internal/mocks/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// gatedProfileStore delays Get until released, letting tests interleave
// identity events with in-flight resolutions.
type gatedProfileStore struct {
	*mockauth.MemoryProfileStore
	gate chan struct{}
	once sync.Once
}

func newGatedProfileStore(profiles ...domainauth.Profile) *gatedProfileStore {
	return &gatedProfileStore{
		MemoryProfileStore: mockauth.NewMemoryProfileStore(profiles...),
		gate:               make(chan struct{}),
	}
}

func (s *gatedProfileStore) release() { s.once.Do(func() { close(s.gate) }) }

func (s *gatedProfileStore) Get(ctx context.Context, id string) (domainauth.Profile, error) {
	<-s.gate
	return s.MemoryProfileStore.Get(ctx, id)
}

func startTracker(t *testing.T, source ports.IdentitySource, store ports.ProfileStore) *SessionTracker {
	t.Helper()
	tracker := NewSessionTracker(SessionTrackerOptions{
		Source:   source,
		Resolver: NewRoleResolver(RoleResolverOptions{Profiles: store, AdminEmail: adminEmail}),
	})
	tracker.Start(context.Background())
	t.Cleanup(tracker.Close)
	return tracker
}

func waitForState(t *testing.T, tracker *SessionTracker, pred func(domainauth.SessionState) bool) domainauth.SessionState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state := tracker.State(); pred(state) {
			return state
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("state never matched; last state: %+v", tracker.State())
	return domainauth.SessionState{}
}

func TestTrackerInitialStateIsSignedOut(t *testing.T) {
	source := mockauth.NewScriptedIdentitySource()
	tracker := startTracker(t, source, mockauth.NewMemoryProfileStore())

	state := tracker.State()
	assert.Nil(t, state.Identity)
	assert.False(t, state.Resolving)
	assert.Equal(t, domainauth.RoleUnknown, state.Role)
}

func TestTrackerResolvesSignIn(t *testing.T) {
	source := mockauth.NewScriptedIdentitySource()
	store := mockauth.NewMemoryProfileStore(domainauth.Profile{
		ID: "u1", Email: "u1@example.org", Role: domainauth.RoleMember,
	})
	tracker := startTracker(t, source, store)

	source.Emit(&domainauth.Identity{ID: "u1", Email: "u1@example.org"})

	state := waitForState(t, tracker, func(s domainauth.SessionState) bool {
		return !s.Resolving && s.Identity != nil
	})
	assert.Equal(t, domainauth.RoleMember, state.Role)
	assert.Equal(t, "u1", state.Identity.ID)
}

func TestTrackerPublishesResolvingBeforeResult(t *testing.T) {
	source := mockauth.NewScriptedIdentitySource()
	store := newGatedProfileStore(domainauth.Profile{
		ID: "u1", Email: "u1@example.org", Role: domainauth.RoleMember,
	})
	tracker := startTracker(t, source, store)

	source.Emit(&domainauth.Identity{ID: "u1", Email: "u1@example.org"})

	// With the store gated, the published state must be resolving.
	state := tracker.State()
	require.NotNil(t, state.Identity)
	assert.True(t, state.Resolving)
	assert.Equal(t, domainauth.DecisionResolving,
		domainauth.Evaluate(state, nil), "no protected content while resolving")

	store.release()
	state = waitForState(t, tracker, func(s domainauth.SessionState) bool { return !s.Resolving })
	assert.Equal(t, domainauth.RoleMember, state.Role)
}

func TestTrackerSignOutIsImmediateAndSkipsStore(t *testing.T) {
	source := mockauth.NewScriptedIdentitySource()
	store := newGatedProfileStore() // never released: any store access would hang
	tracker := startTracker(t, source, store)

	source.Emit(nil)

	state := tracker.State()
	assert.Nil(t, state.Identity)
	assert.False(t, state.Resolving, "signed-out state is terminal, no resolution runs")
	store.release()
}

func TestTrackerLastEventWins(t *testing.T) {
	source := mockauth.NewScriptedIdentitySource()
	store := newGatedProfileStore(domainauth.Profile{
		ID: "u1", Email: "u1@example.org", Role: domainauth.RoleAdmin,
	})
	tracker := startTracker(t, source, store)

	// Sign-in starts a resolution that blocks on the gated store, then a
	// sign-out supersedes it before it finishes.
	source.Emit(&domainauth.Identity{ID: "u1", Email: "u1@example.org"})
	source.Emit(nil)
	store.release()

	// The stale resolution must never overwrite the signed-out state.
	time.Sleep(50 * time.Millisecond)
	state := tracker.State()
	assert.Nil(t, state.Identity)
	assert.Equal(t, domainauth.RoleUnknown, state.Role)
}

func TestTrackerResolutionFailurePublishesUnresolved(t *testing.T) {
	source := mockauth.NewScriptedIdentitySource()
	store := mockauth.NewMemoryProfileStore()
	store.GetErr = assert.AnError
	tracker := startTracker(t, source, store)

	source.Emit(&domainauth.Identity{ID: "u1", Email: "u1@example.org"})

	state := waitForState(t, tracker, func(s domainauth.SessionState) bool { return !s.Resolving && s.Identity != nil })
	assert.Equal(t, domainauth.RoleUnknown, state.Role)
	assert.False(t, state.Authorized())
}

func TestTrackerListenerMayReadStateDuringNotify(t *testing.T) {
	source := mockauth.NewScriptedIdentitySource()
	store := mockauth.NewMemoryProfileStore(domainauth.Profile{
		ID: "u1", Email: "u1@example.org", Role: domainauth.RoleTreasurer,
	})
	tracker := startTracker(t, source, store)

	// A listener that calls back into the tracker must not deadlock:
	// notifications run outside the tracker's lock.
	var mu sync.Mutex
	var observed []domainauth.Role
	unsub := tracker.SubscribeState(func(domainauth.SessionState) {
		snapshot := tracker.State()
		mu.Lock()
		observed = append(observed, snapshot.Role)
		mu.Unlock()
	})
	defer unsub()

	source.Emit(&domainauth.Identity{ID: "u1", Email: "u1@example.org"})
	waitForState(t, tracker, func(s domainauth.SessionState) bool { return !s.Resolving && s.Identity != nil })
	source.Emit(nil)
	waitForState(t, tracker, func(s domainauth.SessionState) bool { return s.Identity == nil })

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, observed, domainauth.RoleTreasurer)
	assert.Contains(t, observed, domainauth.RoleUnknown)
}

func TestTrackerSubscribeState(t *testing.T) {
	source := mockauth.NewScriptedIdentitySource()
	store := mockauth.NewMemoryProfileStore(domainauth.Profile{
		ID: "u1", Email: "u1@example.org", Role: domainauth.RoleMember,
	})
	tracker := startTracker(t, source, store)

	var mu sync.Mutex
	var states []domainauth.SessionState
	unsub := tracker.SubscribeState(func(s domainauth.SessionState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})
	defer unsub()

	mu.Lock()
	require.Len(t, states, 1, "listener fires immediately with current state")
	mu.Unlock()

	source.Emit(&domainauth.Identity{ID: "u1", Email: "u1@example.org"})
	waitForState(t, tracker, func(s domainauth.SessionState) bool { return !s.Resolving && s.Identity != nil })

	mu.Lock()
	n := len(states)
	mu.Unlock()
	assert.GreaterOrEqual(t, n, 3, "initial, resolving, and resolved states")
}
