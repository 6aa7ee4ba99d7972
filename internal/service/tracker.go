package service

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// StateListener receives session state snapshots.
type StateListener func(state domainauth.SessionState)

// SessionTrackerOptions groups dependencies for SessionTracker.
type SessionTrackerOptions struct {
	Source   ports.IdentitySource
	Resolver *RoleResolver
	Logger   *slog.Logger
}

// SessionTracker follows the identity source's event stream and keeps the
// published session state current. Each incoming event gets a
// monotonically increasing sequence number; a resolution that finishes
// after a newer event has arrived is discarded, so the published state
// always reflects the latest event (last-event-wins).
//
// While a role resolution is in flight the state carries Resolving=true
// and no protected content may be served from it.
type SessionTracker struct {
	source   ports.IdentitySource
	resolver *RoleResolver
	logger   *slog.Logger

	mu        sync.Mutex
	seq       uint64
	state     domainauth.SessionState
	listeners map[int]StateListener
	nextID    int
	unsub     ports.UnsubscribeFunc

	wg sync.WaitGroup
}

// NewSessionTracker constructs a SessionTracker. Call Start to begin
// following the identity source.
func NewSessionTracker(opts SessionTrackerOptions) *SessionTracker {
	if opts.Source == nil {
		panic("service: SessionTracker requires an identity source")
	}
	if opts.Resolver == nil {
		panic("service: SessionTracker requires a role resolver")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionTracker{
		source:    opts.Source,
		resolver:  opts.Resolver,
		logger:    logger.With("component", "session_tracker"),
		listeners: make(map[int]StateListener),
	}
}

// Start subscribes to the identity source. The source delivers the current
// identity immediately, so the tracker state is initialized before Start
// returns (possibly still resolving).
func (t *SessionTracker) Start(ctx context.Context) {
	t.unsub = t.source.Subscribe(func(identity *domainauth.Identity) {
		t.onIdentity(ctx, identity)
	})
}

// Close stops following the identity source and waits for in-flight
// resolutions to finish.
func (t *SessionTracker) Close() {
	if t.unsub != nil {
		t.unsub()
	}
	t.wg.Wait()
}

func (t *SessionTracker) onIdentity(ctx context.Context, identity *domainauth.Identity) {
	t.mu.Lock()
	t.seq++
	seq := t.seq

	if identity == nil {
		// Signed out: terminal state, no store access.
		notify := t.publishLocked(domainauth.SessionState{Role: domainauth.RoleUnknown})
		t.mu.Unlock()
		notify()
		return
	}

	ident := *identity
	notify := t.publishLocked(domainauth.SessionState{
		Identity:  &ident,
		Role:      domainauth.RoleUnknown,
		Resolving: true,
	})
	t.mu.Unlock()
	notify()

	t.wg.Add(1)
	go t.resolve(ctx, seq, ident)
}

// resolve runs the role resolution for event seq and publishes the result
// unless a newer event has superseded it.
func (t *SessionTracker) resolve(ctx context.Context, seq uint64, ident domainauth.Identity) {
	defer t.wg.Done()

	role, err := t.resolver.Resolve(ctx, ident)
	if err != nil {
		t.logger.ErrorContext(ctx, "role resolution failed",
			"identity_id", ident.ID, "seq", seq, "err", err)
	}

	t.mu.Lock()
	if seq != t.seq {
		t.logger.DebugContext(ctx, "discarding stale resolution",
			"identity_id", ident.ID, "seq", seq, "current_seq", t.seq)
		t.mu.Unlock()
		return
	}
	notify := t.publishLocked(domainauth.SessionState{
		Identity:  &ident,
		Role:      role,
		Resolving: false,
	})
	t.mu.Unlock()
	notify()
}

// publishLocked stores the state and returns a function that notifies the
// listeners registered at that moment. Caller holds t.mu and must invoke
// the returned function after unlocking, so listeners may call back into
// State or SubscribeState without deadlocking.
func (t *SessionTracker) publishLocked(state domainauth.SessionState) func() {
	t.state = state
	snapshot := make([]StateListener, 0, len(t.listeners))
	for _, l := range t.listeners {
		snapshot = append(snapshot, l)
	}
	return func() {
		for _, l := range snapshot {
			l(state)
		}
	}
}

// State returns the current session state snapshot.
func (t *SessionTracker) State() domainauth.SessionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SubscribeState registers a listener, invokes it immediately with the
// current state, and returns an unregister handle.
func (t *SessionTracker) SubscribeState(listener StateListener) ports.UnsubscribeFunc {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = listener
	state := t.state
	t.mu.Unlock()

	listener(state)

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}
