package portal

import (
	"context"
	"sync"
	"time"
)

const roleLookupTimeout = 5 * time.Second

// SessionContextOption customizes a SessionContext.
type SessionContextOption func(*SessionContext)

// WithSessionLogger overrides the logger.
func WithSessionLogger(logger Logger) SessionContextOption {
	return func(s *SessionContext) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionActivitySink sets the sink that receives sign out events.
func WithSessionActivitySink(sink ActivitySink) SessionContextOption {
	return func(s *SessionContext) {
		s.sink = normalizeActivitySink(sink)
	}
}

// WithSessionClock injects a custom clock (useful for tests).
func WithSessionClock(clock func() time.Time) SessionContextOption {
	return func(s *SessionContext) {
		if clock != nil {
			s.now = clock
		}
	}
}

// SessionContext holds the signed in identity and its administrator flag.
// It is created explicitly, started with Init and stopped with Dispose.
type SessionContext struct {
	source SessionSource
	roles  RoleLookup
	logger Logger
	sink   ActivitySink
	now    func() time.Time

	mu          sync.RWMutex
	session     *Session
	admin       bool
	started     bool
	unsubscribe func()
	listeners   map[int]func(SessionSnapshot)
	nextID      int
}

// SessionSnapshot is what change listeners receive.
type SessionSnapshot struct {
	Identity      *Identity
	Administrator bool
}

// NewSessionContext binds a context to the hosted session source and the
// role lookup used to derive the administrator flag. roles may be nil.
func NewSessionContext(source SessionSource, roles RoleLookup, opts ...SessionContextOption) *SessionContext {
	if source == nil {
		panic("portal: NewSessionContext requires a SessionSource")
	}
	s := &SessionContext{
		source:    source,
		roles:     roles,
		logger:    defLogger{},
		sink:      noopActivitySink{},
		now:       time.Now,
		listeners: map[int]func(SessionSnapshot){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Init loads the current session and subscribes to session changes. Calling
// Init on a started context is a no-op.
func (s *SessionContext) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	session, err := s.source.GetSession(ctx)
	if err != nil {
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		return err
	}
	s.apply(ctx, session)

	unsubscribe := s.source.OnSessionChange(s.handle)
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

// Dispose drops the subscription and listeners. It is safe to call twice.
func (s *SessionContext) Dispose() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.started = false
	s.listeners = map[int]func(SessionSnapshot){}
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Establish implements SessionReceiver so a finished flow can hand over its session.
func (s *SessionContext) Establish(ctx context.Context, session *Session) error {
	s.apply(ctx, session)
	return nil
}

// CurrentIdentity returns a copy of the signed in identity.
func (s *SessionContext) CurrentIdentity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Identity{}, false
	}
	return s.session.Identity, true
}

// Session returns the cached session, nil when signed out.
func (s *SessionContext) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// IsAdministrator reports the derived administrator flag.
func (s *SessionContext) IsAdministrator() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

// OnChange registers fn for identity changes and returns its remover.
func (s *SessionContext) OnChange(fn func(SessionSnapshot)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SignOut invalidates the hosted session and clears the local cache. The
// cache is cleared even when the service call fails. With no session it does
// nothing.
func (s *SessionContext) SignOut(ctx context.Context) error {
	s.mu.RLock()
	current := s.session
	s.mu.RUnlock()
	if current == nil {
		return nil
	}

	err := s.source.SignOut(ctx)
	if err != nil {
		s.logger.Warn("hosted sign out failed, clearing local session: %v", err)
	}
	s.apply(ctx, nil)

	recordActivity(ctx, s.sink, s.logger, s.now, ActivityEvent{
		EventType: ActivitySignedOut,
		UserID:    current.Identity.ID.String(),
	})
	return err
}

func (s *SessionContext) handle(event SessionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), roleLookupTimeout)
	defer cancel()

	if event.Kind == SessionSignedOut {
		s.apply(ctx, nil)
		return
	}
	s.apply(ctx, event.Session)
}

func (s *SessionContext) apply(ctx context.Context, session *Session) {
	admin := false
	if session != nil {
		admin = s.resolveAdmin(ctx, session.Identity)
	}

	s.mu.Lock()
	if session == nil {
		s.session = nil
	} else {
		cp := *session
		s.session = &cp
	}
	s.admin = admin
	snapshot := SessionSnapshot{Administrator: admin}
	if s.session != nil {
		identity := s.session.Identity
		snapshot.Identity = &identity
	}
	listeners := make([]func(SessionSnapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (s *SessionContext) resolveAdmin(ctx context.Context, identity Identity) bool {
	if s.roles == nil {
		return false
	}
	ok, err := s.roles.HasRole(ctx, identity.ID.String(), RoleAdmin)
	if err != nil {
		s.logger.Warn("role lookup for %s failed: %v", identity.ID, err)
		return false
	}
	return ok
}
