package portal_test

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-portal"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fakeExchange struct {
	mu        sync.Mutex
	otps      []portal.OTPRequest
	passwords []string
	codes     []string

	signInErr  error
	requestErr error
	verifyErr  error
}

func (f *fakeExchange) SignInWithPassword(_ context.Context, email, password string) (*portal.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords = append(f.passwords, email+":"+password)
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return sessionFor(email, ""), nil
}

func (f *fakeExchange) RequestOTP(_ context.Context, req portal.OTPRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps = append(f.otps, req)
	return f.requestErr
}

func (f *fakeExchange) VerifyOTP(_ context.Context, destination, code string, channel portal.Channel) (*portal.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, code)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if channel == portal.ChannelSMS {
		return sessionFor("", destination), nil
	}
	return sessionFor(destination, ""), nil
}

func sessionFor(email, phone string) *portal.Session {
	return &portal.Session{
		AccessToken:  "access-" + email + phone,
		RefreshToken: "refresh-" + email + phone,
		ExpiresAt:    testNow.Add(time.Hour),
		Identity: portal.Identity{
			ID:    uuid.NewSHA1(uuid.NameSpaceOID, []byte(email+phone)),
			Email: email,
			Phone: phone,
		},
	}
}

type fakeChecker struct {
	exists bool
	err    error
	calls  []string
}

func (f *fakeChecker) Exists(_ context.Context, kind portal.ContactKind, value string) (bool, error) {
	f.calls = append(f.calls, string(kind)+":"+value)
	return f.exists, f.err
}

type fakeRoles struct {
	admins map[string]bool
	err    error
}

func (f fakeRoles) HasRole(_ context.Context, userID string, role portal.Role) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return role == portal.RoleAdmin && f.admins[userID], nil
}

type fakeSource struct {
	mu        sync.Mutex
	session   *portal.Session
	getErr    error
	signOut   int
	signErr   error
	listeners []func(portal.SessionEvent)
}

func (f *fakeSource) GetSession(context.Context) (*portal.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.getErr
}

func (f *fakeSource) OnSessionChange(fn func(portal.SessionEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
	idx := len(f.listeners) - 1
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners[idx] = nil
	}
}

func (f *fakeSource) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOut++
	f.session = nil
	return f.signErr
}

func (f *fakeSource) emit(event portal.SessionEvent) {
	f.mu.Lock()
	listeners := append([]func(portal.SessionEvent){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range listeners {
		if fn != nil {
			fn(event)
		}
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []portal.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event portal.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) types() []portal.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]portal.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: testNow} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
