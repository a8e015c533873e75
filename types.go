package portal

import (
	"context"
	"fmt"
	"time"
)

// Logger is the printf style logger used across the portal packages.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialExchange issues single round trips to the hosted auth service.
type CredentialExchange interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	RequestOTP(ctx context.Context, req OTPRequest) error
	VerifyOTP(ctx context.Context, destination, code string, channel Channel) (*Session, error)
}

// IdentityUpdater patches the identity bound to the current session.
type IdentityUpdater interface {
	UpdateIdentity(ctx context.Context, patch IdentityPatch) (*Identity, error)
}

// SessionSource exposes the hosted session and its change notifications.
type SessionSource interface {
	GetSession(ctx context.Context) (*Session, error)
	OnSessionChange(fn func(SessionEvent)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

// SessionReceiver is notified when a flow produces a session.
type SessionReceiver interface {
	Establish(ctx context.Context, session *Session) error
}

// SessionReceiverFunc adapts a function to SessionReceiver.
type SessionReceiverFunc func(ctx context.Context, session *Session) error

// Establish implements SessionReceiver.
func (f SessionReceiverFunc) Establish(ctx context.Context, session *Session) error {
	if f == nil {
		return nil
	}
	return f(ctx, session)
}

// ExistenceChecker answers whether an account is already bound to a contact.
type ExistenceChecker interface {
	Exists(ctx context.Context, kind ContactKind, value string) (bool, error)
}

// RoleLookup resolves roles granted to an identity.
type RoleLookup interface {
	HasRole(ctx context.Context, userID string, role Role) (bool, error)
}

// FlowConfig carries the tunables of the auth flow.
type FlowConfig interface {
	GetResendCooldown() time.Duration
	GetPhoneRegion() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] PORTAL "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] PORTAL "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] PORTAL "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] PORTAL "+newline(format), args...)
}

// DefaultLogger returns the stdout logger used when none is configured.
func DefaultLogger() Logger {
	return defLogger{}
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
