package web

import (
	"context"
	"time"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/middleware/jwtware"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// ClaimsKey is where the jwtware middleware stores verified access claims.
const ClaimsKey = "session_claims"

const localsSession = "portal_session"

// SessionClient is the per request view of the hosted client.
type SessionClient interface {
	portal.CredentialExchange
	portal.SessionSource
	portal.IdentityUpdater
	Session() *portal.Session
	RefreshSession(ctx context.Context) (*portal.Session, error)
}

// Binder returns a client holding session as its current session.
type Binder func(session *portal.Session) SessionClient

// RequestSession is what LoadSession attaches to each request.
type RequestSession struct {
	Context *portal.SessionContext
	Client  SessionClient
}

// Identity returns the signed in identity, if any.
func (r *RequestSession) Identity() (portal.Identity, bool) {
	if r == nil || r.Context == nil {
		return portal.Identity{}, false
	}
	return r.Context.CurrentIdentity()
}

// IsAdministrator reports the administrator flag.
func (r *RequestSession) IsAdministrator() bool {
	if r == nil || r.Context == nil {
		return false
	}
	return r.Context.IsAdministrator()
}

// SessionFrom returns the request session, nil if LoadSession did not run.
func SessionFrom(ctx router.Context) *RequestSession {
	rs, _ := ctx.Locals(localsSession).(*RequestSession)
	return rs
}

// CSRFBinding ties form tokens to the signed in identity, or to the client
// address for anonymous visitors. It must run after the session loader.
func CSRFBinding(ctx router.Context) string {
	if identity, ok := SessionFrom(ctx).Identity(); ok {
		return "user:" + identity.ID.String()
	}
	return "ip:" + ctx.IP()
}

// SessionLoader builds a session context for every request from the access
// claims and the session cookies.
type SessionLoader struct {
	bind       Binder
	roles      portal.RoleLookup
	logger     portal.Logger
	cookies    cookieWriter
	refreshTTL time.Duration
	now        func() time.Time
}

// NewSessionLoader returns a loader. roles may be nil.
func NewSessionLoader(bind Binder, roles portal.RoleLookup, settings Settings, logger portal.Logger) *SessionLoader {
	if bind == nil {
		panic("web: NewSessionLoader requires a Binder")
	}
	if logger == nil {
		logger = portal.DefaultLogger()
	}
	settings = settings.withDefaults()
	return &SessionLoader{
		bind:       bind,
		roles:      roles,
		logger:     logger,
		cookies:    cookieWriter{secure: settings.CookieSecure, now: time.Now},
		refreshTTL: settings.RefreshTTL,
		now:        time.Now,
	}
}

// Middleware attaches a RequestSession and disposes it once the handler returns.
func (l *SessionLoader) Middleware() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			rs := l.Load(ctx)
			ctx.Locals(localsSession, rs)
			defer rs.Context.Dispose()
			return next(ctx)
		}
	}
}

// Load resolves the session for ctx. A visitor with only a refresh cookie
// gets a refreshed session and new cookies.
func (l *SessionLoader) Load(ctx router.Context) *RequestSession {
	var session *portal.Session

	if claims, ok := ctx.Locals(ClaimsKey).(*jwtware.Claims); ok && claims != nil {
		session = sessionFromClaims(claims, ctx.Cookies(CookieAccess), ctx.Cookies(CookieRefresh))
	}

	client := l.bind(session)

	if session == nil {
		if refresh := ctx.Cookies(CookieRefresh); refresh != "" {
			client = l.bind(&portal.Session{RefreshToken: refresh, ExpiresAt: l.now().Add(-time.Second)})
			refreshed, err := client.RefreshSession(ctx.Context())
			if err != nil {
				l.logger.Info("session refresh failed: %v", err)
				if !portal.IsTransportError(err) {
					l.cookies.clearSession(ctx)
				}
				client = l.bind(nil)
			} else {
				l.cookies.writeSession(ctx, refreshed, l.refreshTTL)
			}
		}
	}

	sc := portal.NewSessionContext(client, l.roles, portal.WithSessionLogger(l.logger))
	if err := sc.Init(ctx.Context()); err != nil {
		l.logger.Warn("session init failed: %v", err)
	}
	return &RequestSession{Context: sc, Client: client}
}

func sessionFromClaims(claims *jwtware.Claims, access, refresh string) *portal.Session {
	if access == "" {
		return nil
	}
	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil
	}
	return &portal.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    claims.Expiry(),
		Identity: portal.Identity{
			ID:       id,
			Email:    claims.Email,
			Phone:    claims.Phone,
			Role:     claims.Role,
			Metadata: claims.UserMetadata,
		},
	}
}
