package web

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-router"
)

const (
	CookieAccess   = "portal_access"
	CookieRefresh  = "portal_refresh"
	CookieAttempt  = "portal_attempt"
	CookieLanguage = "portal_lang"
	CookieRejected = "portal_rejected_route"
)

const (
	rejectedRouteTTL = 5 * time.Minute
	languageTTL      = 365 * 24 * time.Hour
	attemptIssuer    = "portal-web"
)

// ErrAttemptCookieInvalid is returned when the attempt cookie cannot be trusted.
var ErrAttemptCookieInvalid = errors.New("web: invalid auth attempt cookie")

type cookieWriter struct {
	secure bool
	now    func() time.Time
}

func (w cookieWriter) set(ctx router.Context, name, value string, ttl time.Duration, httpOnly bool) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  w.now().Add(ttl),
		HTTPOnly: httpOnly,
		Secure:   w.secure,
		SameSite: "Lax",
	})
}

func (w cookieWriter) del(ctx router.Context, name string) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  w.now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   w.secure,
		SameSite: "Lax",
	})
}

// writeSession stores the hosted tokens. The access cookie lives as long as
// the access token, the refresh cookie for refreshTTL.
func (w cookieWriter) writeSession(ctx router.Context, session *portal.Session, refreshTTL time.Duration) {
	if session == nil || session.AccessToken == "" {
		w.clearSession(ctx)
		return
	}
	ttl := time.Hour
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(w.now())
	}
	w.set(ctx, CookieAccess, session.AccessToken, ttl, true)
	if session.RefreshToken != "" {
		w.set(ctx, CookieRefresh, session.RefreshToken, refreshTTL, true)
	}
}

func (w cookieWriter) clearSession(ctx router.Context) {
	w.del(ctx, CookieAccess)
	w.del(ctx, CookieRefresh)
}

// setRejected remembers where an anonymous visitor was heading.
func (w cookieWriter) setRejected(ctx router.Context) {
	w.set(ctx, CookieRejected, ctx.OriginalURL(), rejectedRouteTTL, true)
}

// takeRejected returns the remembered route or def, clearing the cookie.
func (w cookieWriter) takeRejected(ctx router.Context, def string) string {
	r := ctx.Cookies(CookieRejected)
	if r == "" {
		return def
	}
	w.del(ctx, CookieRejected)
	return safeRedirect(r, def)
}

// safeRedirect only allows local absolute paths.
func safeRedirect(target, def string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return def
	}
	return target
}

type attemptClaims struct {
	jwt.RegisteredClaims
	State portal.AttemptState `json:"st"`
}

// AttemptCodec signs auth attempt state into a compact cookie value. The
// typed OTP code is never written out.
type AttemptCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAttemptCodec returns a codec signing with secret (HS256).
func NewAttemptCodec(secret []byte, ttl time.Duration, now func() time.Time) *AttemptCodec {
	if len(secret) == 0 {
		panic("web: NewAttemptCodec requires a cookie secret")
	}
	if ttl <= 0 {
		ttl = defaultAttemptTTL
	}
	if now == nil {
		now = time.Now
	}
	return &AttemptCodec{secret: secret, ttl: ttl, now: now}
}

// Encode signs state.
func (c *AttemptCodec) Encode(state portal.AttemptState) (string, error) {
	issued := c.now()
	claims := attemptClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    attemptIssuer,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(c.ttl)),
		},
		State: state,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies raw and returns the state it carries.
func (c *AttemptCodec) Decode(raw string) (portal.AttemptState, error) {
	claims := &attemptClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(attemptIssuer),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return portal.AttemptState{}, errors.Join(ErrAttemptCookieInvalid, err)
	}
	return claims.State, nil
}
