package jwtware

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAuthenticated is the role the hosted auth service stamps on signed in users.
const RoleAuthenticated = "authenticated"

// Claims are the access token claims issued by the hosted auth service.
type Claims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Role         string         `json:"role,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// UserID returns the subject.
func (c *Claims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// Authenticated reports whether the token belongs to a signed in user rather
// than the anonymous api key role.
func (c *Claims) Authenticated() bool {
	if c == nil || strings.TrimSpace(c.Subject) == "" {
		return false
	}
	return c.Role == "" || c.Role == RoleAuthenticated
}

// Expiry returns the exp claim or the zero time.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// MetadataString reads a string from user_metadata.
func (c *Claims) MetadataString(key string) string {
	if c == nil || c.UserMetadata == nil {
		return ""
	}
	if v, ok := c.UserMetadata[key].(string); ok {
		return v
	}
	return ""
}

type claimsCtxKey struct{}

// WithClaims stores claims in a standard context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	if ctx == nil {
		return nil, false
	}
	claims, ok := ctx.Value(claimsCtxKey{}).(*Claims)
	return claims, ok && claims != nil
}
