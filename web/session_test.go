package web

import (
	"errors"
	"testing"

	"github.com/goliatone/go-portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLoaderRefreshesFromCookie(t *testing.T) {
	refreshed := newSession("user@example.com", "")
	var refreshCalls int
	loader := NewSessionLoader(func(s *portal.Session) SessionClient {
		return &fakeClient{session: s, refresh: func() (*portal.Session, error) {
			refreshCalls++
			return refreshed, nil
		}}
	}, nil, Settings{}, nil)

	ctx := newCtx()
	ctx.CookiesM[CookieRefresh] = "refresh-1"
	cookies := captureCookies(ctx)

	rs := loader.Load(ctx)
	t.Cleanup(rs.Context.Dispose)

	assert.Equal(t, 1, refreshCalls)
	identity, ok := rs.Identity()
	require.True(t, ok)
	assert.Equal(t, refreshed.Identity.ID, identity.ID)
	require.Contains(t, cookies, CookieAccess)
	assert.Equal(t, refreshed.AccessToken, cookies[CookieAccess].Value)
}

func TestSessionLoaderClearsRejectedRefresh(t *testing.T) {
	loader := NewSessionLoader(func(s *portal.Session) SessionClient {
		return &fakeClient{session: s, refresh: func() (*portal.Session, error) {
			return nil, errors.New("refresh token revoked")
		}}
	}, nil, Settings{}, nil)

	ctx := newCtx()
	ctx.CookiesM[CookieRefresh] = "refresh-1"
	cookies := captureCookies(ctx)

	rs := loader.Load(ctx)
	t.Cleanup(rs.Context.Dispose)

	_, ok := rs.Identity()
	assert.False(t, ok)
	require.Contains(t, cookies, CookieRefresh)
	assert.Empty(t, cookies[CookieRefresh].Value)
}

func TestSessionLoaderKeepsCookiesOnTransportFailure(t *testing.T) {
	loader := NewSessionLoader(func(s *portal.Session) SessionClient {
		return &fakeClient{session: s, refresh: func() (*portal.Session, error) {
			return nil, portal.NewTransportError(errors.New("dial tcp: timeout"), "refresh")
		}}
	}, nil, Settings{}, nil)

	ctx := newCtx()
	ctx.CookiesM[CookieRefresh] = "refresh-1"
	cookies := captureCookies(ctx)

	rs := loader.Load(ctx)
	t.Cleanup(rs.Context.Dispose)

	_, ok := rs.Identity()
	assert.False(t, ok)
	assert.NotContains(t, cookies, CookieRefresh)
}

func TestSessionLoaderAnonymous(t *testing.T) {
	loader := NewSessionLoader(func(s *portal.Session) SessionClient {
		return &fakeClient{session: s}
	}, nil, Settings{}, nil)

	ctx := newCtx()
	rs := loader.Load(ctx)
	t.Cleanup(rs.Context.Dispose)

	_, ok := rs.Identity()
	assert.False(t, ok)
	assert.False(t, rs.IsAdministrator())
}

func TestNewSessionLoaderRequiresBinder(t *testing.T) {
	assert.Panics(t, func() { NewSessionLoader(nil, nil, Settings{}, nil) })
}
