package web

import (
	"testing"
	"time"

	"github.com/goliatone/go-portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptCodecRoundTrip(t *testing.T) {
	now := testNow
	codec := NewAttemptCodec(testSecret, 15*time.Minute, func() time.Time { return now })

	state := portal.AttemptState{
		Purpose:     portal.PurposeLogin,
		Method:      portal.MethodEmailOTP,
		Step:        portal.StepOTP,
		Destination: "user@example.com",
		ResendAt:    now.Add(time.Minute).UnixMilli(),
	}

	raw, err := codec.Encode(state)
	require.NoError(t, err)

	decoded, err := codec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, state.Destination, decoded.Destination)
	assert.Equal(t, state.ResendAt, decoded.ResendAt)
	assert.Equal(t, state, decoded)
}

func TestAttemptCodecRejectsTamperedAndExpired(t *testing.T) {
	now := testNow
	codec := NewAttemptCodec(testSecret, time.Minute, func() time.Time { return now })

	raw, err := codec.Encode(portal.AttemptState{Purpose: portal.PurposeLogin, Step: portal.StepMethodSelect})
	require.NoError(t, err)

	other := NewAttemptCodec([]byte("another-secret-another-secret-xx"), time.Minute, func() time.Time { return now })
	_, err = other.Decode(raw)
	assert.ErrorIs(t, err, ErrAttemptCookieInvalid)

	_, err = codec.Decode(raw[:len(raw)-2] + "xx")
	assert.ErrorIs(t, err, ErrAttemptCookieInvalid)

	now = now.Add(2 * time.Minute)
	_, err = codec.Decode(raw)
	assert.ErrorIs(t, err, ErrAttemptCookieInvalid)
}

func TestAttemptCodecRequiresSecret(t *testing.T) {
	assert.Panics(t, func() { NewAttemptCodec(nil, time.Minute, nil) })
}

func TestSafeRedirect(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/profile":             "/profile",
		"/research/a?x=1":      "/research/a?x=1",
		"//evil.example":       "/",
		"/\\evil.example":      "/",
		"https://evil.example": "/",
		"profile":              "/",
	}
	for in, want := range cases {
		assert.Equal(t, want, safeRedirect(in, "/"), in)
	}
}

func TestWriteSessionCookies(t *testing.T) {
	ctx := newCtx()
	cookies := captureCookies(ctx)

	w := cookieWriter{now: func() time.Time { return testNow }}
	w.writeSession(ctx, newSession("user@example.com", ""), 24*time.Hour)

	require.Contains(t, cookies, CookieAccess)
	require.Contains(t, cookies, CookieRefresh)
	assert.True(t, cookies[CookieAccess].HTTPOnly)
	assert.Equal(t, testNow.Add(time.Hour), cookies[CookieAccess].Expires)
	assert.Equal(t, testNow.Add(24*time.Hour), cookies[CookieRefresh].Expires)
}

func TestTakeRejected(t *testing.T) {
	ctx := newCtx()
	cookies := captureCookies(ctx)
	ctx.CookiesM[CookieRejected] = "/admin"

	w := cookieWriter{now: func() time.Time { return testNow }}
	assert.Equal(t, "/admin", w.takeRejected(ctx, "/"))
	require.Contains(t, cookies, CookieRejected)
	assert.True(t, cookies[CookieRejected].Expires.Before(testNow))

	empty := newCtx()
	assert.Equal(t, "/", w.takeRejected(empty, "/"))
}
