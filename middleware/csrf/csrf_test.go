package csrf

import (
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSecureKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func newMockContextWithBase(method string) *router.MockContext {
	ctx := router.NewMockContext()
	ctx.On("Method").Return(method)
	ctx.On("IP").Return("127.0.0.1").Maybe()
	ctx.On("Locals", DefaultContextKey, mock.Anything).Return(nil)
	ctx.On("Locals", DefaultContextKey+"_field", mock.Anything).Return(nil)
	ctx.On("Locals", DefaultContextKey+"_header", mock.Anything).Return(nil)
	return ctx
}

func passthrough(ctx router.Context) error { return nil }

func returnErr(ctx router.Context, err error) error { return err }

func issueToken(t *testing.T, handler router.HandlerFunc) string {
	t.Helper()
	getCtx := newMockContextWithBase("GET")
	require.NoError(t, handler(getCtx))
	require.True(t, getCtx.NextCalled)

	token, ok := getCtx.LocalsMock[DefaultContextKey].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestTokenRoundTrip(t *testing.T) {
	handler := New(Config{SecureKey: newTestSecureKey(), ErrorHandler: returnErr})(passthrough)
	token := issueToken(t, handler)

	postCtx := newMockContextWithBase("POST")
	postCtx.On("FormValue", DefaultFormFieldName).Return(token)

	require.NoError(t, handler(postCtx))
	require.True(t, postCtx.NextCalled)
}

func TestTokenFromHeader(t *testing.T) {
	handler := New(Config{SecureKey: newTestSecureKey(), ErrorHandler: returnErr})(passthrough)
	token := issueToken(t, handler)

	postCtx := newMockContextWithBase("POST")
	postCtx.On("FormValue", DefaultFormFieldName).Return("")
	postCtx.On("GetString", DefaultHeaderName, "").Return(token)

	require.NoError(t, handler(postCtx))
}

func TestTokenMissing(t *testing.T) {
	handler := New(Config{SecureKey: newTestSecureKey(), ErrorHandler: returnErr})(passthrough)

	postCtx := newMockContextWithBase("POST")
	postCtx.On("FormValue", DefaultFormFieldName).Return("")
	postCtx.On("GetString", DefaultHeaderName, "").Return("")

	require.ErrorIs(t, handler(postCtx), ErrTokenMissing)
	require.False(t, postCtx.NextCalled)
}

func TestTokenTampered(t *testing.T) {
	handler := New(Config{SecureKey: newTestSecureKey(), ErrorHandler: returnErr})(passthrough)

	postCtx := newMockContextWithBase("POST")
	postCtx.On("FormValue", DefaultFormFieldName).Return("tampered")

	require.ErrorIs(t, handler(postCtx), ErrTokenMismatch)
}

func TestTokenBoundToVisitor(t *testing.T) {
	visitor := "user:alice"
	handler := New(Config{
		SecureKey:    newTestSecureKey(),
		ErrorHandler: returnErr,
		Binding:      func(router.Context) string { return visitor },
	})(passthrough)

	token := issueToken(t, handler)

	visitor = "user:bob"
	postCtx := newMockContextWithBase("POST")
	postCtx.On("FormValue", DefaultFormFieldName).Return(token)

	require.ErrorIs(t, handler(postCtx), ErrTokenMismatch)
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	handler := New(Config{
		SecureKey:    newTestSecureKey(),
		Expiration:   time.Minute,
		ErrorHandler: returnErr,
		Now:          func() time.Time { return now },
	})(passthrough)

	token := issueToken(t, handler)
	now = now.Add(2 * time.Minute)

	postCtx := newMockContextWithBase("POST")
	postCtx.On("FormValue", DefaultFormFieldName).Return(token)

	require.ErrorIs(t, handler(postCtx), ErrTokenExpired)
}

func TestSecureKeyRequired(t *testing.T) {
	require.Panics(t, func() { New() })
	require.Panics(t, func() { New(Config{SecureKey: []byte("short")}) })
}

func TestTemplateData(t *testing.T) {
	ctx := router.NewMockContext()
	ctx.LocalsMock[DefaultContextKey] = "tok\"en"

	data := TemplateData(ctx)
	require.Equal(t, "tok\"en", data["csrf_token"])
	require.Equal(t, `<input type="hidden" name="_token" value="tok&#34;en">`, data["csrf_field"])
	require.Equal(t, DefaultHeaderName, data["csrf_header_name"])
}
