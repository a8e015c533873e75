package web

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/functions"
	"github.com/goliatone/go-portal/media"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fakeClient struct {
	mu        sync.Mutex
	session   *portal.Session
	otps      []portal.OTPRequest
	verifyErr error
	signInErr error
	updateErr error
	patches   []portal.IdentityPatch
	signedOut int
	refresh   func() (*portal.Session, error)
}

func (f *fakeClient) SignInWithPassword(_ context.Context, email, password string) (*portal.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return newSession(email, ""), nil
}

func (f *fakeClient) RequestOTP(_ context.Context, req portal.OTPRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps = append(f.otps, req)
	return nil
}

func (f *fakeClient) VerifyOTP(_ context.Context, destination, code string, channel portal.Channel) (*portal.Session, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if channel == portal.ChannelSMS {
		return newSession("", destination), nil
	}
	return newSession(destination, ""), nil
}

func (f *fakeClient) UpdateIdentity(_ context.Context, patch portal.IdentityPatch) (*portal.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.patches = append(f.patches, patch)
	if f.session == nil {
		return &portal.Identity{ID: uuid.New()}, nil
	}
	identity := f.session.Identity
	return &identity, nil
}

func (f *fakeClient) GetSession(context.Context) (*portal.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeClient) OnSessionChange(func(portal.SessionEvent)) func() { return func() {} }

func (f *fakeClient) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut++
	f.session = nil
	return nil
}

func (f *fakeClient) Session() *portal.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeClient) RefreshSession(context.Context) (*portal.Session, error) {
	if f.refresh == nil {
		return nil, errors.New("no refresh configured")
	}
	s, err := f.refresh()
	if err == nil {
		f.mu.Lock()
		f.session = s
		f.mu.Unlock()
	}
	return s, err
}

func newSession(email, phone string) *portal.Session {
	return &portal.Session{
		AccessToken:  "access-" + email + phone,
		RefreshToken: "refresh-" + email + phone,
		ExpiresAt:    testNow.Add(time.Hour),
		Identity: portal.Identity{
			ID:    uuid.New(),
			Email: email,
			Phone: phone,
		},
	}
}

type fakeRoles struct {
	admins map[string]bool
}

func (r fakeRoles) HasRole(_ context.Context, userID string, role portal.Role) (bool, error) {
	return role == portal.RoleAdmin && r.admins[userID], nil
}

type fakeArticles struct {
	items     []*portal.Article
	createErr error
	created   []portal.ArticleInput
	deleted   []uuid.UUID
	published map[uuid.UUID]bool
}

func (f *fakeArticles) Create(_ context.Context, authorID uuid.UUID, in portal.ArticleInput) (*portal.Article, error) {
	if fields := in.FieldErrors(); len(fields) > 0 {
		return nil, fields.Err()
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	in = in.Normalize()
	f.created = append(f.created, in)
	a := &portal.Article{ID: uuid.New(), Title: in.Title, Slug: in.Slug, AuthorID: authorID}
	f.items = append(f.items, a)
	return a, nil
}

func (f *fakeArticles) List(_ context.Context, filter portal.ArticleFilter) ([]*portal.Article, error) {
	out := []*portal.Article{}
	for _, a := range f.items {
		switch filter {
		case portal.ArticlesPublished:
			if !a.Published {
				continue
			}
		case portal.ArticlesDrafts:
			if a.Published {
				continue
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeArticles) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	for _, a := range f.items {
		if a.ID == id {
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return portal.ErrArticleNotFound
}

func (f *fakeArticles) SetPublished(_ context.Context, _ uuid.UUID, id uuid.UUID, published bool) (*portal.Article, error) {
	for _, a := range f.items {
		if a.ID == id {
			if f.published == nil {
				f.published = map[uuid.UUID]bool{}
			}
			f.published[id] = published
			a.Published = published
			return a, nil
		}
	}
	return nil, portal.ErrArticleNotFound
}

func (f *fakeArticles) Read(_ context.Context, slug string) (*portal.Article, error) {
	for _, a := range f.items {
		if a.Slug == slug && a.Published {
			a.Views++
			return a, nil
		}
	}
	return nil, portal.ErrArticleNotFound
}

type fakeProfiles struct {
	rows    map[uuid.UUID]*portal.Profile
	updates int
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*portal.Profile, error) {
	if p, ok := f.rows[id]; ok {
		return p, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeProfiles) Ensure(_ context.Context, p *portal.Profile) (*portal.Profile, error) {
	if f.rows == nil {
		f.rows = map[uuid.UUID]*portal.Profile{}
	}
	if existing, ok := f.rows[p.ID]; ok {
		return existing, nil
	}
	f.rows[p.ID] = p
	return p, nil
}

func (f *fakeProfiles) UpdateDetails(_ context.Context, id uuid.UUID, username, bio string) error {
	p, ok := f.rows[id]
	if !ok {
		return repository.NewRecordNotFound()
	}
	f.updates++
	p.Username = username
	p.Bio = bio
	return nil
}

type fakePurchases struct {
	rows []*portal.Purchase
}

func (f fakePurchases) ListByUser(_ context.Context, userID uuid.UUID) ([]*portal.Purchase, error) {
	out := []*portal.Purchase{}
	for _, p := range f.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeManifests struct {
	manifest functions.Manifest
	err      error
}

func (f fakeManifests) Manifest(context.Context, string) (functions.Manifest, error) {
	return f.manifest, f.err
}

type fakeCovers struct {
	enabled bool
}

func (f fakeCovers) Enabled() bool { return f.enabled }

func (f fakeCovers) PresignCover(_ context.Context, slug, contentType string) (*media.Upload, error) {
	if contentType != "image/png" {
		return nil, media.ErrUnsupportedMimeType
	}
	return &media.Upload{Key: "covers/" + slug + ".png", UploadURL: "https://s3.example/put", Method: "PUT"}, nil
}

type testDeps struct {
	articles  *fakeArticles
	profiles  *fakeProfiles
	purchases fakePurchases
}

func newTestController(t *testing.T, opts ...ControllerOption) (*Controller, *testDeps) {
	t.Helper()
	deps := &testDeps{
		articles: &fakeArticles{},
		profiles: &fakeProfiles{rows: map[uuid.UUID]*portal.Profile{}},
	}
	base := []ControllerOption{
		WithSettings(Settings{
			CookieSecret: testSecret,
			PublicURL:    "https://portal.example",
			PaymentURL:   "https://pay.example/checkout",
			Downloads: functions.Manifest{
				"android": {Version: "1.0.0", DownloadURL: "https://cdn.example/app.apk"},
				"windows": {Version: "1.0.0", DownloadURL: "https://cdn.example/app.exe"},
			},
		}),
		WithArticles(deps.articles),
		WithProfiles(deps.profiles, &deps.purchases),
		WithClock(func() time.Time { return testNow }),
		WithBinder(func(s *portal.Session) SessionClient { return &fakeClient{session: s} }),
	}
	return NewController(append(base, opts...)...), deps
}

// attachSession puts a RequestSession over client into the mock locals.
func attachSession(t *testing.T, ctx *router.MockContext, client *fakeClient, roles portal.RoleLookup) *RequestSession {
	t.Helper()
	sc := portal.NewSessionContext(client, roles)
	require.NoError(t, sc.Init(context.Background()))
	t.Cleanup(sc.Dispose)

	rs := &RequestSession{Context: sc, Client: client}
	ctx.LocalsMock[localsSession] = rs
	return rs
}

func newCtx() *router.MockContext {
	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background()).Maybe()
	return ctx
}

// captureRender records the view and data of the next Render call.
func captureRender(ctx *router.MockContext, view string) *router.ViewContext {
	data := &router.ViewContext{}
	ctx.On("Render", view, mock.Anything).Run(func(args mock.Arguments) {
		if v, ok := args.Get(1).(router.ViewContext); ok {
			*data = v
		}
	}).Return(nil)
	return data
}

// captureCookies records every cookie written.
func captureCookies(ctx *router.MockContext) map[string]*router.Cookie {
	out := map[string]*router.Cookie{}
	ctx.On("Cookie", mock.Anything).Run(func(args mock.Arguments) {
		c := args.Get(0).(*router.Cookie)
		out[c.Name] = c
	}).Return().Maybe()
	return out
}

func bindPayload[T any](payload T) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		*args.Get(0).(*T) = payload
	}
}

func expectFlash(ctx *router.MockContext) {
	ctx.On("Cookie", mock.Anything).Return().Maybe()
	ctx.On("Locals", mock.Anything, mock.Anything).Return(nil).Maybe()
}
