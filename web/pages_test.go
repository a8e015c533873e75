package web

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/functions"
	"github.com/goliatone/go-portal/i18n"
	"github.com/goliatone/go-portal/widget"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequireSessionRemembersRoute(t *testing.T) {
	c, _ := newTestController(t)
	ctx := newCtx()
	attachSession(t, ctx, &fakeClient{}, nil)
	ctx.On("OriginalURL").Return("/profile")
	cookies := captureCookies(ctx)
	ctx.On("Redirect", "/auth", []int{http.StatusSeeOther}).Return(nil)

	called := false
	handler := c.RequireSession()(func(router.Context) error { called = true; return nil })

	require.NoError(t, handler(ctx))
	assert.False(t, called)
	require.Contains(t, cookies, CookieRejected)
	assert.Equal(t, "/profile", cookies[CookieRejected].Value)
}

func TestRequireAdmin(t *testing.T) {
	c, _ := newTestController(t)
	next := func(router.Context) error { return nil }

	t.Run("anonymous goes to auth", func(t *testing.T) {
		ctx := newCtx()
		attachSession(t, ctx, &fakeClient{}, nil)
		ctx.On("OriginalURL").Return("/admin")
		captureCookies(ctx)
		ctx.On("Redirect", "/auth", []int{http.StatusSeeOther}).Return(nil)

		require.NoError(t, c.RequireAdmin()(next)(ctx))
		ctx.AssertExpectations(t)
	})

	t.Run("member gets not found", func(t *testing.T) {
		ctx := newCtx()
		attachSession(t, ctx, &fakeClient{session: newSession("member@example.com", "")}, fakeRoles{})
		ctx.On("Status", http.StatusNotFound).Return(ctx)
		captureRender(ctx, c.Views.NotFound)

		require.NoError(t, c.RequireAdmin()(next)(ctx))
		ctx.AssertExpectations(t)
	})

	t.Run("admin passes", func(t *testing.T) {
		session := newSession("admin@example.com", "")
		ctx := newCtx()
		attachSession(t, ctx, &fakeClient{session: session}, fakeRoles{admins: map[string]bool{session.Identity.ID.String(): true}})

		called := false
		handler := c.RequireAdmin()(func(router.Context) error { called = true; return nil })
		require.NoError(t, handler(ctx))
		assert.True(t, called)
	})
}

func TestDownloadFallsBackToDefaults(t *testing.T) {
	c, _ := newTestController(t,
		WithManifests(fakeManifests{err: errors.New("manifest offline")}),
		func(c *Controller) *Controller { c.Settings.ManifestURL = "https://cdn.example/version.json"; return c },
	)
	ctx := newCtx()
	view := captureRender(ctx, c.Views.Download)

	require.NoError(t, c.Download(ctx))
	assert.Equal(t, true, (*view)["fallback"])
	cards := (*view)["releases"].([]DownloadCard)
	require.Len(t, cards, 2)
	assert.Equal(t, "android", cards[0].Platform)
	assert.Equal(t, "windows", cards[1].Platform)
}

func TestDownloadMergesManifest(t *testing.T) {
	c, _ := newTestController(t,
		WithManifests(fakeManifests{manifest: functions.Manifest{
			"android": {Version: "2.1.0", DownloadURL: "https://cdn.example/v2.apk"},
		}}),
		func(c *Controller) *Controller { c.Settings.ManifestURL = "https://cdn.example/version.json"; return c },
	)
	ctx := newCtx()
	view := captureRender(ctx, c.Views.Download)

	require.NoError(t, c.Download(ctx))
	assert.Equal(t, false, (*view)["fallback"])
	cards := (*view)["releases"].([]DownloadCard)
	assert.Equal(t, "2.1.0", cards[0].Version)
	assert.Equal(t, "1.0.0", cards[1].Version)
}

func TestSwitchLanguage(t *testing.T) {
	c, _ := newTestController(t)

	ctx := newCtx()
	ctx.ParamsM["code"] = "en"
	ctx.On("Referer").Return("https://portal.example/research?page=2")
	cookies := captureCookies(ctx)
	ctx.On("Redirect", "/research?page=2", []int{http.StatusSeeOther}).Return(nil)

	require.NoError(t, c.SwitchLanguage(ctx))
	require.Contains(t, cookies, CookieLanguage)
	assert.Equal(t, "en", cookies[CookieLanguage].Value)
	assert.False(t, cookies[CookieLanguage].HTTPOnly)

	bad := newCtx()
	bad.ParamsM["code"] = "fr"
	bad.On("Status", http.StatusNotFound).Return(bad)
	captureRender(bad, c.Views.NotFound)
	require.NoError(t, c.SwitchLanguage(bad))
	bad.AssertExpectations(t)
}

func TestViewDataUsesLocale(t *testing.T) {
	c, _ := newTestController(t)
	ctx := newCtx()
	ctx.LocalsMock[localsLocale] = i18n.LocaleEN

	data := c.viewData(ctx, router.ViewContext{"title": "x"})
	assert.Equal(t, "en", data["locale"])
	assert.Equal(t, "x", data["title"])
	assert.Nil(t, data["viewer"])
	assert.Equal(t, i18n.For(i18n.LocaleEN).T(i18n.NavHome), data["t"].(map[string]string)[i18n.NavHome.Name()])
}

func TestCheckoutRedirectsToPaymentPage(t *testing.T) {
	c, _ := newTestController(t)
	session := newSession("buyer@example.com", "")
	ctx := newCtx()
	attachSession(t, ctx, &fakeClient{session: session}, nil)
	ctx.On("Bind", mock.Anything).Run(bindPayload(CheckoutForm{Plan: " Yearly "})).Return(nil)

	var target string
	ctx.On("Redirect", mock.Anything, []int{http.StatusSeeOther}).Run(func(args mock.Arguments) {
		target = args.String(0)
	}).Return(nil)

	require.NoError(t, c.Checkout(ctx))
	assert.Contains(t, target, "https://pay.example/checkout?")
	assert.Contains(t, target, "plan=yearly")
	assert.Contains(t, target, "user_id="+session.Identity.ID.String())
}

func TestCheckoutRejectsUnknownPlan(t *testing.T) {
	c, _ := newTestController(t)
	ctx := newCtx()
	attachSession(t, ctx, &fakeClient{session: newSession("buyer@example.com", "")}, nil)
	ctx.On("Bind", mock.Anything).Run(bindPayload(CheckoutForm{Plan: "lifetime"})).Return(nil)
	expectFlash(ctx)
	ctx.On("Redirect", "/", []int{http.StatusSeeOther}).Return(nil)

	require.NoError(t, c.Checkout(ctx))
	ctx.AssertExpectations(t)
}

func widgetController(t *testing.T) *Controller {
	t.Helper()
	c, _ := newTestController(t, func(c *Controller) *Controller {
		c.Settings.WidgetProvider = "crisp"
		c.Settings.WidgetTimeout = 20 * time.Millisecond
		return c
	})
	return c
}

// visitorCtx is a request context signed in as session.
func visitorCtx(t *testing.T, session *portal.Session) *router.MockContext {
	t.Helper()
	ctx := newCtx()
	attachSession(t, ctx, &fakeClient{session: session}, nil)
	return ctx
}

func renderedWidget(t *testing.T, c *Controller, session *portal.Session) map[string]any {
	t.Helper()
	data := c.viewData(visitorCtx(t, session), router.ViewContext{})
	require.Contains(t, data, "widget")
	return data["widget"].(map[string]any)
}

func postReady(t *testing.T, c *Controller, session *portal.Session, page string, status int) {
	t.Helper()
	ctx := visitorCtx(t, session)
	ctx.On("Bind", mock.Anything).Run(bindPayload(WidgetReadyForm{Page: page, Provider: "crisp"})).Return(nil)
	ctx.On("JSON", status, mock.Anything).Return(nil)
	require.NoError(t, c.WidgetReady(ctx))
	ctx.AssertExpectations(t)
}

func TestWidgetHiddenWithoutProvider(t *testing.T) {
	c, _ := newTestController(t)
	data := c.viewData(visitorCtx(t, newSession("visitor@example.com", "")), router.ViewContext{})
	assert.NotContains(t, data, "widget")
	assert.Zero(t, c.Widget().Len())
}

func TestWidgetReadyResolvesPageOnce(t *testing.T) {
	c := widgetController(t)
	session := newSession("visitor@example.com", "")
	page := renderedWidget(t, c, session)["page"].(string)

	postReady(t, c, session, page, router.StatusOK)
	postReady(t, c, session, page, http.StatusConflict)
	postReady(t, c, session, "never-issued", http.StatusNotFound)
}

func TestWidgetReadinessIsPerVisitorPage(t *testing.T) {
	c := widgetController(t)
	alice := newSession("alice@example.com", "")
	bob := newSession("bob@example.com", "")

	alicePage := renderedWidget(t, c, alice)["page"].(string)
	postReady(t, c, alice, alicePage, router.StatusOK)

	bobWidget := renderedWidget(t, c, bob)
	assert.NotContains(t, bobWidget, "ready")
	bobPage := bobWidget["page"].(string)
	assert.NotEqual(t, alicePage, bobPage)

	ready, err := c.Widget().Lookup("user:"+bob.Identity.ID.String(), bobPage)
	require.NoError(t, err)
	assert.False(t, ready.Resolved())

	postReady(t, c, bob, alicePage, http.StatusNotFound)

	waiting := visitorCtx(t, bob)
	waiting.QueriesM["page"] = bobPage
	waiting.On("JSON", http.StatusServiceUnavailable, mock.Anything).Return(nil)
	require.NoError(t, c.WidgetVisitor(waiting))
	waiting.AssertExpectations(t)
}

func TestWidgetVisitorAfterReady(t *testing.T) {
	c := widgetController(t)
	session := newSession("visitor@example.com", "")
	page := renderedWidget(t, c, session)["page"].(string)
	postReady(t, c, session, page, router.StatusOK)

	ctx := visitorCtx(t, session)
	ctx.QueriesM["page"] = page
	var pushed widget.Visitor
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		pushed = args.Get(1).(widget.Visitor)
	}).Return(nil)

	require.NoError(t, c.WidgetVisitor(ctx))
	assert.Equal(t, session.Identity.ID.String(), pushed.ID)
	assert.Equal(t, "visitor@example.com", pushed.Email)

	_, err := c.Widget().Lookup("user:"+session.Identity.ID.String(), page)
	assert.ErrorIs(t, err, widget.ErrUnknownPage)
}

func TestWidgetVisitorAnonymous(t *testing.T) {
	c := widgetController(t)
	ctx := newCtx()
	attachSession(t, ctx, &fakeClient{}, nil)
	ctx.On("JSON", router.StatusOK, map[string]any{}).Return(nil)

	require.NoError(t, c.WidgetVisitor(ctx))
	ctx.AssertExpectations(t)
}

func TestResearchNotFound(t *testing.T) {
	c, deps := newTestController(t)
	deps.articles.items = []*portal.Article{{Slug: "draft", Published: false}}

	ctx := newCtx()
	ctx.ParamsM["slug"] = "draft"
	ctx.On("Status", http.StatusNotFound).Return(ctx)
	captureRender(ctx, c.Views.NotFound)

	require.NoError(t, c.ResearchShow(ctx))
	ctx.AssertExpectations(t)
}

func TestResearchShowCountsView(t *testing.T) {
	c, deps := newTestController(t)
	article := &portal.Article{Slug: "wireguard", Title: "WireGuard", Published: true}
	deps.articles.items = []*portal.Article{article}

	ctx := newCtx()
	ctx.ParamsM["slug"] = "wireguard"
	view := captureRender(ctx, c.Views.Article)

	require.NoError(t, c.ResearchShow(ctx))
	assert.Same(t, article, (*view)["article"])
	assert.Equal(t, 1, article.Views)
}

func TestResearchIndexGroups(t *testing.T) {
	c, deps := newTestController(t)
	deps.articles.items = []*portal.Article{
		{Slug: "a", Category: portal.CategoryWhitepaper, Published: true},
		{Slug: "b", Category: portal.CategoryTechBlog, Published: true},
		{Slug: "c", Category: portal.CategoryTechBlog, Published: false},
	}

	ctx := newCtx()
	view := captureRender(ctx, c.Views.Research)

	require.NoError(t, c.ResearchIndex(ctx))
	groups := (*view)["groups"].([]map[string]any)
	require.Len(t, groups, 2)
	assert.Equal(t, false, (*view)["empty"])
}
