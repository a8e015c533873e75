package web

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/functions"
	"github.com/goliatone/go-portal/i18n"
	"github.com/goliatone/go-portal/media"
	"github.com/goliatone/go-portal/middleware/csrf"
	"github.com/goliatone/go-portal/widget"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// ArticleManager is the CMS surface the controller needs.
type ArticleManager interface {
	Create(ctx context.Context, authorID uuid.UUID, in portal.ArticleInput) (*portal.Article, error)
	List(ctx context.Context, filter portal.ArticleFilter) ([]*portal.Article, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	SetPublished(ctx context.Context, actorID, id uuid.UUID, published bool) (*portal.Article, error)
	Read(ctx context.Context, slug string) (*portal.Article, error)
}

// ProfileStore reads and updates profile rows.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*portal.Profile, error)
	Ensure(ctx context.Context, profile *portal.Profile) (*portal.Profile, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, username, bio string) error
}

// PurchaseStore lists purchases.
type PurchaseStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*portal.Purchase, error)
}

// ManifestSource fetches the version manifest.
type ManifestSource interface {
	Manifest(ctx context.Context, url string) (functions.Manifest, error)
}

// CoverPresigner hands out upload URLs for article covers.
type CoverPresigner interface {
	Enabled() bool
	PresignCover(ctx context.Context, slug, contentType string) (*media.Upload, error)
}

// PasswordRecoverer sends password recovery emails.
type PasswordRecoverer interface {
	RecoverPassword(ctx context.Context, email, redirectTo string) error
}

// Routes are the browser paths served by the controller.
type Routes struct {
	Home          string
	Download      string
	Auth          string
	Privacy       string
	Terms         string
	Cookie        string
	Admin         string
	Research      string
	Profile       string
	ResetPassword string
	Checkout      string
	Language      string
	Widget        string
}

// Views are the template names rendered by the controller.
type Views struct {
	Home          string
	Download      string
	Auth          string
	Privacy       string
	Terms         string
	Cookie        string
	Admin         string
	Research      string
	Article       string
	Profile       string
	ResetPassword string
	NotFound      string
	Error         string
}

// Controller renders the portal route surface.
type Controller struct {
	Logger       portal.Logger
	Routes       *Routes
	Views        *Views
	Settings     Settings
	ErrorHandler router.ErrorHandler

	flowOptions []portal.FlowOption
	bind        Binder
	codec       *AttemptCodec
	cookies     cookieWriter
	articles    ArticleManager
	profiles    ProfileStore
	purchases   PurchaseStore
	manifests   ManifestSource
	covers      CoverPresigner
	recoverer   PasswordRecoverer
	widget      *widget.Pages
	now         func() time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller) *Controller

// WithSettings sets the configuration values.
func WithSettings(s Settings) ControllerOption {
	return func(c *Controller) *Controller {
		c.Settings = s
		return c
	}
}

// WithLogger sets the logger.
func WithLogger(l portal.Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

// WithFlowOptions sets options applied to every auth flow.
func WithFlowOptions(opts ...portal.FlowOption) ControllerOption {
	return func(c *Controller) *Controller {
		c.flowOptions = append(c.flowOptions, opts...)
		return c
	}
}

// WithBinder sets how clients are bound to tokens outside the request
// session, as in the password recovery link.
func WithBinder(b Binder) ControllerOption {
	return func(c *Controller) *Controller {
		c.bind = b
		return c
	}
}

// WithArticles sets the CMS service.
func WithArticles(a ArticleManager) ControllerOption {
	return func(c *Controller) *Controller {
		c.articles = a
		return c
	}
}

// WithProfiles sets the profile and purchase stores.
func WithProfiles(p ProfileStore, purchases PurchaseStore) ControllerOption {
	return func(c *Controller) *Controller {
		c.profiles = p
		c.purchases = purchases
		return c
	}
}

// WithManifests sets the version manifest source.
func WithManifests(m ManifestSource) ControllerOption {
	return func(c *Controller) *Controller {
		c.manifests = m
		return c
	}
}

// WithCovers sets the cover upload presigner.
func WithCovers(p CoverPresigner) ControllerOption {
	return func(c *Controller) *Controller {
		c.covers = p
		return c
	}
}

// WithRecoverer sets the password recovery sender.
func WithRecoverer(r PasswordRecoverer) ControllerOption {
	return func(c *Controller) *Controller {
		c.recoverer = r
		return c
	}
}

// WithWidget sets the per page chat widget registry.
func WithWidget(p *widget.Pages) ControllerOption {
	return func(c *Controller) *Controller {
		c.widget = p
		return c
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) *Controller {
		if now != nil {
			c.now = now
		}
		return c
	}
}

// NewController returns a controller. Articles, profiles and the cookie
// secret are required.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: portal.DefaultLogger(),
		Routes: &Routes{
			Home:          "/",
			Download:      "/download",
			Auth:          "/auth",
			Privacy:       "/privacy",
			Terms:         "/terms",
			Cookie:        "/cookie",
			Admin:         "/admin",
			Research:      "/research",
			Profile:       "/profile",
			ResetPassword: "/reset-password",
			Checkout:      "/checkout",
			Language:      "/lang",
			Widget:        "/widget",
		},
		Views: &Views{
			Home:          "home",
			Download:      "download",
			Auth:          "auth",
			Privacy:       "legal/privacy",
			Terms:         "legal/terms",
			Cookie:        "legal/cookie",
			Admin:         "admin",
			Research:      "research/index",
			Article:       "research/article",
			Profile:       "profile",
			ResetPassword: "reset_password",
			NotFound:      "errors/404",
			Error:         "errors/500",
		},
		now: time.Now,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.articles == nil {
		panic("Missing ArticleManager in portal controller...")
	}

	if c.profiles == nil || c.purchases == nil {
		panic("Missing profile stores in portal controller...")
	}

	c.Settings = c.Settings.withDefaults()
	if c.widget == nil {
		c.widget = widget.NewPages(widget.DefaultPageTTL, c.now)
	}
	c.codec = NewAttemptCodec(c.Settings.CookieSecret, c.Settings.AttemptTTL, c.now)
	c.cookies = cookieWriter{secure: c.Settings.CookieSecure, now: c.now}
	if c.ErrorHandler == nil {
		c.ErrorHandler = c.renderError
	}

	return c
}

// Widget returns the per page chat widget registry.
func (c *Controller) Widget() *widget.Pages {
	return c.widget
}

func (c *Controller) translator(ctx router.Context) i18n.Translator {
	return i18n.For(localeFrom(ctx, c.Settings.DefaultLocale))
}

// render merges the page chrome into data.
func (c *Controller) render(ctx router.Context, view string, data router.ViewContext) error {
	return ctx.Render(view, c.viewData(ctx, data))
}

func (c *Controller) viewData(ctx router.Context, data router.ViewContext) router.ViewContext {
	tr := c.translator(ctx)

	locales := make([]map[string]string, 0, len(i18n.Locales()))
	for _, loc := range i18n.Locales() {
		locales = append(locales, map[string]string{
			"code":  string(loc),
			"label": loc.Label(),
		})
	}

	out := router.ViewContext{
		"t":        tr.Dict(),
		"locale":   string(tr.Locale()),
		"locales":  locales,
		"routes":   c.Routes,
		"viewer":   nil,
		"is_admin": false,
	}

	if c.Settings.WidgetProvider != "" {
		out["widget"] = map[string]any{
			"provider": c.Settings.WidgetProvider,
			"site_id":  c.Settings.WidgetSiteID,
			"page":     c.widget.Issue(CSRFBinding(ctx)),
		}
	}

	for k, v := range csrf.TemplateData(ctx) {
		out[k] = v
	}

	rs := SessionFrom(ctx)
	if identity, ok := rs.Identity(); ok {
		out["viewer"] = map[string]any{
			"id":    identity.ID.String(),
			"name":  identity.DisplayName(),
			"email": identity.Email,
			"phone": identity.Phone,
		}
		out["is_admin"] = rs.IsAdministrator()
	}

	for k, v := range data {
		out[k] = v
	}
	return out
}

func (c *Controller) renderError(ctx router.Context, err error) error {
	c.Logger.Error("request %s failed: %v", ctx.OriginalURL(), err)
	tr := c.translator(ctx)
	return ctx.Status(router.StatusInternalServerError).Render(c.Views.Error, c.viewData(ctx, router.ViewContext{
		"message": tr.T(i18n.ErrorGeneric),
	}))
}

// NotFound renders the 404 page.
func (c *Controller) NotFound(ctx router.Context) error {
	return ctx.Status(http.StatusNotFound).Render(c.Views.NotFound, c.viewData(ctx, router.ViewContext{}))
}

// refererPath keeps only the path and query of a referer.
func refererPath(referer string) string {
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil {
		return ""
	}
	return u.RequestURI()
}

// RegisterRoutes mounts the controller on app.
func RegisterRoutes[T any](app router.Router[T], c *Controller) {
	signedIn := c.RequireSession()
	admin := c.RequireAdmin()

	app.Get(c.Routes.Home, c.Home).SetName("home.get")
	app.Get(c.Routes.Download, c.Download).SetName("download.get")

	app.Get(c.Routes.Auth, c.AuthShow).SetName("auth.get")
	app.Post(c.Routes.Auth+"/choose", c.AuthChoose).SetName("auth-choose.post")
	app.Post(c.Routes.Auth+"/submit", c.AuthSubmit).SetName("auth-submit.post")
	app.Post(c.Routes.Auth+"/verify", c.AuthVerify).SetName("auth-verify.post")
	app.Post(c.Routes.Auth+"/resend", c.AuthResend).SetName("auth-resend.post")
	app.Post(c.Routes.Auth+"/back", c.AuthBack).SetName("auth-back.post")
	app.Post(c.Routes.Auth+"/sign-out", c.SignOut).SetName("sign-out.post")

	app.Get(c.Routes.Privacy, c.Legal(c.Views.Privacy, i18n.PrivacyTitle)).SetName("privacy.get")
	app.Get(c.Routes.Terms, c.Legal(c.Views.Terms, i18n.TermsTitle)).SetName("terms.get")
	app.Get(c.Routes.Cookie, c.Legal(c.Views.Cookie, i18n.CookieTitle)).SetName("cookie.get")

	app.Get(c.Routes.Research, c.ResearchIndex).SetName("research.get")
	app.Get(c.Routes.Research+"/:slug", c.ResearchShow).SetName("research-article.get")

	app.Get(c.Routes.Profile, c.ProfileShow, signedIn).SetName("profile.get")
	app.Post(c.Routes.Profile, c.ProfileUpdate, signedIn).SetName("profile.post")
	app.Post(c.Routes.Profile+"/password", c.ProfilePassword, signedIn).SetName("profile-password.post")

	app.Get(c.Routes.ResetPassword, c.ResetPasswordShow).SetName("pwd-reset.get")
	app.Post(c.Routes.ResetPassword, c.ResetPasswordRequest).SetName("pwd-reset.post")
	app.Post(c.Routes.ResetPassword+"/complete", c.ResetPasswordComplete).SetName("pwd-reset-do.post")

	app.Get(c.Routes.Admin, c.AdminIndex, admin).SetName("admin.get")
	app.Post(c.Routes.Admin+"/articles", c.AdminCreate, admin).SetName("admin-create.post")
	app.Post(c.Routes.Admin+"/articles/:id/publish", c.AdminTogglePublished, admin).SetName("admin-publish.post")
	app.Post(c.Routes.Admin+"/articles/:id/delete", c.AdminDelete, admin).SetName("admin-delete.post")
	app.Post(c.Routes.Admin+"/covers", c.AdminCoverUpload, admin).SetName("admin-cover.post")

	app.Post(c.Routes.Checkout, c.Checkout, signedIn).SetName("checkout.post")
	app.Get(c.Routes.Language+"/:code", c.SwitchLanguage).SetName("lang.get")
	app.Post(c.Routes.Widget+"/ready", c.WidgetReady).SetName("widget-ready.post")
	app.Get(c.Routes.Widget+"/visitor", c.WidgetVisitor).SetName("widget-visitor.get")

	app.Get("/*", c.NotFound).SetName("not-found.get")
}
