package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/activitymap"
	"github.com/goliatone/go-portal/config"
	"github.com/goliatone/go-portal/functions"
	"github.com/goliatone/go-portal/hosted"
	"github.com/goliatone/go-portal/i18n"
	"github.com/goliatone/go-portal/logging"
	"github.com/goliatone/go-portal/media"
	"github.com/goliatone/go-portal/middleware/csrf"
	"github.com/goliatone/go-portal/middleware/jwtware"
	"github.com/goliatone/go-portal/web"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/uptrace/bun"
)

type App struct {
	config *config.Config
	logger *logging.Logger
	db     *bun.DB
	repo   portal.RepositoryManager
	hosted *hosted.Client
	srv    router.Server[*fiber.App]
	sink   portal.ActivitySink
}

func (a *App) GetLogger(name string) *logging.Logger {
	return a.logger.Named(name)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lgr, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer lgr.Sync()

	if cfg.Hosted.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybePrettyJSON(redacted(cfg)))
		fmt.Println("============")
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}
	app.sink = activitymap.LogSink(app.GetLogger("activity"))

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Error("persistence: %v", err)
		os.Exit(1)
	}
	defer app.db.Close()

	WithHostedClient(app)

	if err := WithHTTPServer(ctx, app); err != nil {
		lgr.Error("http server: %v", err)
		os.Exit(1)
	}

	go func() {
		if err := app.srv.Serve(cfg.Server.Address); err != nil {
			lgr.Error("serve %s: %v", cfg.Server.Address, err)
		}
	}()
	lgr.Info("portal listening on %s", cfg.Server.Address)

	sig := WaitExitSignal()
	lgr.Info("received %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		lgr.Error("shutdown: %v", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	cfg := app.config.Database
	db, err := portal.OpenDatabase(ctx, portal.DatabaseOptions{
		Driver:  cfg.Driver,
		DSN:     cfg.DSN,
		Migrate: cfg.Migrate,
	})
	if err != nil {
		return err
	}

	repo := portal.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		_ = db.Close()
		return err
	}

	app.db = db
	app.repo = repo
	return nil
}

func WithHostedClient(app *App) {
	cfg := app.config.Hosted
	app.hosted = hosted.New(hosted.Config{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.AnonKey,
		ServiceKey: cfg.ServiceKey,
		Logger:     app.GetLogger("hosted"),
		Debug:      cfg.Debug,
	})
}

func WithHTTPServer(ctx context.Context, app *App) error {
	cfg := app.config

	covers, err := media.NewCovers(ctx, media.Settings{
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		Expiry:        cfg.Storage.UploadExpiry,
	})
	if err != nil {
		return err
	}

	engine := web.NewEngine(nil, cfg.Hosted.Debug)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			Views:             engine,
		}))
	})

	settings := webSettings(cfg)
	binder := func(session *portal.Session) web.SessionClient {
		return app.hosted.Bind(session)
	}

	directory := portal.NewAccountDirectory(app.repo.Profiles(), app.hosted, cfg.GetPhoneRegion())
	fetcher := functions.NewFetcher(&http.Client{Timeout: cfg.Download.Timeout})

	controller := web.NewController(
		web.WithSettings(settings),
		web.WithLogger(app.GetLogger("web")),
		web.WithBinder(binder),
		web.WithFlowOptions(
			portal.WithFlowConfig(cfg),
			portal.WithExistenceChecker(directory),
			portal.WithFlowActivitySink(app.sink),
			portal.WithFlowLogger(app.GetLogger("flow")),
		),
		web.WithArticles(portal.NewArticleService(app.repo.Articles(),
			portal.WithArticleActivitySink(app.sink),
			portal.WithArticleLogger(app.GetLogger("articles")),
		)),
		web.WithProfiles(app.repo.Profiles(), app.repo.Purchases()),
		web.WithManifests(fetcher),
		web.WithCovers(covers),
		web.WithRecoverer(app.hosted),
	)

	loader := web.NewSessionLoader(binder, app.repo.Roles(), settings, app.GetLogger("session"))

	r := srv.Router()

	if mw, ok := accessTokenMiddleware(cfg); ok {
		r.Use(mw)
	} else {
		app.logger.Warn("no hosted jwt secret or jwks urls configured, sessions will refresh on every request")
	}

	key := sha256.Sum256([]byte(cfg.Server.CookieSecret))
	r.Use(mflash.New(mflash.ConfigDefault))
	r.Use(web.Language(settings.DefaultLocale))
	r.Use(loader.Middleware())
	r.Use(csrf.New(csrf.Config{
		SecureKey: key[:],
		Binding:   web.CSRFBinding,
		Skip: func(ctx router.Context) bool {
			// called by the apps with the anon key, not from our forms
			return strings.HasPrefix(ctx.Path(), "/functions/")
		},
	}))

	r.Static("/assets", ".", router.Static{
		FS:   web.AssetsFS(),
		Root: ".",
	})

	functions.New(
		functions.WithFetcher(fetcher),
		functions.WithChecker(directory),
		functions.WithLogger(app.GetLogger("functions")),
	).Register(r)

	web.RegisterRoutes(r, controller)

	app.srv = srv
	return nil
}

func accessTokenMiddleware(cfg *config.Config) (router.MiddlewareFunc, bool) {
	jcfg := jwtware.Config{
		Optional:    true,
		TokenLookup: "cookie:" + web.CookieAccess,
		ContextKey:  web.ClaimsKey,
		Audience:    cfg.Hosted.Audience,
		JWKSetURLs:  cfg.Hosted.JWKSURLs,
	}
	if secret := cfg.Hosted.JWTSecret; secret != "" {
		jcfg.SigningKey = jwtware.SigningKey{JWTAlg: "HS256", Key: []byte(secret)}
	}
	if jcfg.SigningKey.Key == nil && len(jcfg.JWKSetURLs) == 0 {
		return nil, false
	}
	return jwtware.New(jcfg), true
}

func webSettings(cfg *config.Config) web.Settings {
	downloads := functions.Manifest{}
	for platform, rel := range cfg.Download.Defaults {
		downloads[platform] = functions.Release{
			Version:     rel.Version,
			Size:        functions.FlexText(rel.Size),
			DownloadURL: rel.DownloadURL,
		}
	}

	locale, ok := i18n.ParseLocale(cfg.GetDefaultLocale())
	if !ok {
		locale = i18n.DefaultLocale
	}

	return web.Settings{
		CookieSecret:   []byte(cfg.Server.CookieSecret),
		CookieSecure:   cfg.Server.CookieSecure,
		PublicURL:      cfg.Server.PublicURL,
		PaymentURL:     cfg.GetPaymentURL(),
		DefaultLocale:  locale,
		ManifestURL:    cfg.GetManifestURL(),
		Downloads:      downloads,
		WidgetProvider: cfg.Widget.Provider,
		WidgetSiteID:   cfg.Widget.WebsiteID,
		WidgetTimeout:  cfg.Widget.WaitTimeout,
		Debug:          cfg.Hosted.Debug,
	}
}

// redacted copies cfg without secrets for the debug dump.
func redacted(cfg *config.Config) config.Config {
	out := *cfg
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	out.Server.CookieSecret = mask(out.Server.CookieSecret)
	out.Hosted.AnonKey = mask(out.Hosted.AnonKey)
	out.Hosted.ServiceKey = mask(out.Hosted.ServiceKey)
	out.Hosted.JWTSecret = mask(out.Hosted.JWTSecret)
	out.Storage.AccessKey = mask(out.Storage.AccessKey)
	out.Storage.SecretKey = mask(out.Storage.SecretKey)
	return out
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
