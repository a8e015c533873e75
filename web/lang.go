package web

import (
	"github.com/goliatone/go-portal/i18n"
	"github.com/goliatone/go-router"
)

const localsLocale = "portal_locale"

// Language resolves the visitor locale from the preference cookie, then the
// Accept-Language header, then def.
func Language(def i18n.Locale) router.MiddlewareFunc {
	if def == "" {
		def = i18n.DefaultLocale
	}
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			ctx.Locals(localsLocale, resolveLocale(ctx, def))
			return next(ctx)
		}
	}
}

func resolveLocale(ctx router.Context, def i18n.Locale) i18n.Locale {
	if loc, ok := i18n.ParseLocale(ctx.Cookies(CookieLanguage)); ok {
		return loc
	}
	if header := ctx.GetString("Accept-Language", ""); header != "" {
		return i18n.FromAcceptLanguage(header)
	}
	return def
}

func localeFrom(ctx router.Context, def i18n.Locale) i18n.Locale {
	if loc, ok := ctx.Locals(localsLocale).(i18n.Locale); ok && loc != "" {
		return loc
	}
	return def
}

// SwitchLanguage stores the preference and sends the visitor back.
func (c *Controller) SwitchLanguage(ctx router.Context) error {
	loc, ok := i18n.ParseLocale(ctx.Param("code", ""))
	if !ok {
		return c.NotFound(ctx)
	}
	c.cookies.set(ctx, CookieLanguage, string(loc), languageTTL, false)
	return ctx.Redirect(safeRedirect(refererPath(ctx.Referer()), c.Routes.Home), router.StatusSeeOther)
}
