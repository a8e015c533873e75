package web

import (
	"github.com/goliatone/go-router"
)

// RequireSession sends anonymous visitors to the auth panel, remembering
// where they were heading.
func (c *Controller) RequireSession() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if _, ok := SessionFrom(ctx).Identity(); !ok {
				c.cookies.setRejected(ctx)
				return ctx.Redirect(c.Routes.Auth, router.StatusSeeOther)
			}
			return next(ctx)
		}
	}
}

// RequireAdmin lets administrators through. Anonymous visitors go to the
// auth panel, signed in non administrators get the 404 page.
func (c *Controller) RequireAdmin() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			rs := SessionFrom(ctx)
			if _, ok := rs.Identity(); !ok {
				c.cookies.setRejected(ctx)
				return ctx.Redirect(c.Routes.Auth, router.StatusSeeOther)
			}
			if !rs.IsAdministrator() {
				return c.NotFound(ctx)
			}
			return next(ctx)
		}
	}
}
