package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/functions"
	"github.com/goliatone/go-portal/i18n"
	"github.com/goliatone/go-portal/widget"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// Platforms is the display order of the download cards.
var Platforms = []string{"android", "windows", "macos", "ios"}

// Plans are the subscription plans offered at checkout.
var Plans = []string{"monthly", "quarterly", "yearly"}

// Home renders the landing page.
func (c *Controller) Home(ctx router.Context) error {
	return c.render(ctx, c.Views.Home, router.ViewContext{
		"plans": Plans,
	})
}

// DownloadCard is one platform on the download page.
type DownloadCard struct {
	Platform    string
	Version     string
	Size        string
	DownloadURL string
	Changelog   []string
}

// Download renders the per platform releases. When the manifest cannot be
// read every platform shows its configured default.
func (c *Controller) Download(ctx router.Context) error {
	releases, fallback := c.releases(ctx.Context())
	return c.render(ctx, c.Views.Download, router.ViewContext{
		"releases": releases,
		"fallback": fallback,
	})
}

func (c *Controller) releases(ctx context.Context) ([]DownloadCard, bool) {
	manifest := c.Settings.Downloads
	fallback := true

	if c.manifests != nil && c.Settings.ManifestURL != "" {
		fetched, err := c.manifests.Manifest(ctx, c.Settings.ManifestURL)
		if err != nil {
			c.Logger.Warn("version manifest unavailable, using defaults: %v", err)
		} else {
			manifest = functions.Merge(c.Settings.Downloads, fetched)
			fallback = false
		}
	}

	cards := make([]DownloadCard, 0, len(Platforms))
	for _, platform := range Platforms {
		release, ok := manifest[platform]
		if !ok {
			continue
		}
		cards = append(cards, DownloadCard{
			Platform:    platform,
			Version:     release.Version,
			Size:        release.Size.SizeLabel(),
			DownloadURL: release.DownloadURL,
			Changelog:   []string(release.Changelog),
		})
	}
	return cards, fallback
}

// Legal returns a handler for a static legal page.
func (c *Controller) Legal(view string, title i18n.Key) router.HandlerFunc {
	return func(ctx router.Context) error {
		return c.render(ctx, view, router.ViewContext{
			"title": c.translator(ctx).T(title),
		})
	}
}

// CheckoutForm is the plan picked on the landing page.
type CheckoutForm struct {
	Plan string `form:"plan" json:"plan"`
}

// Validate implements validation.Validatable.
func (f CheckoutForm) Validate() error {
	plans := make([]any, 0, len(Plans))
	for _, p := range Plans {
		plans = append(plans, p)
	}
	return validation.ValidateStruct(&f,
		validation.Field(&f.Plan, validation.Required, validation.In(plans...)),
	)
}

// Checkout sends a signed in visitor to the payment page for the plan.
func (c *Controller) Checkout(ctx router.Context) error {
	identity, _ := SessionFrom(ctx).Identity()

	form := new(CheckoutForm)
	if err := ctx.Bind(form); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	form.Plan = strings.ToLower(strings.TrimSpace(form.Plan))

	if err := form.Validate(); err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Redirect(c.Routes.Home, router.StatusSeeOther)
	}

	target, err := c.checkoutURL(form.Plan, identity)
	if err != nil {
		c.Logger.Error("checkout: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": c.translator(ctx).T(i18n.ErrorGeneric),
		}).Redirect(c.Routes.Home, router.StatusSeeOther)
	}
	return ctx.Redirect(target, router.StatusSeeOther)
}

var (
	errPaymentURLMissing = errors.New("payment url not configured")
	errRecoveryDisabled  = errors.New("password recovery not configured")
)

func (c *Controller) checkoutURL(plan string, identity portal.Identity) (string, error) {
	if c.Settings.PaymentURL == "" {
		return "", errPaymentURLMissing
	}
	u, err := url.Parse(c.Settings.PaymentURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("plan", plan)
	q.Set("user_id", identity.ID.String())
	if identity.Email != "" {
		q.Set("email", identity.Email)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// WidgetReadyForm is posted by a page once its chat widget SDK loaded.
type WidgetReadyForm struct {
	Page     string `json:"page"`
	Provider string `json:"provider"`
	Version  string `json:"version"`
}

// WidgetReady resolves the ready future of the posting page.
func (c *Controller) WidgetReady(ctx router.Context) error {
	payload := new(WidgetReadyForm)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{"error": err.Error()})
	}

	ready, err := c.widget.Lookup(CSRFBinding(ctx), payload.Page)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	}

	info := widget.Info{Provider: payload.Provider, Version: payload.Version}
	if info.Provider == "" {
		info.Provider = c.Settings.WidgetProvider
	}
	if err := ready.Resolve(info); err != nil {
		return ctx.JSON(http.StatusConflict, map[string]any{"error": err.Error()})
	}
	return ctx.JSON(router.StatusOK, map[string]any{"ready": true})
}

// WidgetVisitor waits for the widget of the requesting page and hands it the
// signed in visitor. Anonymous visitors get an empty object straight away.
func (c *Controller) WidgetVisitor(ctx router.Context) error {
	identity, ok := SessionFrom(ctx).Identity()
	if !ok {
		return ctx.JSON(router.StatusOK, map[string]any{})
	}
	visitor := widget.Visitor{
		ID:    identity.ID.String(),
		Name:  identity.DisplayName(),
		Email: identity.Email,
		Phone: identity.Phone,
	}

	owner, page := CSRFBinding(ctx), ctx.Query("page", "")
	ready, err := c.widget.Lookup(owner, page)
	if err != nil {
		return ctx.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	}
	defer c.widget.Release(owner, page)

	waitCtx, cancel := context.WithTimeout(ctx.Context(), c.Settings.WidgetTimeout)
	defer cancel()

	pushed := false
	err = widget.Sync(waitCtx, ready, widget.PusherFunc(func(_ context.Context, v widget.Visitor) error {
		pushed = true
		return ctx.JSON(router.StatusOK, v)
	}), visitor)
	if err != nil && !pushed {
		c.Logger.Info("widget visitor sync: %v", err)
		return ctx.JSON(http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
	}
	return err
}
