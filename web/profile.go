package web

import (
	"strings"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/i18n"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// ProfileForm holds the editable profile fields.
type ProfileForm struct {
	Username string `form:"username" json:"username"`
	Bio      string `form:"bio" json:"bio"`
}

// Validate returns field errors for the form.
func (f ProfileForm) Validate() portal.FieldErrors {
	fields := portal.FieldErrors{}
	if err := portal.ValidateUsername(f.Username); err != nil {
		fields["username"] = err.Error()
	}
	if err := portal.ValidateBio(f.Bio); err != nil {
		fields["bio"] = err.Error()
	}
	return fields
}

// PasswordForm is used by the profile and the reset password pages.
type PasswordForm struct {
	AccessToken     string `form:"access_token" json:"access_token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// ProfileShow renders the dashboard: profile, subscription and purchases.
func (c *Controller) ProfileShow(ctx router.Context) error {
	data, err := c.profileData(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return c.render(ctx, c.Views.Profile, data)
}

func (c *Controller) profileData(ctx router.Context) (router.ViewContext, error) {
	identity, _ := SessionFrom(ctx).Identity()
	tr := c.translator(ctx)

	profile, err := c.profiles.GetByID(ctx.Context(), identity.ID)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			return nil, err
		}
		profile, err = c.profiles.Ensure(ctx.Context(), &portal.Profile{
			ID:       identity.ID,
			Username: identity.Username(),
			Phone:    identity.Phone,
		})
		if err != nil {
			return nil, err
		}
	}

	purchases, err := c.purchases.ListByUser(ctx.Context(), identity.ID)
	if err != nil {
		return nil, err
	}

	subscription := tr.T(i18n.ProfileSubscriptionNone)
	now := c.now()
	switch {
	case profile.SubscriptionActive(now):
		subscription = tr.Tf(i18n.ProfileSubscriptionActive, profile.SubscriptionExpiresAt.Format("2006-01-02"))
	case profile.SubscriptionExpiresAt != nil:
		subscription = tr.T(i18n.ProfileSubscriptionExpired)
	}

	return router.ViewContext{
		"profile":             profile,
		"identity":            identity,
		"subscription":        subscription,
		"subscription_active": profile.SubscriptionActive(now),
		"purchases":           purchases,
		"errors":              map[string]string{},
		"record":              ProfileForm{Username: profile.Username, Bio: profile.Bio},
	}, nil
}

// ProfileUpdate saves username and bio.
func (c *Controller) ProfileUpdate(ctx router.Context) error {
	identity, _ := SessionFrom(ctx).Identity()

	payload := new(ProfileForm)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	payload.Username = strings.TrimSpace(payload.Username)
	payload.Bio = strings.TrimSpace(payload.Bio)

	if fields := payload.Validate(); len(fields) > 0 {
		return c.renderProfileErrors(ctx, fields, payload)
	}

	err := c.profiles.UpdateDetails(ctx.Context(), identity.ID, payload.Username, payload.Bio)
	if repository.IsRecordNotFound(err) {
		_, err = c.profiles.Ensure(ctx.Context(), &portal.Profile{
			ID:       identity.ID,
			Username: payload.Username,
			Bio:      payload.Bio,
			Phone:    identity.Phone,
		})
	}
	if err != nil {
		c.Logger.Error("update profile %s: %v", identity.ID, err)
		return c.renderProfileErrors(ctx, portal.FieldErrors{"form": err.Error()}, payload)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": c.translator(ctx).T(i18n.ProfileSaved),
	}).Redirect(c.Routes.Profile, router.StatusSeeOther)
}

// ProfilePassword changes the password of the signed in identity.
func (c *Controller) ProfilePassword(ctx router.Context) error {
	rs := SessionFrom(ctx)

	payload := new(PasswordForm)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	if fields := portal.ValidatePasswordConfirmation(payload.Password, payload.ConfirmPassword); len(fields) > 0 {
		return c.renderProfileErrors(ctx, fields, nil)
	}

	if _, err := rs.Client.UpdateIdentity(ctx.Context(), portal.IdentityPatch{Password: payload.Password}); err != nil {
		c.Logger.Info("change password: %v", err)
		return c.renderProfileErrors(ctx, portal.FieldErrors{"password": c.serviceText(ctx, err)}, nil)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": c.translator(ctx).T(i18n.ProfilePasswordChanged),
	}).Redirect(c.Routes.Profile, router.StatusSeeOther)
}

func (c *Controller) renderProfileErrors(ctx router.Context, fields portal.FieldErrors, record *ProfileForm) error {
	data, err := c.profileData(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	data["errors"] = fields
	if record != nil {
		data["record"] = *record
	}
	return c.render(ctx, c.Views.Profile, data)
}

// serviceText is the hosted service message, or the generic failure text.
func (c *Controller) serviceText(ctx router.Context, err error) string {
	if msg, ok := portal.ServiceMessage(err); ok && !portal.IsTransportError(err) {
		return msg
	}
	return c.translator(ctx).T(i18n.ErrorGeneric)
}

// ResetEmailForm asks for a recovery email.
type ResetEmailForm struct {
	Email string `form:"email" json:"email"`
}

// ResetPasswordShow renders the recovery request form, or the new password
// form when the visitor arrives from a recovery link. The hosted service puts
// the link parameters in the URL fragment; the request form moves them into
// the query so they reach this handler.
func (c *Controller) ResetPasswordShow(ctx router.Context) error {
	token := ctx.Query("access_token", "")
	_, signedIn := SessionFrom(ctx).Identity()

	if reason := ctx.Query("error_description", ""); reason != "" && token == "" {
		return c.renderReset(ctx, "request", "", portal.FieldErrors{"form": reason})
	}

	stage := "request"
	if token != "" || signedIn {
		stage = "update"
	}
	return c.renderReset(ctx, stage, token, nil)
}

// ResetPasswordRequest sends the recovery email.
func (c *Controller) ResetPasswordRequest(ctx router.Context) error {
	payload := new(ResetEmailForm)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if err := portal.ValidateEmail(email); err != nil {
		return c.renderReset(ctx, "request", "", portal.FieldErrors{"email": err.Error()})
	}
	if c.recoverer == nil {
		return c.ErrorHandler(ctx, errRecoveryDisabled)
	}

	redirectTo := strings.TrimRight(c.Settings.PublicURL, "/") + c.Routes.ResetPassword
	if err := c.recoverer.RecoverPassword(ctx.Context(), email, redirectTo); err != nil {
		c.Logger.Info("recover password: %v", err)
		return c.renderReset(ctx, "request", "", portal.FieldErrors{"email": c.serviceText(ctx, err)})
	}

	return c.render(ctx, c.Views.ResetPassword, router.ViewContext{
		"stage":  "sent",
		"errors": map[string]string{},
		"notice": c.translator(ctx).T(i18n.ResetRequestSent),
	})
}

// ResetPasswordComplete stores the new password with the recovery token or
// the current session.
func (c *Controller) ResetPasswordComplete(ctx router.Context) error {
	payload := new(PasswordForm)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	if fields := portal.ValidatePasswordConfirmation(payload.Password, payload.ConfirmPassword); len(fields) > 0 {
		return c.renderReset(ctx, "update", payload.AccessToken, fields)
	}

	var updater portal.IdentityUpdater
	switch {
	case payload.AccessToken != "" && c.bind != nil:
		updater = c.bind(&portal.Session{AccessToken: payload.AccessToken})
	default:
		rs := SessionFrom(ctx)
		if _, ok := rs.Identity(); !ok {
			return c.renderReset(ctx, "request", "", portal.FieldErrors{"form": portal.ErrNoSession.Error()})
		}
		updater = rs.Client
	}

	if _, err := updater.UpdateIdentity(ctx.Context(), portal.IdentityPatch{Password: payload.Password}); err != nil {
		c.Logger.Info("reset password: %v", err)
		return c.renderReset(ctx, "update", payload.AccessToken, portal.FieldErrors{"password": c.serviceText(ctx, err)})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": c.translator(ctx).T(i18n.ResetDone),
	}).Redirect(c.Routes.Auth, router.StatusSeeOther)
}

func (c *Controller) renderReset(ctx router.Context, stage, token string, fields portal.FieldErrors) error {
	if fields == nil {
		fields = portal.FieldErrors{}
	}
	return c.render(ctx, c.Views.ResetPassword, router.ViewContext{
		"stage":        stage,
		"access_token": token,
		"errors":       fields,
	})
}
