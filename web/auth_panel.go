package web

import (
	"context"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/i18n"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

// AuthForm is the payload of every auth panel post.
type AuthForm struct {
	Purpose     string `form:"purpose" json:"purpose"`
	Method      string `form:"method" json:"method"`
	Destination string `form:"destination" json:"destination"`
	Password    string `form:"password" json:"password"`
	Username    string `form:"username" json:"username"`
	Code        string `form:"code" json:"code"`
}

func (f AuthForm) credentials() portal.Credentials {
	return portal.Credentials{
		Destination: f.Destination,
		Password:    f.Password,
		Username:    f.Username,
	}
}

type attemptOp func(ctx context.Context, a *portal.AuthAttempt, form AuthForm) error

var methodLabels = map[portal.Method]i18n.Key{
	portal.MethodPassword: i18n.AuthMethodPassword,
	portal.MethodPhoneOTP: i18n.AuthMethodPhoneOTP,
	portal.MethodEmailOTP: i18n.AuthMethodEmailOTP,
	portal.MethodPhone:    i18n.AuthMethodPhone,
	portal.MethodEmail:    i18n.AuthMethodEmail,
}

// AuthShow renders the login or registration panel, resuming the visitor's
// attempt when the cookie matches the requested mode.
func (c *Controller) AuthShow(ctx router.Context) error {
	rs := SessionFrom(ctx)
	if _, ok := rs.Identity(); ok {
		return ctx.Redirect(c.Routes.Home, router.StatusSeeOther)
	}
	if rs == nil {
		return c.ErrorHandler(ctx, portal.ErrNoSession)
	}

	flow := c.flowFor(rs)
	attempt := c.loadAttempt(ctx, flow, parsePurpose(ctx.Query("mode", "")))
	return c.respond(ctx, flow, attempt, "")
}

// AuthChoose selects a method.
func (c *Controller) AuthChoose(ctx router.Context) error {
	return c.authStep(ctx, func(ctx context.Context, a *portal.AuthAttempt, form AuthForm) error {
		return a.Choose(ctx, portal.Method(form.Method))
	})
}

// AuthSubmit sends the typed credentials.
func (c *Controller) AuthSubmit(ctx router.Context) error {
	return c.authStep(ctx, func(ctx context.Context, a *portal.AuthAttempt, form AuthForm) error {
		return a.Submit(ctx, form.credentials())
	})
}

// AuthVerify checks the typed one time code.
func (c *Controller) AuthVerify(ctx router.Context) error {
	return c.authStep(ctx, func(ctx context.Context, a *portal.AuthAttempt, form AuthForm) error {
		return a.SubmitCode(ctx, form.Code)
	})
}

// AuthResend requests a new code once the cooldown elapsed.
func (c *Controller) AuthResend(ctx router.Context) error {
	return c.authStep(ctx, func(ctx context.Context, a *portal.AuthAttempt, _ AuthForm) error {
		return a.Resend(ctx)
	})
}

// AuthBack returns from the code step to the input step.
func (c *Controller) AuthBack(ctx router.Context) error {
	return c.authStep(ctx, func(ctx context.Context, a *portal.AuthAttempt, _ AuthForm) error {
		return a.Back(ctx)
	})
}

// SignOut ends the hosted session and clears the session cookies.
func (c *Controller) SignOut(ctx router.Context) error {
	rs := SessionFrom(ctx)
	if rs != nil && rs.Context != nil {
		if err := rs.Context.SignOut(ctx.Context()); err != nil {
			c.Logger.Warn("sign out: %v", err)
		}
	}
	c.cookies.clearSession(ctx)
	c.cookies.del(ctx, CookieAttempt)
	return ctx.Redirect(c.Routes.Home, router.StatusSeeOther)
}

func (c *Controller) authStep(ctx router.Context, op attemptOp) error {
	rs := SessionFrom(ctx)
	if rs == nil {
		return c.ErrorHandler(ctx, portal.ErrNoSession)
	}

	form := new(AuthForm)
	if err := ctx.Bind(form); err != nil {
		c.Logger.Error("auth panel parse payload: %v", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Redirect(c.Routes.Auth, router.StatusSeeOther)
	}

	if c.Settings.Debug {
		safe := *form
		safe.Password = ""
		c.Logger.Debug("auth panel payload: %s", print.MaybePrettyJSON(safe))
	}

	flow := c.flowFor(rs)
	attempt := c.loadAttempt(ctx, flow, parsePurpose(form.Purpose))
	tr := c.translator(ctx)

	notice := ""
	err := op(ctx.Context(), attempt, *form)
	switch {
	case err == nil:
	case portal.HasTextCode(err, portal.TextCodeCooldownActive):
		notice = tr.Tf(i18n.AuthResendIn, attempt.CooldownSeconds())
	case portal.HasTextCode(err, portal.TextCodeInvalidTransition),
		portal.HasTextCode(err, portal.TextCodeTerminalState),
		portal.HasTextCode(err, portal.TextCodeUnsupportedMethod):
		c.Logger.Info("auth panel restarting attempt: %v", err)
		if fresh, berr := flow.Begin(attempt.Purpose()); berr == nil {
			attempt = fresh
		}
		notice = tr.T(i18n.ErrorGeneric)
	default:
		c.Logger.Debug("auth panel step failed: %v", err)
	}

	return c.respond(ctx, flow, attempt, notice)
}

func (c *Controller) flowFor(rs *RequestSession) *portal.Flow {
	opts := []portal.FlowOption{
		portal.WithFlowClock(c.now),
		portal.WithFlowLogger(c.Logger),
	}
	opts = append(opts, c.flowOptions...)
	if rs.Context != nil {
		opts = append(opts, portal.WithSessionReceiver(rs.Context))
	}
	return portal.NewFlow(rs.Client, opts...)
}

// loadAttempt resumes the cookie attempt, or begins a new one when the
// cookie is missing, invalid or for another purpose. An empty purpose
// accepts whatever the cookie holds.
func (c *Controller) loadAttempt(ctx router.Context, flow *portal.Flow, purpose portal.FlowPurpose) *portal.AuthAttempt {
	if raw := ctx.Cookies(CookieAttempt); raw != "" {
		state, err := c.codec.Decode(raw)
		if err != nil {
			c.Logger.Debug("discarding auth attempt cookie: %v", err)
		} else if purpose == "" || state.Purpose == purpose {
			if attempt, err := flow.Resume(state); err == nil {
				return attempt
			}
		}
	}
	if purpose == "" {
		purpose = portal.PurposeLogin
	}
	attempt, err := flow.Begin(purpose)
	if err != nil {
		attempt, _ = flow.Begin(portal.PurposeLogin)
	}
	return attempt
}

// respond finishes a panel request: done attempts become session cookies
// and a redirect, anything else is stored and rendered.
func (c *Controller) respond(ctx router.Context, flow *portal.Flow, attempt *portal.AuthAttempt, notice string) error {
	if attempt.Done() {
		session := attempt.Session()
		c.cookies.writeSession(ctx, session, c.Settings.RefreshTTL)
		c.cookies.del(ctx, CookieAttempt)
		c.ensureProfile(ctx.Context(), session, attempt.Username())
		return ctx.Redirect(c.cookies.takeRejected(ctx, c.Routes.Home), router.StatusSeeOther)
	}

	raw, err := c.codec.Encode(attempt.State())
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	c.cookies.set(ctx, CookieAttempt, raw, c.Settings.AttemptTTL, true)

	return c.render(ctx, c.Views.Auth, c.attemptView(ctx, flow, attempt, notice))
}

func (c *Controller) ensureProfile(ctx context.Context, session *portal.Session, username string) {
	if session == nil {
		return
	}
	if username == "" {
		username = session.Identity.Username()
	}
	_, err := c.profiles.Ensure(ctx, &portal.Profile{
		ID:       session.Identity.ID,
		Username: username,
		Phone:    session.Identity.Phone,
	})
	if err != nil {
		c.Logger.Warn("ensure profile %s: %v", session.Identity.ID, err)
	}
}

func (c *Controller) attemptView(ctx router.Context, flow *portal.Flow, a *portal.AuthAttempt, notice string) router.ViewContext {
	tr := c.translator(ctx)

	methods := make([]map[string]any, 0, 3)
	for _, m := range flow.Methods(a.Purpose()) {
		methods = append(methods, map[string]any{
			"code":   string(m),
			"label":  tr.T(methodLabels[m]),
			"active": m == a.Method(),
		})
	}

	title := i18n.AuthTitleLogin
	if a.Purpose() == portal.PurposeRegister {
		title = i18n.AuthTitleRegister
	}
	if notice == "" {
		notice = a.Notice()
	}

	return router.ViewContext{
		"title":        tr.T(title),
		"purpose":      string(a.Purpose()),
		"step":         string(a.Step()),
		"method":       string(a.Method()),
		"contact":      string(a.Method().Contact()),
		"uses_otp":     a.Method().UsesOTP(),
		"methods":      methods,
		"destination":  a.Destination(),
		"username":     a.Username(),
		"code":         a.Code(),
		"errors":       a.Errors(),
		"notice":       notice,
		"cooldown":     a.CooldownSeconds(),
		"can_resend":   a.CanResend(),
		"resend_label": tr.Tf(i18n.AuthResendIn, a.CooldownSeconds()),
	}
}

func parsePurpose(raw string) portal.FlowPurpose {
	switch portal.FlowPurpose(raw) {
	case portal.PurposeLogin:
		return portal.PurposeLogin
	case portal.PurposeRegister:
		return portal.PurposeRegister
	}
	return ""
}
