package portal

import (
	"context"
	"math"
	"strings"
	"time"
)

// FlowPurpose distinguishes the login panel from the registration panel.
type FlowPurpose string

const (
	PurposeLogin    FlowPurpose = "login"
	PurposeRegister FlowPurpose = "register"
)

// Method is how an attempt proves control of an account.
type Method string

const (
	MethodPassword Method = "password"
	MethodPhoneOTP Method = "phone-otp"
	MethodEmailOTP Method = "email-otp"
	MethodPhone    Method = "phone"
	MethodEmail    Method = "email"
)

// Contact returns the contact kind the method addresses.
func (m Method) Contact() ContactKind {
	switch m {
	case MethodPhoneOTP, MethodPhone:
		return ContactPhone
	}
	return ContactEmail
}

// UsesOTP reports whether the method goes through the code step.
func (m Method) UsesOTP() bool {
	return m != MethodPassword && m != ""
}

// Step is the position of an attempt in the flow.
type Step string

const (
	StepMethodSelect Step = "method_select"
	StepInput        Step = "input"
	StepOTP          Step = "otp"
	StepDone         Step = "done"
)

// DefaultResendCooldown is the wait between OTP deliveries.
const DefaultResendCooldown = 60 * time.Second

const (
	msgInvalidCredentials = "邮箱或密码错误"
	msgNetworkFailure     = "网络错误，请稍后重试"
	msgCodeRejected       = "验证码错误或已过期"
	msgOTPRequestFailed   = "验证码发送失败，请稍后重试"
	msgOTPSent            = "验证码已发送"
	msgAccountNotFound    = "该账号尚未注册，请先注册"
	msgAccountExists      = "该账号已注册，请直接登录"
)

// FlowOption customizes flow construction.
type FlowOption func(*Flow)

// WithFlowClock injects a custom clock (useful for tests).
func WithFlowClock(clock func() time.Time) FlowOption {
	return func(f *Flow) {
		if clock != nil {
			f.now = clock
		}
	}
}

// WithFlowTicker replaces the once per second ticker that drives Countdown.
func WithFlowTicker(ticker func(time.Duration) (<-chan time.Time, func())) FlowOption {
	return func(f *Flow) {
		if ticker != nil {
			f.ticker = ticker
		}
	}
}

// WithFlowActivitySink sets the ActivitySink used to publish flow events.
func WithFlowActivitySink(sink ActivitySink) FlowOption {
	return func(f *Flow) {
		f.sink = normalizeActivitySink(sink)
	}
}

// WithFlowLogger overrides the logger.
func WithFlowLogger(logger Logger) FlowOption {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithResendCooldown overrides the default 60 second resend cooldown.
func WithResendCooldown(d time.Duration) FlowOption {
	return func(f *Flow) {
		if d > 0 {
			f.cooldown = d
		}
	}
}

// WithPhoneRegion sets the region used to normalize national phone numbers.
func WithPhoneRegion(region string) FlowOption {
	return func(f *Flow) {
		if region != "" {
			f.phoneRegion = strings.ToUpper(region)
		}
	}
}

// WithFlowConfig applies cooldown and phone region from cfg.
func WithFlowConfig(cfg FlowConfig) FlowOption {
	return func(f *Flow) {
		if cfg == nil {
			return
		}
		WithResendCooldown(cfg.GetResendCooldown())(f)
		WithPhoneRegion(cfg.GetPhoneRegion())(f)
	}
}

// WithExistenceChecker enables the account pre check before OTP delivery.
func WithExistenceChecker(checker ExistenceChecker) FlowOption {
	return func(f *Flow) {
		f.checker = checker
	}
}

// WithSessionReceiver sets who gets the session once an attempt is done.
func WithSessionReceiver(receiver SessionReceiver) FlowOption {
	return func(f *Flow) {
		f.receiver = receiver
	}
}

// Flow creates and restores auth attempts bound to a credential exchange.
type Flow struct {
	exchange    CredentialExchange
	checker     ExistenceChecker
	receiver    SessionReceiver
	sink        ActivitySink
	logger      Logger
	now         func() time.Time
	ticker      func(time.Duration) (<-chan time.Time, func())
	cooldown    time.Duration
	phoneRegion string
	methods     map[FlowPurpose][]Method
	transitions map[Step]map[Step]struct{}
}

// NewFlow returns a flow using exchange for every network call.
func NewFlow(exchange CredentialExchange, opts ...FlowOption) *Flow {
	if exchange == nil {
		panic("portal: NewFlow requires a CredentialExchange")
	}

	f := &Flow{
		exchange:    exchange,
		sink:        noopActivitySink{},
		logger:      defLogger{},
		now:         time.Now,
		ticker:      realTicker,
		cooldown:    DefaultResendCooldown,
		phoneRegion: DefaultPhoneRegion,
		methods: map[FlowPurpose][]Method{
			PurposeLogin:    {MethodPassword, MethodPhoneOTP, MethodEmailOTP},
			PurposeRegister: {MethodPhone, MethodEmail},
		},
		transitions: map[Step]map[Step]struct{}{
			StepMethodSelect: {
				StepInput: {},
			},
			StepInput: {
				StepInput: {},
				StepOTP:   {},
				StepDone:  {},
			},
			StepOTP: {
				StepOTP:   {},
				StepInput: {},
				StepDone:  {},
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// Methods lists the methods offered for purpose.
func (f *Flow) Methods(purpose FlowPurpose) []Method {
	out := make([]Method, len(f.methods[purpose]))
	copy(out, f.methods[purpose])
	return out
}

// Begin opens a new attempt at the method selection step.
func (f *Flow) Begin(purpose FlowPurpose) (*AuthAttempt, error) {
	if _, ok := f.methods[purpose]; !ok {
		return nil, ErrUnsupportedMethod.WithMetadata(map[string]any{
			"purpose": purpose,
		})
	}
	return &AuthAttempt{
		flow:    f,
		purpose: purpose,
		step:    StepMethodSelect,
		errors:  FieldErrors{},
	}, nil
}

// Resume rebuilds an attempt from a previously captured state.
func (f *Flow) Resume(state AttemptState) (*AuthAttempt, error) {
	a, err := f.Begin(state.Purpose)
	if err != nil {
		return nil, err
	}

	switch state.Step {
	case StepMethodSelect:
		return a, nil
	case StepInput, StepOTP, StepDone:
	default:
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"reason": "unknown step",
			"step":   state.Step,
		})
	}

	if !f.allows(state.Purpose, state.Method) {
		return nil, ErrUnsupportedMethod.WithMetadata(map[string]any{
			"purpose": state.Purpose,
			"method":  state.Method,
		})
	}

	a.method = state.Method
	a.step = state.Step
	a.destination = state.Destination
	a.username = state.Username
	if state.Step == StepOTP && state.ResendAt > 0 {
		a.resendAt = time.UnixMilli(state.ResendAt)
	}
	return a, nil
}

func (f *Flow) allows(purpose FlowPurpose, method Method) bool {
	for _, m := range f.methods[purpose] {
		if m == method {
			return true
		}
	}
	return false
}

func (f *Flow) canTransition(from, to Step) bool {
	if allowed, ok := f.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

// AttemptState is the portable form of an attempt. Typed codes are not part
// of it; a resumed attempt starts with an empty code field.
type AttemptState struct {
	Purpose     FlowPurpose `json:"p"`
	Method      Method      `json:"m,omitempty"`
	Step        Step        `json:"s"`
	Destination string      `json:"d,omitempty"`
	Username    string      `json:"u,omitempty"`
	// ResendAt is the cooldown deadline in unix milliseconds.
	ResendAt int64 `json:"r,omitempty"`
}

// AuthAttempt is one in progress login or registration. An attempt is owned
// by a single caller and only runs one network call at a time.
type AuthAttempt struct {
	flow        *Flow
	purpose     FlowPurpose
	method      Method
	step        Step
	destination string
	username    string
	code        string
	resendAt    time.Time
	errors      FieldErrors
	notice      string
	session     *Session
}

func (a *AuthAttempt) Purpose() FlowPurpose { return a.purpose }
func (a *AuthAttempt) Method() Method       { return a.method }
func (a *AuthAttempt) Step() Step           { return a.step }
func (a *AuthAttempt) Destination() string  { return a.destination }
func (a *AuthAttempt) Username() string     { return a.username }
func (a *AuthAttempt) Code() string         { return a.code }

// Notice is the banner text for the last service response, if any.
func (a *AuthAttempt) Notice() string { return a.notice }

// Session is set once the attempt reaches StepDone.
func (a *AuthAttempt) Session() *Session { return a.session }

// Done reports whether the attempt finished.
func (a *AuthAttempt) Done() bool { return a.step == StepDone }

// Errors returns a copy of the current field errors.
func (a *AuthAttempt) Errors() FieldErrors {
	out := make(FieldErrors, len(a.errors))
	for k, v := range a.errors {
		out[k] = v
	}
	return out
}

// CooldownSeconds is the whole number of seconds until resend is allowed.
func (a *AuthAttempt) CooldownSeconds() int {
	if a.step != StepOTP {
		return 0
	}
	return secondsUntil(a.resendAt, a.flow.now())
}

// CanResend reports whether the resend control should be enabled.
func (a *AuthAttempt) CanResend() bool {
	return a.step == StepOTP && a.CooldownSeconds() == 0
}

// Countdown emits the remaining cooldown now and after every tick, closing
// the channel once it reaches zero or ctx ends.
func (a *AuthAttempt) Countdown(ctx context.Context) <-chan int {
	out := make(chan int, 1)

	deadline := a.resendAt
	if a.step != StepOTP {
		deadline = time.Time{}
	}
	now := a.flow.now
	ticks, stop := a.flow.ticker(time.Second)

	go func() {
		defer close(out)
		defer stop()
		for {
			remaining := secondsUntil(deadline, now())
			select {
			case out <- remaining:
			case <-ctx.Done():
				return
			}
			if remaining == 0 {
				return
			}
			select {
			case <-ticks:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// State captures the attempt so it can be resumed later.
func (a *AuthAttempt) State() AttemptState {
	state := AttemptState{
		Purpose:     a.purpose,
		Method:      a.method,
		Step:        a.step,
		Destination: a.destination,
		Username:    a.username,
	}
	if a.step == StepOTP && !a.resendAt.IsZero() {
		state.ResendAt = a.resendAt.UnixMilli()
	}
	return state
}

// Choose selects a method and moves to the input step. Switching keeps the
// destination only when the new method uses the same contact kind.
func (a *AuthAttempt) Choose(ctx context.Context, method Method) error {
	if a.step == StepDone {
		return a.terminal("choose")
	}
	if !a.flow.allows(a.purpose, method) {
		return ErrUnsupportedMethod.WithMetadata(map[string]any{
			"purpose": a.purpose,
			"method":  method,
		})
	}

	from := a.step
	keep := a.method != "" && a.method.Contact() == method.Contact()
	destination := a.destination

	a.clear()
	a.method = method
	if keep {
		a.destination = destination
	}
	if err := a.moveTo(StepInput); err != nil {
		return err
	}

	a.record(ctx, ActivityEvent{
		EventType: ActivityFlowMethodChosen,
		FromStep:  from,
		ToStep:    StepInput,
	})
	return nil
}

// Submit validates the typed credentials and either signs in with a password
// or requests an OTP for the destination.
func (a *AuthAttempt) Submit(ctx context.Context, in Credentials) error {
	if err := a.expect(StepInput, "submit"); err != nil {
		return err
	}
	a.errors = FieldErrors{}
	a.notice = ""

	normalized, fields := ValidateCredentials(a.purpose, a.method, in)
	a.destination = normalized.Destination
	a.username = normalized.Username
	if len(fields) > 0 {
		a.errors = fields
		return fields.Err()
	}

	if a.method == MethodPassword {
		return a.signInWithPassword(ctx, normalized)
	}
	return a.requestOTP(ctx, false)
}

// SubmitCode verifies the typed OTP. On failure the typed code is kept and
// the cooldown is left untouched.
func (a *AuthAttempt) SubmitCode(ctx context.Context, code string) error {
	if err := a.expect(StepOTP, "verify"); err != nil {
		return err
	}
	a.errors = FieldErrors{}
	a.notice = ""
	a.code = strings.TrimSpace(code)

	if err := ValidateOTPCode(a.code); err != nil {
		a.errors["code"] = err.Error()
		return a.errors.Err()
	}

	channel := a.method.Contact().Channel()
	session, err := a.flow.exchange.VerifyOTP(ctx, a.destination, a.code, channel)
	if err != nil {
		a.errors["code"] = a.failureMessage(err, msgCodeRejected, true)
		a.flow.logger.Info("verify otp failed for %s: %v", a.method, err)
		a.record(ctx, ActivityEvent{
			EventType: ActivityLoginFailure,
			FromStep:  StepOTP,
			ToStep:    StepOTP,
			Metadata:  map[string]any{"operation": "verify_otp"},
		})
		return err
	}

	return a.complete(ctx, session)
}

// Resend requests a fresh OTP once the cooldown reached zero.
func (a *AuthAttempt) Resend(ctx context.Context) error {
	if err := a.expect(StepOTP, "resend"); err != nil {
		return err
	}
	if remaining := a.CooldownSeconds(); remaining > 0 {
		return ErrCooldownActive.WithMetadata(map[string]any{
			"remaining_seconds": remaining,
		})
	}
	a.errors = FieldErrors{}
	a.notice = ""
	return a.requestOTP(ctx, true)
}

// Back returns to the input step, dropping the pending code.
func (a *AuthAttempt) Back(ctx context.Context) error {
	if err := a.expect(StepOTP, "back"); err != nil {
		return err
	}
	a.code = ""
	a.errors = FieldErrors{}
	a.notice = ""
	a.resendAt = time.Time{}
	if err := a.moveTo(StepInput); err != nil {
		return err
	}
	a.record(ctx, ActivityEvent{
		EventType: ActivityFlowMethodChosen,
		FromStep:  StepOTP,
		ToStep:    StepInput,
		Metadata:  map[string]any{"reason": "back"},
	})
	return nil
}

func (a *AuthAttempt) signInWithPassword(ctx context.Context, c Credentials) error {
	session, err := a.flow.exchange.SignInWithPassword(ctx, c.Destination, c.Password)
	if err != nil {
		a.notice = a.failureMessage(err, msgInvalidCredentials, false)
		a.flow.logger.Info("password sign in failed: %v", err)
		a.record(ctx, ActivityEvent{
			EventType: ActivityLoginFailure,
			FromStep:  StepInput,
			ToStep:    StepInput,
			Metadata:  map[string]any{"operation": "sign_in_password"},
		})
		if IsTransportError(err) {
			return err
		}
		return ErrInvalidCredentials.WithMetadata(map[string]any{
			"cause": err.Error(),
		})
	}
	return a.complete(ctx, session)
}

func (a *AuthAttempt) requestOTP(ctx context.Context, resend bool) error {
	kind := a.method.Contact()
	destination := a.destination
	if kind == ContactPhone {
		destination = NormalizePhone(destination, a.flow.phoneRegion)
	}

	if !resend {
		if err := a.checkExistence(ctx, kind, destination); err != nil {
			return err
		}
	}

	req := OTPRequest{
		Destination: destination,
		Kind:        kind,
		CreateUser:  a.purpose == PurposeRegister,
	}
	if a.purpose == PurposeRegister && a.username != "" {
		req.Metadata = map[string]any{"username": a.username}
	}

	if err := a.flow.exchange.RequestOTP(ctx, req); err != nil {
		a.notice = a.failureMessage(err, msgOTPRequestFailed, true)
		a.flow.logger.Info("request otp failed for %s: %v", a.method, err)
		a.record(ctx, ActivityEvent{
			EventType: ActivityFlowOTPFailed,
			FromStep:  a.step,
			ToStep:    a.step,
		})
		return err
	}

	from := a.step
	a.destination = destination
	a.code = ""
	a.notice = msgOTPSent
	a.resendAt = a.flow.now().Add(a.flow.cooldown)
	if err := a.moveTo(StepOTP); err != nil {
		return err
	}

	a.record(ctx, ActivityEvent{
		EventType: ActivityFlowOTPRequested,
		FromStep:  from,
		ToStep:    StepOTP,
		Metadata:  map[string]any{"resend": resend, "channel": kind.Channel()},
	})
	return nil
}

func (a *AuthAttempt) checkExistence(ctx context.Context, kind ContactKind, destination string) error {
	if a.flow.checker == nil {
		return nil
	}

	exists, err := a.flow.checker.Exists(ctx, kind, destination)
	if err != nil {
		a.flow.logger.Warn("account existence check failed, continuing: %v", err)
		return nil
	}

	switch {
	case a.purpose == PurposeLogin && !exists:
		a.errors[string(kind)] = msgAccountNotFound
		return ErrAccountNotFound.WithMetadata(map[string]any{"kind": kind})
	case a.purpose == PurposeRegister && exists:
		a.errors[string(kind)] = msgAccountExists
		return ErrAccountExists.WithMetadata(map[string]any{"kind": kind})
	}
	return nil
}

func (a *AuthAttempt) complete(ctx context.Context, session *Session) error {
	from := a.step
	if err := a.moveTo(StepDone); err != nil {
		return err
	}
	a.session = session
	a.code = ""
	a.resendAt = time.Time{}
	a.notice = ""

	if a.flow.receiver != nil {
		if err := a.flow.receiver.Establish(ctx, session); err != nil {
			a.flow.logger.Error("session receiver failed: %v", err)
		}
	}

	event := ActivityLoginSuccess
	if a.purpose == PurposeRegister {
		event = ActivityRegistered
	}
	userID := ""
	if session != nil {
		userID = session.Identity.ID.String()
	}
	a.record(ctx, ActivityEvent{
		EventType: event,
		UserID:    userID,
		FromStep:  from,
		ToStep:    StepDone,
	})
	return nil
}

// failureMessage picks the user facing text for err. Transport failures get
// the generic network message, service messages are passed through when
// verbatim is set.
func (a *AuthAttempt) failureMessage(err error, fallback string, verbatim bool) string {
	if IsTransportError(err) {
		return msgNetworkFailure
	}
	if verbatim {
		if msg, ok := ServiceMessage(err); ok {
			return msg
		}
	}
	return fallback
}

func (a *AuthAttempt) expect(step Step, event string) error {
	if a.step == StepDone {
		return a.terminal(event)
	}
	if a.step != step {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"event": event,
			"step":  a.step,
		})
	}
	return nil
}

func (a *AuthAttempt) terminal(event string) error {
	return ErrTerminalState.WithMetadata(map[string]any{
		"event": event,
	})
}

func (a *AuthAttempt) moveTo(to Step) error {
	if !a.flow.canTransition(a.step, to) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": a.step,
			"to":   to,
		})
	}
	a.step = to
	return nil
}

func (a *AuthAttempt) clear() {
	a.method = ""
	a.destination = ""
	a.username = ""
	a.code = ""
	a.resendAt = time.Time{}
	a.errors = FieldErrors{}
	a.notice = ""
}

func (a *AuthAttempt) record(ctx context.Context, event ActivityEvent) {
	if event.Method == "" {
		event.Method = a.method
	}
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}
	event.Metadata["purpose"] = a.purpose
	recordActivity(ctx, a.flow.sink, a.flow.logger, a.flow.now, event)
}

func secondsUntil(deadline, now time.Time) int {
	if deadline.IsZero() {
		return 0
	}
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds()))
}

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
