package portal

import (
	"errors"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidTransition  = "INVALID_FLOW_TRANSITION"
	TextCodeTerminalState      = "TERMINAL_FLOW_STATE"
	TextCodeUnsupportedMethod  = "UNSUPPORTED_AUTH_METHOD"
	TextCodeCooldownActive     = "RESEND_COOLDOWN_ACTIVE"
	TextCodeValidationFailed   = "VALIDATION_FAILED"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeServiceRejected    = "SERVICE_REJECTED"
	TextCodeTransportFailure   = "TRANSPORT_FAILURE"
	TextCodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	TextCodeAccountExists      = "ACCOUNT_EXISTS"
	TextCodeNoSession          = "NO_SESSION"
	TextCodeArticleNotFound    = "ARTICLE_NOT_FOUND"
)

// ErrInvalidTransition is returned when an event is not allowed in the current step.
var ErrInvalidTransition = goerrors.New("invalid auth flow transition", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalState is returned for any event sent to a finished attempt.
var ErrTerminalState = goerrors.New("auth flow is done", goerrors.CategoryConflict).
	WithTextCode(TextCodeTerminalState).
	WithCode(goerrors.CodeConflict)

// ErrUnsupportedMethod is returned when a method does not belong to the attempt purpose.
var ErrUnsupportedMethod = goerrors.New("unsupported auth method", goerrors.CategoryValidation).
	WithTextCode(TextCodeUnsupportedMethod).
	WithCode(goerrors.CodeBadRequest)

// ErrCooldownActive is returned when resend is requested before the cooldown elapsed.
var ErrCooldownActive = goerrors.New("resend cooldown active", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeCooldownActive).
	WithCode(goerrors.CodeBadRequest)

// ErrValidationFailed is the sentinel behind ValidationError.
var ErrValidationFailed = goerrors.New("validation failed", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidationFailed).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidCredentials is the generic password login failure.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotFound is returned when an OTP login targets an unknown contact.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrAccountExists is returned when registering an already bound contact.
var ErrAccountExists = goerrors.New("account already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeAccountExists).
	WithCode(goerrors.CodeConflict)

// ErrNoSession is returned by operations that need a signed in identity.
var ErrNoSession = goerrors.New("no active session", goerrors.CategoryAuth).
	WithTextCode(TextCodeNoSession).
	WithCode(goerrors.CodeUnauthorized)

// ErrArticleNotFound is returned when an article lookup has no row.
var ErrArticleNotFound = goerrors.New("article not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeArticleNotFound).
	WithCode(goerrors.CodeNotFound)

// ServiceMessenger is implemented by errors that carry the hosted service's
// own message text.
type ServiceMessenger interface {
	ServiceMessage() string
}

// ServiceMessage extracts the hosted service message from err, if any.
func ServiceMessage(err error) (string, bool) {
	var sm ServiceMessenger
	if errors.As(err, &sm) {
		if msg := sm.ServiceMessage(); msg != "" {
			return msg, true
		}
	}
	return "", false
}

// IsTransportError reports whether err is a network level failure rather
// than a response from the hosted service.
func IsTransportError(err error) bool {
	return HasTextCode(err, TextCodeTransportFailure)
}

// HasTextCode reports whether err carries the given go-errors text code.
func HasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// NewTransportError wraps a network failure for operation.
func NewTransportError(err error, operation string) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "transport failure").
		WithTextCode(TextCodeTransportFailure).
		WithCode(goerrors.CodeInternal).
		WithMetadata(map[string]any{"operation": operation})
}

// ValidationError carries field scoped messages. It unwraps to ErrValidationFailed.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// FieldErrorsFrom returns the field messages carried by err, if any.
func FieldErrorsFrom(err error) FieldErrors {
	var ve *ValidationError
	if errors.As(err, &ve) && ve != nil {
		return ve.Fields
	}
	return nil
}

func validationError(fields FieldErrors) error {
	copied := make(FieldErrors, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &ValidationError{Fields: copied}
}
