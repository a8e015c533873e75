// Package csrf protects the portal's HTML forms with signed, visitor bound
// tokens. Tokens are stateless: a timestamp, a nonce and the visitor binding
// signed with HMAC-SHA256.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-router"
)

var (
	ErrTokenMismatch    = errors.New("CSRF token mismatch")
	ErrTokenMissing     = errors.New("CSRF token missing")
	ErrTokenExpired     = errors.New("CSRF token expired")
	ErrSecureKeyMissing = errors.New("CSRF secure key required")
)

// DefaultTokenLength is the nonce length in bytes.
const DefaultTokenLength = 16

// DefaultContextKey is the locals key holding the request token.
const DefaultContextKey = "csrf_token"

// DefaultFormFieldName is the hidden form field carrying the token.
const DefaultFormFieldName = "_token"

// DefaultHeaderName is the header carrying the token for fetch requests.
const DefaultHeaderName = "X-CSRF-Token"

// MinKeyLength is the minimum accepted secure key length.
const MinKeyLength = 32

// Config defines the configuration for the CSRF middleware.
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(router.Context) bool

	TokenLength   int
	ContextKey    string
	FormFieldName string
	HeaderName    string

	// Binding returns the value a token is tied to. Defaults to the client IP.
	Binding func(router.Context) string

	ErrorHandler router.ErrorHandler

	// SafeMethods are not validated
	SafeMethods []string

	Expiration time.Duration

	// SecureKey signs tokens. Required, at least MinKeyLength bytes.
	SecureKey []byte

	Now func() time.Time
}

// New creates the CSRF middleware. It panics when the secure key is missing
// or too short.
func New(config ...Config) router.MiddlewareFunc {
	cfg := configDefault(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			binding := cfg.Binding(ctx)

			token, err := cfg.generate(binding)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}
			ctx.Locals(cfg.ContextKey, token)
			ctx.Locals(cfg.ContextKey+"_field", cfg.FormFieldName)
			ctx.Locals(cfg.ContextKey+"_header", cfg.HeaderName)

			if slices.Contains(cfg.SafeMethods, strings.ToUpper(ctx.Method())) {
				return ctx.Next()
			}

			if err := cfg.validate(ctx, binding); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}
			return ctx.Next()
		}
	}
}

// TemplateData returns the token helpers merged into every rendered page.
func TemplateData(ctx router.Context) map[string]any {
	token, _ := ctx.Locals(DefaultContextKey).(string)

	field := DefaultFormFieldName
	if v, ok := ctx.Locals(DefaultContextKey + "_field").(string); ok && v != "" {
		field = v
	}
	header := DefaultHeaderName
	if v, ok := ctx.Locals(DefaultContextKey + "_header").(string); ok && v != "" {
		header = v
	}

	return map[string]any{
		"csrf_token":       token,
		"csrf_field":       `<input type="hidden" name="` + html.EscapeString(field) + `" value="` + html.EscapeString(token) + `">`,
		"csrf_meta":        `<meta name="csrf-token" content="` + html.EscapeString(token) + `">`,
		"csrf_header_name": header,
	}
}

func (cfg Config) generate(binding string) (string, error) {
	nonce := make([]byte, cfg.TokenLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	payload := fmt.Sprintf("%d:%s:%s", cfg.Now().UTC().Unix(), hex.EncodeToString(nonce), binding)
	token := payload + ":" + hex.EncodeToString(cfg.sign(payload))
	return base64.RawURLEncoding.EncodeToString([]byte(token)), nil
}

func (cfg Config) sign(payload string) []byte {
	mac := hmac.New(sha256.New, cfg.SecureKey)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func (cfg Config) validate(ctx router.Context, binding string) error {
	received := ctx.FormValue(cfg.FormFieldName)
	if received == "" {
		received = ctx.GetString(cfg.HeaderName, "")
	}
	if received == "" {
		return ErrTokenMissing
	}

	decoded, err := base64.RawURLEncoding.DecodeString(received)
	if err != nil {
		return ErrTokenMismatch
	}

	// the binding may itself contain colons, the signature never does
	raw := string(decoded)
	cut := strings.LastIndex(raw, ":")
	if cut < 0 {
		return ErrTokenMismatch
	}
	payload, signatureHex := raw[:cut], raw[cut+1:]

	parts := strings.SplitN(payload, ":", 3)
	if len(parts) != 3 {
		return ErrTokenMismatch
	}

	timestamp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrTokenMismatch
	}

	signature, err := hex.DecodeString(signatureHex)
	if err != nil || !hmac.Equal(signature, cfg.sign(payload)) {
		return ErrTokenMismatch
	}

	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(binding)) != 1 {
		return ErrTokenMismatch
	}

	if cfg.Expiration > 0 && cfg.Now().UTC().After(time.Unix(timestamp, 0).Add(cfg.Expiration)) {
		return ErrTokenExpired
	}
	return nil
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if len(cfg.SecureKey) == 0 {
		panic(ErrSecureKeyMissing)
	}
	if len(cfg.SecureKey) < MinKeyLength {
		panic(fmt.Errorf("csrf: secure key must be at least %d bytes, got %d", MinKeyLength, len(cfg.SecureKey)))
	}

	if cfg.TokenLength == 0 {
		cfg.TokenLength = DefaultTokenLength
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultFormFieldName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}
	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{"GET", "HEAD", "OPTIONS", "TRACE"}
	}
	if cfg.Expiration == 0 {
		cfg.Expiration = 12 * time.Hour
	}
	if cfg.Binding == nil {
		cfg.Binding = func(ctx router.Context) string {
			return "ip:" + ctx.IP()
		}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}
	return cfg
}

func defaultErrorHandler(ctx router.Context, err error) error {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return ctx.Status(router.StatusBadRequest).SendString("CSRF token missing")
	case errors.Is(err, ErrTokenMismatch):
		return ctx.Status(router.StatusForbidden).SendString("CSRF token mismatch")
	case errors.Is(err, ErrTokenExpired):
		return ctx.Status(router.StatusForbidden).SendString("CSRF token expired")
	default:
		return ctx.Status(router.StatusInternalServerError).SendString("CSRF validation error")
	}
}
