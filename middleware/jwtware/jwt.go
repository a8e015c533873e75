package jwtware

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
	ErrNotAuthenticated      = errors.New("token does not belong to a signed in user")
)

// TokenValidator turns a raw token into claims.
type TokenValidator interface {
	Validate(tokenString string) (*Claims, error)
}

// ValidationListener runs after a token validates and before the handler.
type ValidationListener func(ctx router.Context, claims *Claims) error

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	SigningKey     SigningKey
	SigningKeys    map[string]SigningKey
	JWKSetURLs     []string
	KeyFunc        jwt.Keyfunc
	ContextKey     string
	TokenLookup    string
	AuthScheme     string

	// Audience and Issuer are checked when set.
	Audience string
	Issuer   string
	Leeway   time.Duration

	// TokenValidator defaults to a parser built from the key configuration.
	TokenValidator TokenValidator

	// Optional lets requests without a usable token through with no claims.
	Optional bool

	// ContextEnricher defaults to WithClaims.
	ContextEnricher func(c router.Context, claims *Claims)

	ValidationListeners []ValidationListener

	// TemplateUserKey is where template data for the current user is stored.
	TemplateUserKey string
	// UserProvider converts claims into the template user.
	UserProvider func(*Claims) (any, error)
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil {
				return cfg.fail(ctx, err)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				return cfg.fail(ctx, err)
			}

			if !claims.Authenticated() {
				return cfg.fail(ctx, ErrNotAuthenticated)
			}

			for _, listener := range cfg.ValidationListeners {
				if listener == nil {
					continue
				}
				if err := listener(ctx, claims); err != nil {
					return cfg.ErrorHandler(ctx, err)
				}
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.TemplateUserKey != "" {
				ctx.Locals(cfg.TemplateUserKey, cfg.templateUser(claims))
			}

			cfg.ContextEnricher(ctx, claims)

			return cfg.SuccessHandler(ctx)
		}
	}
}

func (cfg Config) fail(ctx router.Context, err error) error {
	if cfg.Optional {
		return ctx.Next()
	}
	return cfg.ErrorHandler(ctx, err)
}

func (cfg Config) templateUser(claims *Claims) any {
	if cfg.UserProvider == nil {
		return claims
	}
	user, err := cfg.UserProvider(claims)
	if err != nil {
		return claims
	}
	return user
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []JWTExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			if errors.Is(err, ErrJWTMissingOrMalformed) {
				return c.Status(router.StatusBadRequest).SendString(ErrJWTMissingOrMalformed.Error())
			}
			return c.Status(router.StatusUnauthorized).SendString("Invalid or expired token")
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = func(c router.Context, claims *Claims) {
			c.SetContext(WithClaims(c.Context(), claims))
		}
	}

	if cfg.TokenValidator == nil {
		if cfg.KeyFunc == nil {
			cfg.KeyFunc = resolveKeyFunc(cfg)
		}
		cfg.TokenValidator = NewValidator(cfg.KeyFunc, ValidatorOptions{
			Audience: cfg.Audience,
			Issuer:   cfg.Issuer,
			Leeway:   cfg.Leeway,
		})
	}

	if cfg.TemplateUserKey == "" {
		cfg.TemplateUserKey = "current_user"
	}

	return cfg
}

func resolveKeyFunc(cfg Config) jwt.Keyfunc {
	if len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 {
		if cfg.SigningKey.Key == nil {
			panic("PORTAL: JWT middleware configuration: one of KeyFunc, JWKSetURLs, SigningKeys, SigningKey or TokenValidator is required.")
		}
		return signingKeyFunc(cfg.SigningKey)
	}

	var givenKeys map[string]keyfunc.GivenKey
	if len(cfg.SigningKeys) > 0 {
		givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
		for kid, key := range cfg.SigningKeys {
			givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
				Algorithm: key.JWTAlg,
			})
		}
	}

	if len(cfg.JWKSetURLs) == 0 {
		return keyfunc.NewGiven(givenKeys).Keyfunc
	}

	kf, err := multiKeyfunc(givenKeys, cfg.JWKSetURLs)
	if err != nil {
		panic("PORTAL: failed to create keyfunc from JWK Set URL: " + err.Error())
	}
	return kf
}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, urls []string) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys)
	m := make(map[string]keyfunc.Options, len(urls))
	for _, url := range urls {
		m[url] = opts
	}
	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWK set: %w", err)
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey) keyfunc.Options {
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to refresh JWK set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, _ := token.Header["alg"].(string)
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected jwt signing method: expected %q got %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

// GetExtractors parses lookups such as "cookie:sb_access,header:Authorization".
func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	authScheme := "Bearer"
	if len(authSchemes) > 0 && strings.TrimSpace(authSchemes[0]) != "" {
		authScheme = strings.TrimSpace(authSchemes[0])
	}

	extractors := make([]JWTExtractor, 0)
	for _, part := range strings.Split(tokenLookup, ",") {
		source, name, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)

		switch strings.TrimSpace(source) {
		case "header":
			extractors = append(extractors, jwtFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(name))
		case "param":
			extractors = append(extractors, jwtFromParam(name))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(name))
		}
	}

	return extractors
}

type JWTExtractor func(c router.Context) (string, error)

func jwtFromHeader(header, authScheme string) JWTExtractor {
	return func(c router.Context) (string, error) {
		value := c.GetString(header, "")
		l := len(authScheme)
		if len(value) > l+1 && strings.EqualFold(value[:l], authScheme) {
			return strings.TrimSpace(value[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func jwtFromQuery(param string) JWTExtractor {
	return func(c router.Context) (string, error) {
		if token := c.Query(param, ""); token != "" {
			return token, nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func jwtFromParam(param string) JWTExtractor {
	return func(c router.Context) (string, error) {
		if token := c.Param(param); token != "" {
			return token, nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func jwtFromCookie(name string) JWTExtractor {
	return func(c router.Context) (string, error) {
		if token := c.Cookies(name); token != "" {
			return token, nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}
