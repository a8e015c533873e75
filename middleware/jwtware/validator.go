package jwtware

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ValidatorOptions tune claim checks.
type ValidatorOptions struct {
	Audience string
	Issuer   string
	Leeway   time.Duration
	// Methods restricts accepted algorithms, any when empty.
	Methods []string
}

// KeyValidator validates tokens against a key function.
type KeyValidator struct {
	keyFunc jwt.Keyfunc
	parser  *jwt.Parser
}

var _ TokenValidator = (*KeyValidator)(nil)

// NewValidator returns a validator that parses tokens into *Claims.
func NewValidator(keyFunc jwt.Keyfunc, opts ValidatorOptions) *KeyValidator {
	parserOpts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(opts.Leeway))
	}
	if len(opts.Methods) > 0 {
		parserOpts = append(parserOpts, jwt.WithValidMethods(opts.Methods))
	}
	return &KeyValidator{
		keyFunc: keyFunc,
		parser:  jwt.NewParser(parserOpts...),
	}
}

// Validate parses and verifies tokenString.
func (v *KeyValidator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc); err != nil {
		return nil, err
	}
	return claims, nil
}
