package jwtware

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigningKeyFuncChecksAlgorithm(t *testing.T) {
	kf := signingKeyFunc(SigningKey{JWTAlg: "HS256", Key: []byte("hosted-jwt-secret")})

	key, err := kf(&jwt.Token{Header: map[string]any{"alg": "HS256"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("hosted-jwt-secret"), key)

	_, err = kf(&jwt.Token{Header: map[string]any{"alg": "none"}})
	assert.ErrorContains(t, err, `expected "HS256" got "none"`)
}

func TestResolveKeyFuncWithoutKeysPanics(t *testing.T) {
	assert.Panics(t, func() { resolveKeyFunc(Config{}) })
}

func TestResolveKeyFuncGivenKeys(t *testing.T) {
	kf := resolveKeyFunc(Config{
		SigningKeys: map[string]SigningKey{
			"current": {JWTAlg: "HS256", Key: []byte("rotated-secret")},
		},
	})

	key, err := kf(&jwt.Token{
		Method: jwt.SigningMethodHS256,
		Header: map[string]any{"alg": "HS256", "kid": "current"},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("rotated-secret"), key)

	_, err = kf(&jwt.Token{
		Method: jwt.SigningMethodHS256,
		Header: map[string]any{"alg": "HS256", "kid": "retired"},
	})
	assert.Error(t, err)
}
