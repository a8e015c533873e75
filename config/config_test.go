package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	c := Defaults()

	assert.Equal(t, ":8080", c.Server.Address)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, 60*time.Second, c.GetResendCooldown())
	assert.Equal(t, "CN", c.GetPhoneRegion())
	assert.Equal(t, "zh", c.GetDefaultLocale())
	assert.Len(t, c.Download.Defaults, 4)
	assert.False(t, c.StorageEnabled())
	require.NoError(t, c.Validate())
}

func TestLoadLayersFileEnvFlags(t *testing.T) {
	file := []byte(`
server:
  address: ":9000"
hosted:
  base_url: "https://project.hosted.example"
  anon_key: "anon"
database:
  driver: postgres
  dsn: "postgres://file"
flow:
  resend_cooldown_seconds: 30
storage:
  upload_expiry: 5m
`)

	cfg, err := LoadWith(LoadOptions{
		Args: []string{"-config", "portal.yaml", "-dsn", "postgres://flag"},
		LookupEnv: envMap(map[string]string{
			"PORTAL_SERVER_ADDRESS":   ":9100",
			"PORTAL_HOSTED_JWKS_URLS": "https://a/jwks, https://b/jwks",
			"PORTAL_DATABASE_DSN":     "postgres://env",
		}),
		ReadFile: func(path string) ([]byte, error) {
			assert.Equal(t, "portal.yaml", path)
			return file, nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Address)
	assert.Equal(t, "https://project.hosted.example", cfg.Hosted.BaseURL)
	assert.Equal(t, "anon", cfg.Hosted.AnonKey)
	assert.Equal(t, []string{"https://a/jwks", "https://b/jwks"}, cfg.Hosted.JWKSURLs)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://flag", cfg.Database.DSN)
	assert.Equal(t, 30*time.Second, cfg.GetResendCooldown())
	assert.Equal(t, 5*time.Minute, cfg.Storage.UploadExpiry)
	assert.Equal(t, "1.0.0", cfg.Download.Defaults["android"].Version)
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	called := false
	_, err := LoadWith(LoadOptions{
		LookupEnv: envMap(map[string]string{"PORTAL_CONFIG": "/etc/portal.yaml"}),
		ReadFile: func(path string) ([]byte, error) {
			called = true
			assert.Equal(t, "/etc/portal.yaml", path)
			return []byte("logging:\n  level: debug\n"), nil
		},
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestLoadKeepsPositionalArgs(t *testing.T) {
	var rest []string
	cfg, err := LoadWith(LoadOptions{
		Args:      []string{"-log-level", "warn", "3f0c2d1e-0000-4000-8000-000000000001"},
		LookupEnv: envMap(nil),
		Rest:      &rest,
	})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, []string{"3f0c2d1e-0000-4000-8000-000000000001"}, rest)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadWith(LoadOptions{
		LookupEnv: envMap(map[string]string{"PORTAL_FLOW_RESEND_COOLDOWN_SECONDS": "soon"}),
	})
	assert.ErrorContains(t, err, "PORTAL_FLOW_RESEND_COOLDOWN_SECONDS")

	_, err = LoadWith(LoadOptions{
		Args:      []string{"-config", "missing.yaml"},
		LookupEnv: envMap(nil),
		ReadFile: func(string) ([]byte, error) {
			return nil, errors.New("no such file")
		},
	})
	assert.ErrorContains(t, err, "missing.yaml")

	_, err = LoadWith(LoadOptions{
		Args:      []string{"-db-driver", "oracle"},
		LookupEnv: envMap(nil),
	})
	assert.ErrorContains(t, err, "oracle")
}

func TestGetters(t *testing.T) {
	c := Defaults()
	c.Flow.ResendCooldownSeconds = 0
	c.Flow.PhoneRegion = "tw"
	c.Storage.Bucket, c.Storage.AccessKey, c.Storage.SecretKey = "covers", "ak", "sk"

	assert.Equal(t, 60*time.Second, c.GetResendCooldown())
	assert.Equal(t, "TW", c.GetPhoneRegion())
	assert.True(t, c.StorageEnabled())
}
