// Package config loads portal settings from defaults, an optional YAML file,
// PORTAL_* environment variables and command line flags, in that order.
package config

import (
	"strings"
	"time"
)

// Config holds the runtime settings of the portal server and CLI.
type Config struct {
	Server   Server   `yaml:"server"`
	Hosted   Hosted   `yaml:"hosted"`
	Database Database `yaml:"database"`
	Download Download `yaml:"download"`
	Storage  Storage  `yaml:"storage"`
	Flow     Flow     `yaml:"flow"`
	Checkout Checkout `yaml:"checkout"`
	I18n     I18n     `yaml:"i18n"`
	Widget   Widget   `yaml:"widget"`
	Logging  Logging  `yaml:"logging"`
}

type Server struct {
	Address       string        `yaml:"address"`
	PublicURL     string        `yaml:"public_url"`
	CookieSecret  string        `yaml:"cookie_secret"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// Hosted points at the hosted backend auth and data API.
type Hosted struct {
	BaseURL    string   `yaml:"base_url"`
	AnonKey    string   `yaml:"anon_key"`
	ServiceKey string   `yaml:"service_key"`
	JWTSecret  string   `yaml:"jwt_secret"`
	JWKSURLs   []string `yaml:"jwks_urls"`
	Audience   string   `yaml:"audience"`
	Debug      bool     `yaml:"debug"`
}

type Database struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// Release is a hard coded platform default shown when the manifest is unreachable.
type Release struct {
	Version     string `yaml:"version"`
	Size        string `yaml:"size"`
	DownloadURL string `yaml:"download_url"`
}

type Download struct {
	ManifestURL string             `yaml:"manifest_url"`
	Timeout     time.Duration      `yaml:"timeout"`
	Defaults    map[string]Release `yaml:"defaults"`
}

type Storage struct {
	Bucket        string        `yaml:"bucket"`
	Region        string        `yaml:"region"`
	Endpoint      string        `yaml:"endpoint"`
	AccessKey     string        `yaml:"access_key"`
	SecretKey     string        `yaml:"secret_key"`
	PublicBaseURL string        `yaml:"public_base_url"`
	UploadExpiry  time.Duration `yaml:"upload_expiry"`
}

type Flow struct {
	ResendCooldownSeconds int    `yaml:"resend_cooldown_seconds"`
	PhoneRegion           string `yaml:"phone_region"`
}

type Checkout struct {
	PaymentURL string `yaml:"payment_url"`
}

type I18n struct {
	DefaultLocale string `yaml:"default_locale"`
}

type Widget struct {
	Provider    string        `yaml:"provider"`
	WebsiteID   string        `yaml:"website_id"`
	WaitTimeout time.Duration `yaml:"wait_timeout"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns a development configuration.
func Defaults() *Config {
	return &Config{
		Server: Server{
			Address:       ":8080",
			PublicURL:     "http://localhost:8080",
			CookieSecret:  "portal-dev-cookie-secret",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  15 * time.Second,
			ShutdownGrace: 10 * time.Second,
		},
		Hosted: Hosted{
			BaseURL:  "http://localhost:54321",
			Audience: "authenticated",
		},
		Database: Database{
			Driver:  "sqlite",
			DSN:     "file:portal.db?cache=shared",
			Migrate: true,
		},
		Download: Download{
			Timeout: 10 * time.Second,
			Defaults: map[string]Release{
				"android": {Version: "1.0.0", Size: "35 MB", DownloadURL: "/static/downloads/portal.apk"},
				"windows": {Version: "1.0.0", Size: "48 MB", DownloadURL: "/static/downloads/portal-setup.exe"},
				"macos":   {Version: "1.0.0", Size: "52 MB", DownloadURL: "/static/downloads/portal.dmg"},
				"ios":     {Version: "1.0.0", Size: "40 MB", DownloadURL: "https://apps.apple.com/"},
			},
		},
		Storage: Storage{
			Region:       "us-east-1",
			UploadExpiry: 15 * time.Minute,
		},
		Flow: Flow{
			ResendCooldownSeconds: 60,
			PhoneRegion:           "CN",
		},
		I18n: I18n{
			DefaultLocale: "zh",
		},
		Widget: Widget{
			WaitTimeout: 5 * time.Second,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// GetResendCooldown returns the OTP resend cooldown.
func (c *Config) GetResendCooldown() time.Duration {
	if c.Flow.ResendCooldownSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Flow.ResendCooldownSeconds) * time.Second
}

// GetPhoneRegion returns the default region for national phone numbers.
func (c *Config) GetPhoneRegion() string {
	if r := strings.TrimSpace(c.Flow.PhoneRegion); r != "" {
		return strings.ToUpper(r)
	}
	return "CN"
}

func (c *Config) GetDefaultLocale() string {
	return c.I18n.DefaultLocale
}

func (c *Config) GetPaymentURL() string {
	return c.Checkout.PaymentURL
}

func (c *Config) GetManifestURL() string {
	return c.Download.ManifestURL
}

// StorageEnabled reports whether presigned cover uploads can be issued.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Bucket != "" && c.Storage.AccessKey != "" && c.Storage.SecretKey != ""
}
