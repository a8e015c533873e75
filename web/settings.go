package web

import (
	"time"

	"github.com/goliatone/go-portal/functions"
	"github.com/goliatone/go-portal/i18n"
)

const (
	defaultAttemptTTL    = 15 * time.Minute
	defaultWidgetTimeout = 10 * time.Second
	defaultRefreshTTL    = 30 * 24 * time.Hour
)

// Settings are the values the controller reads from configuration.
type Settings struct {
	// CookieSecret signs the auth attempt cookie. At least 16 bytes.
	CookieSecret []byte
	CookieSecure bool
	// PublicURL is used to build absolute links such as the password
	// recovery redirect.
	PublicURL     string
	PaymentURL    string
	DefaultLocale i18n.Locale
	ManifestURL   string
	// Downloads are the per platform fallbacks shown when the manifest
	// cannot be fetched.
	Downloads      functions.Manifest
	AttemptTTL     time.Duration
	RefreshTTL     time.Duration
	WidgetProvider string
	WidgetSiteID   string
	WidgetTimeout  time.Duration
	Debug          bool
}

func (s Settings) withDefaults() Settings {
	if s.AttemptTTL <= 0 {
		s.AttemptTTL = defaultAttemptTTL
	}
	if s.RefreshTTL <= 0 {
		s.RefreshTTL = defaultRefreshTTL
	}
	if s.WidgetTimeout <= 0 {
		s.WidgetTimeout = defaultWidgetTimeout
	}
	if s.DefaultLocale == "" {
		s.DefaultLocale = i18n.DefaultLocale
	}
	if s.Downloads == nil {
		s.Downloads = functions.Manifest{}
	}
	return s
}
