package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "PORTAL_"

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	Args      []string
	LookupEnv func(string) (string, bool)
	ReadFile  func(string) ([]byte, error)
	// Rest receives the arguments left after the flags.
	Rest *[]string
}

// Load builds a Config from os.Args and the process environment.
func Load() (*Config, error) {
	return LoadWith(LoadOptions{Args: os.Args[1:]})
}

// LoadWith builds a Config from the given sources.
func LoadWith(opts LoadOptions) (*Config, error) {
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}

	cfg := Defaults()

	fs, flags := newFlagSet()
	if err := fs.Parse(opts.Args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if opts.Rest != nil {
		*opts.Rest = fs.Args()
	}

	path := flags.config
	if path == "" {
		path, _ = opts.LookupEnv(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := loadYAML(cfg, path, opts.ReadFile); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, opts.LookupEnv); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if apply, ok := flags.setters[f.Name]; ok {
			apply(cfg)
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would break startup.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Address) == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if strings.TrimSpace(c.Hosted.BaseURL) == "" {
		errs = append(errs, errors.New("hosted.base_url is required"))
	}
	if len(c.Server.CookieSecret) < 16 {
		errs = append(errs, errors.New("server.cookie_secret must be at least 16 bytes"))
	}
	return errors.Join(errs...)
}

func loadYAML(cfg *Config, path string, readFile func(string) ([]byte, error)) error {
	raw, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

type flagValues struct {
	config  string
	setters map[string]func(*Config)
}

func newFlagSet() (*flag.FlagSet, *flagValues) {
	fs := flag.NewFlagSet("portal", flag.ContinueOnError)
	v := &flagValues{setters: map[string]func(*Config){}}

	fs.StringVar(&v.config, "config", "", "path to a YAML config file")

	addr := fs.String("addr", "", "address to listen on")
	v.setters["addr"] = func(c *Config) { c.Server.Address = *addr }

	driver := fs.String("db-driver", "", "database driver (sqlite or postgres)")
	v.setters["db-driver"] = func(c *Config) { c.Database.Driver = *driver }

	dsn := fs.String("dsn", "", "database DSN")
	v.setters["dsn"] = func(c *Config) { c.Database.DSN = *dsn }

	hostedURL := fs.String("hosted-url", "", "hosted backend base URL")
	v.setters["hosted-url"] = func(c *Config) { c.Hosted.BaseURL = *hostedURL }

	level := fs.String("log-level", "", "log level (debug, info, warn, error)")
	v.setters["log-level"] = func(c *Config) { c.Logging.Level = *level }

	debug := fs.Bool("debug", false, "dump hosted API traffic")
	v.setters["debug"] = func(c *Config) { c.Hosted.Debug = *debug }

	return fs, v
}

type envBinding struct {
	name  string
	apply func(c *Config, value string) error
}

func envString(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, value string) error {
		*dst(c) = value
		return nil
	}
}

func envBool(dst func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

func envInt(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func envDuration(dst func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*dst(c) = d
		return nil
	}
}

var envBindings = []envBinding{
	{"SERVER_ADDRESS", envString(func(c *Config) *string { return &c.Server.Address })},
	{"SERVER_PUBLIC_URL", envString(func(c *Config) *string { return &c.Server.PublicURL })},
	{"SERVER_COOKIE_SECRET", envString(func(c *Config) *string { return &c.Server.CookieSecret })},
	{"SERVER_COOKIE_SECURE", envBool(func(c *Config) *bool { return &c.Server.CookieSecure })},
	{"HOSTED_BASE_URL", envString(func(c *Config) *string { return &c.Hosted.BaseURL })},
	{"HOSTED_ANON_KEY", envString(func(c *Config) *string { return &c.Hosted.AnonKey })},
	{"HOSTED_SERVICE_KEY", envString(func(c *Config) *string { return &c.Hosted.ServiceKey })},
	{"HOSTED_JWT_SECRET", envString(func(c *Config) *string { return &c.Hosted.JWTSecret })},
	{"HOSTED_JWKS_URLS", func(c *Config, value string) error {
		c.Hosted.JWKSURLs = splitList(value)
		return nil
	}},
	{"HOSTED_DEBUG", envBool(func(c *Config) *bool { return &c.Hosted.Debug })},
	{"DATABASE_DRIVER", envString(func(c *Config) *string { return &c.Database.Driver })},
	{"DATABASE_DSN", envString(func(c *Config) *string { return &c.Database.DSN })},
	{"DATABASE_MIGRATE", envBool(func(c *Config) *bool { return &c.Database.Migrate })},
	{"DOWNLOAD_MANIFEST_URL", envString(func(c *Config) *string { return &c.Download.ManifestURL })},
	{"STORAGE_BUCKET", envString(func(c *Config) *string { return &c.Storage.Bucket })},
	{"STORAGE_REGION", envString(func(c *Config) *string { return &c.Storage.Region })},
	{"STORAGE_ENDPOINT", envString(func(c *Config) *string { return &c.Storage.Endpoint })},
	{"STORAGE_ACCESS_KEY", envString(func(c *Config) *string { return &c.Storage.AccessKey })},
	{"STORAGE_SECRET_KEY", envString(func(c *Config) *string { return &c.Storage.SecretKey })},
	{"STORAGE_PUBLIC_BASE_URL", envString(func(c *Config) *string { return &c.Storage.PublicBaseURL })},
	{"STORAGE_UPLOAD_EXPIRY", envDuration(func(c *Config) *time.Duration { return &c.Storage.UploadExpiry })},
	{"FLOW_RESEND_COOLDOWN_SECONDS", envInt(func(c *Config) *int { return &c.Flow.ResendCooldownSeconds })},
	{"FLOW_PHONE_REGION", envString(func(c *Config) *string { return &c.Flow.PhoneRegion })},
	{"CHECKOUT_PAYMENT_URL", envString(func(c *Config) *string { return &c.Checkout.PaymentURL })},
	{"I18N_DEFAULT_LOCALE", envString(func(c *Config) *string { return &c.I18n.DefaultLocale })},
	{"WIDGET_PROVIDER", envString(func(c *Config) *string { return &c.Widget.Provider })},
	{"WIDGET_WEBSITE_ID", envString(func(c *Config) *string { return &c.Widget.WebsiteID })},
	{"LOG_LEVEL", envString(func(c *Config) *string { return &c.Logging.Level })},
	{"LOG_FORMAT", envString(func(c *Config) *string { return &c.Logging.Format })},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		value, ok := lookup(envPrefix + b.name)
		if !ok {
			continue
		}
		if err := b.apply(cfg, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("env %s%s: %w", envPrefix, b.name, err)
		}
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
