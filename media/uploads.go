// Package media issues presigned upload URLs for article cover images.
package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const defaultExpiry = 15 * time.Minute

var (
	ErrStorageDisabled     = errors.New("media: object storage is not configured")
	ErrUnsupportedMimeType = errors.New("media: unsupported image type")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Settings configures the bucket.
type Settings struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Expiry        time.Duration
}

// Presigner is the subset of the s3 presign client in use.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Upload is a URL the browser can PUT the image to and where it will be served.
type Upload struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"uploadUrl"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	PublicURL string            `json:"publicUrl"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// Covers issues cover image uploads.
type Covers struct {
	settings  Settings
	presigner Presigner
	now       func() time.Time
}

// Option customizes Covers.
type Option func(*Covers)

// WithPresigner replaces the s3 presign client.
func WithPresigner(p Presigner) Option {
	return func(c *Covers) {
		c.presigner = p
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(c *Covers) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCovers builds the service. Without a bucket every call returns
// ErrStorageDisabled.
func NewCovers(ctx context.Context, settings Settings, opts ...Option) (*Covers, error) {
	if settings.Expiry <= 0 {
		settings.Expiry = defaultExpiry
	}
	c := &Covers{settings: settings, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.presigner == nil && settings.Bucket != "" {
		p, err := newS3Presigner(ctx, settings)
		if err != nil {
			return nil, err
		}
		c.presigner = p
	}
	return c, nil
}

func newS3Presigner(ctx context.Context, settings Settings) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKey,
			settings.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s3.NewPresignClient(client), nil
}

// Enabled reports whether uploads can be issued.
func (c *Covers) Enabled() bool {
	return c != nil && c.presigner != nil && c.settings.Bucket != ""
}

// CoverKey builds the object key for a new cover.
func CoverKey(now time.Time, slug, ext string) string {
	slug = strings.Trim(strings.ToLower(strings.TrimSpace(slug)), "/")
	if slug == "" {
		slug = "untitled"
	}
	return path.Join("covers", now.UTC().Format("2006/01"), fmt.Sprintf("%s-%s%s", slug, uuid.NewString()[:8], ext))
}

// PresignCover returns a PUT url for an image of contentType.
func (c *Covers) PresignCover(ctx context.Context, slug, contentType string) (*Upload, error) {
	if !c.Enabled() {
		return nil, ErrStorageDisabled
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMimeType, contentType)
	}

	now := c.now()
	key := CoverKey(now, slug, ext)
	bucket := c.settings.Bucket

	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(c.settings.Expiry))
	if err != nil {
		return nil, fmt.Errorf("media: presign %s: %w", key, err)
	}

	headers := map[string]string{"Content-Type": contentType}
	return &Upload{
		Key:       key,
		UploadURL: req.URL,
		Method:    req.Method,
		Headers:   headers,
		PublicURL: c.PublicURL(key),
		ExpiresAt: now.Add(c.settings.Expiry),
	}, nil
}

// PublicURL is where an uploaded key is served from.
func (c *Covers) PublicURL(key string) string {
	base := strings.TrimRight(c.settings.PublicBaseURL, "/")
	if base == "" {
		endpoint := strings.TrimRight(c.settings.Endpoint, "/")
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.settings.Bucket, c.settings.Region)
			return endpoint + "/" + key
		}
		base = endpoint + "/" + c.settings.Bucket
	}
	return base + "/" + key
}
