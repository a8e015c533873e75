package portal

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Channel is the OTP delivery channel understood by the hosted service.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// ContactKind names the contact type an account is bound to.
type ContactKind string

const (
	ContactPhone ContactKind = "phone"
	ContactEmail ContactKind = "email"
)

// Channel returns the OTP channel used to reach the contact.
func (k ContactKind) Channel() Channel {
	if k == ContactPhone {
		return ChannelSMS
	}
	return ChannelEmail
}

// Valid reports whether k is a known contact kind.
func (k ContactKind) Valid() bool {
	return k == ContactPhone || k == ContactEmail
}

// Identity is the authenticated principal as known to the hosted service.
// Both email and phone may be set, only one is used to sign in at a time.
type Identity struct {
	ID       uuid.UUID      `json:"id"`
	Email    string         `json:"email,omitempty"`
	Phone    string         `json:"phone,omitempty"`
	Role     string         `json:"role,omitempty"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// Username returns the username captured at registration, if any.
func (i Identity) Username() string {
	if i.Metadata == nil {
		return ""
	}
	if v, ok := i.Metadata["username"].(string); ok {
		return v
	}
	return ""
}

// DisplayName picks the best human label for the identity.
func (i Identity) DisplayName() string {
	if name := i.Username(); name != "" {
		return name
	}
	if i.Email != "" {
		return i.Email
	}
	return i.Phone
}

// Session is a hosted session: tokens plus the identity they belong to.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"user"`
}

// Expired reports whether the access token is past its expiration at now.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// SessionEventKind enumerates hosted session changes.
type SessionEventKind string

const (
	SessionInitial         SessionEventKind = "INITIAL_SESSION"
	SessionSignedIn        SessionEventKind = "SIGNED_IN"
	SessionSignedOut       SessionEventKind = "SIGNED_OUT"
	SessionTokenRefreshed  SessionEventKind = "TOKEN_REFRESHED"
	SessionIdentityUpdated SessionEventKind = "USER_UPDATED"
)

// SessionEvent is delivered to OnSessionChange subscribers.
type SessionEvent struct {
	Kind    SessionEventKind
	Session *Session
}

// OTPRequest asks the hosted service to deliver a one time code.
type OTPRequest struct {
	Destination string
	Kind        ContactKind
	// CreateUser allows the service to create the account on verification.
	CreateUser bool
	Metadata   map[string]any
}

// IdentityPatch carries optional identity changes.
type IdentityPatch struct {
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p IdentityPatch) Empty() bool {
	return p.Password == "" && p.Email == "" && p.Phone == ""
}

// ArticleCategory classifies research articles.
type ArticleCategory string

const (
	CategoryTechBlog            ArticleCategory = "tech_blog"
	CategoryWhitepaper          ArticleCategory = "whitepaper"
	CategoryCaseStudy           ArticleCategory = "case_study"
	CategoryNetworkOptimization ArticleCategory = "network_optimization"
	CategorySecurityResearch    ArticleCategory = "security_research"
)

// ArticleCategories lists categories in display order.
func ArticleCategories() []ArticleCategory {
	return []ArticleCategory{
		CategoryTechBlog,
		CategoryWhitepaper,
		CategoryCaseStudy,
		CategoryNetworkOptimization,
		CategorySecurityResearch,
	}
}

// Valid reports whether c is a known category.
func (c ArticleCategory) Valid() bool {
	for _, known := range ArticleCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Article is a research/CMS article row.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:art"`
	ID            uuid.UUID       `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Title         string          `bun:"title,notnull" json:"title"`
	Slug          string          `bun:"slug,notnull,unique" json:"slug"`
	Content       string          `bun:"content,notnull" json:"content"`
	Excerpt       string          `bun:"excerpt,nullzero" json:"excerpt,omitempty"`
	Category      ArticleCategory `bun:"category,notnull" json:"category"`
	CoverImageURL string          `bun:"cover_image_url,nullzero" json:"cover_image_url,omitempty"`
	AuthorID      uuid.UUID       `bun:"author_id,type:uuid,nullzero" json:"author_id"`
	Published     bool            `bun:"published,notnull" json:"published"`
	PublishedAt   *time.Time      `bun:"published_at,nullzero" json:"published_at,omitempty"`
	Views         int             `bun:"views,notnull" json:"views"`
	CreatedAt     *time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ArticleFilter selects which articles a listing returns.
type ArticleFilter string

const (
	ArticlesAll       ArticleFilter = "all"
	ArticlesPublished ArticleFilter = "published"
	ArticlesDrafts    ArticleFilter = "drafts"
)

// ParseArticleFilter maps a query value to a filter, defaulting to all.
func ParseArticleFilter(s string) ArticleFilter {
	switch ArticleFilter(strings.ToLower(strings.TrimSpace(s))) {
	case ArticlesPublished:
		return ArticlesPublished
	case ArticlesDrafts:
		return ArticlesDrafts
	default:
		return ArticlesAll
	}
}

// Profile is the per identity row kept next to the hosted user.
type Profile struct {
	bun.BaseModel         `bun:"table:profiles,alias:prf"`
	ID                    uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Username              string     `bun:"username,nullzero" json:"username,omitempty"`
	AvatarURL             string     `bun:"avatar_url,nullzero" json:"avatar_url,omitempty"`
	Bio                   string     `bun:"bio,nullzero" json:"bio,omitempty"`
	Phone                 string     `bun:"phone,nullzero" json:"phone,omitempty"`
	SubscriptionExpiresAt *time.Time `bun:"subscription_expires_at,nullzero" json:"subscription_expires_at,omitempty"`
	CreatedAt             *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt             *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// SubscriptionActive reports whether the subscription runs past now.
func (p *Profile) SubscriptionActive(now time.Time) bool {
	if p == nil || p.SubscriptionExpiresAt == nil {
		return false
	}
	return p.SubscriptionExpiresAt.After(now)
}

// PurchaseStatus is the payment state of a purchase.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
	PurchaseRefunded  PurchaseStatus = "refunded"
)

// Purchase is a row written by the payment backend.
type Purchase struct {
	bun.BaseModel      `bun:"table:purchases,alias:pur"`
	ID                 uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id"`
	UserID             uuid.UUID      `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Amount             float64        `bun:"amount,notnull" json:"amount"`
	ProductName        string         `bun:"product_name,notnull" json:"product_name"`
	ProductDescription string         `bun:"product_description,nullzero" json:"product_description,omitempty"`
	Status             PurchaseStatus `bun:"status,notnull" json:"status"`
	CreatedAt          *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// UserRole grants a role to a hosted identity.
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:url"`
	UserID        uuid.UUID  `bun:"user_id,pk,type:uuid" json:"user_id"`
	Role          Role       `bun:"role,pk" json:"role"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
