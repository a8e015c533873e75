package functions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-router"
)

const (
	msgManifestNotFound = "version.json not found"
	msgInvalidBody      = "invalid request body"
)

// RouteRegistrar captures the router methods used by the handlers.
type RouteRegistrar interface {
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// Routes holds the function paths.
type Routes struct {
	APKInfo    string
	UserExists string
}

// Option customizes Handlers.
type Option func(*Handlers)

// WithRoutes overrides the default paths.
func WithRoutes(routes Routes) Option {
	return func(h *Handlers) {
		if routes.APKInfo != "" {
			h.Routes.APKInfo = routes.APKInfo
		}
		if routes.UserExists != "" {
			h.Routes.UserExists = routes.UserExists
		}
	}
}

// WithFetcher sets the manifest fetcher.
func WithFetcher(f *Fetcher) Option {
	return func(h *Handlers) {
		if f != nil {
			h.fetcher = f
		}
	}
}

// WithChecker sets the account existence checker.
func WithChecker(c portal.ExistenceChecker) Option {
	return func(h *Handlers) {
		h.checker = c
	}
}

// WithLogger overrides the logger.
func WithLogger(l portal.Logger) Option {
	return func(h *Handlers) {
		if l != nil {
			h.logger = l
		}
	}
}

// Handlers serves the get-apk-info and check-user-exists functions.
type Handlers struct {
	Routes  Routes
	fetcher *Fetcher
	checker portal.ExistenceChecker
	logger  portal.Logger
}

// New returns handlers. A checker is required.
func New(opts ...Option) *Handlers {
	h := &Handlers{
		Routes: Routes{
			APKInfo:    "/functions/v1/get-apk-info",
			UserExists: "/functions/v1/check-user-exists",
		},
		fetcher: NewFetcher(nil),
		logger:  portal.DefaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.checker == nil {
		panic("functions: New requires an ExistenceChecker")
	}
	return h
}

// Register mounts both functions.
func (h *Handlers) Register(r RouteRegistrar) {
	r.Post(h.Routes.APKInfo, h.GetAPKInfo)
	r.Post(h.Routes.UserExists, h.CheckUserExists)
}

// APKInfoRequest is the get-apk-info payload.
type APKInfoRequest struct {
	VersionJSONURL string `json:"versionJsonUrl" form:"versionJsonUrl"`
}

func (r APKInfoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.VersionJSONURL, validation.Required, is.URL),
	)
}

// GetAPKInfo fetches the manifest and relays its JSON body.
func (h *Handlers) GetAPKInfo(ctx router.Context) error {
	payload := new(APKInfoRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{"error": msgInvalidBody})
	}
	payload.VersionJSONURL = strings.TrimSpace(payload.VersionJSONURL)
	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":  msgInvalidBody,
			"fields": portal.FormatValidationErrorToMap(err),
		})
	}

	body, err := h.fetcher.Fetch(ctx.Context(), payload.VersionJSONURL)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			h.logger.Info("manifest %s answered %d", payload.VersionJSONURL, statusErr.Status)
			return ctx.JSON(http.StatusNotFound, map[string]any{
				"error":  msgManifestNotFound,
				"status": statusErr.Status,
			})
		}
		h.logger.Error("fetch manifest %s: %v", payload.VersionJSONURL, err)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{"error": err.Error()})
	}

	if !json.Valid(body) {
		h.logger.Error("manifest %s is not valid JSON", payload.VersionJSONURL)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{"error": "version.json is not valid JSON"})
	}
	return ctx.JSON(router.StatusOK, json.RawMessage(body))
}

// UserExistsRequest is the check-user-exists payload.
type UserExistsRequest struct {
	Type  portal.ContactKind `json:"type" form:"type"`
	Value string             `json:"value" form:"value"`
}

func (r UserExistsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(portal.ContactPhone, portal.ContactEmail)),
		validation.Field(&r.Value, validation.Required),
	)
}

// CheckUserExists reports whether an account is bound to the phone or email.
func (h *Handlers) CheckUserExists(ctx router.Context) error {
	payload := new(UserExistsRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{"error": msgInvalidBody})
	}
	payload.Type = portal.ContactKind(strings.ToLower(strings.TrimSpace(string(payload.Type))))
	payload.Value = strings.TrimSpace(payload.Value)

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":  msgInvalidBody,
			"fields": portal.FormatValidationErrorToMap(err),
		})
	}
	if err := portal.ValidateContact(payload.Type, payload.Value); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": msgInvalidBody,
			"fields": map[string]string{
				"value": err.Error(),
			},
		})
	}

	exists, err := h.checker.Exists(ctx.Context(), payload.Type, payload.Value)
	if err != nil {
		h.logger.Error("check user exists (%s): %v", payload.Type, err)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	return ctx.JSON(router.StatusOK, map[string]any{"exists": exists})
}
