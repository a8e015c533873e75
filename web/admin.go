package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/i18n"
	"github.com/goliatone/go-portal/media"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"
)

// AdminIndex lists articles for the selected filter.
func (c *Controller) AdminIndex(ctx router.Context) error {
	filter := portal.ParseArticleFilter(ctx.Query("filter", string(portal.ArticlesAll)))
	data, err := c.adminData(ctx, filter)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}
	return c.render(ctx, c.Views.Admin, data)
}

func (c *Controller) adminData(ctx router.Context, filter portal.ArticleFilter) (router.ViewContext, error) {
	articles, err := c.articles.List(ctx.Context(), filter)
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(portal.ArticleCategories()))
	for _, cat := range portal.ArticleCategories() {
		categories = append(categories, string(cat))
	}

	return router.ViewContext{
		"articles":       articles,
		"filter":         string(filter),
		"filters":        []string{string(portal.ArticlesAll), string(portal.ArticlesPublished), string(portal.ArticlesDrafts)},
		"categories":     categories,
		"covers_enabled": c.covers != nil && c.covers.Enabled(),
		"record":         portal.ArticleInput{},
		"errors":         map[string]string{},
	}, nil
}

// AdminCreate validates and stores a new article. Store errors are shown to
// the administrator as they are.
func (c *Controller) AdminCreate(ctx router.Context) error {
	identity, _ := SessionFrom(ctx).Identity()

	payload := new(portal.ArticleInput)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	if _, err := c.articles.Create(ctx.Context(), identity.ID, *payload); err != nil {
		fields := portal.FieldErrorsFrom(err)
		if len(fields) == 0 {
			fields = portal.FieldErrors{"form": err.Error()}
		}
		data, derr := c.adminData(ctx, portal.ArticlesAll)
		if derr != nil {
			return c.ErrorHandler(ctx, derr)
		}
		data["record"] = payload.Normalize()
		data["errors"] = fields
		return c.render(ctx, c.Views.Admin, data)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": c.translator(ctx).T(i18n.AdminSaved),
	}).Redirect(c.Routes.Admin, router.StatusSeeOther)
}

// PublishForm carries the desired published flag.
type PublishForm struct {
	Published bool   `form:"published" json:"published"`
	Filter    string `form:"filter" json:"filter"`
}

// AdminTogglePublished publishes or unpublishes an article.
func (c *Controller) AdminTogglePublished(ctx router.Context) error {
	identity, _ := SessionFrom(ctx).Identity()

	id, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return c.NotFound(ctx)
	}

	payload := new(PublishForm)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}

	if _, err := c.articles.SetPublished(ctx.Context(), identity.ID, id, payload.Published); err != nil {
		if portal.HasTextCode(err, portal.TextCodeArticleNotFound) {
			return c.NotFound(ctx)
		}
		return c.adminFailure(ctx, err)
	}
	return ctx.Redirect(c.adminURL(payload.Filter), router.StatusSeeOther)
}

// AdminDelete removes an article.
func (c *Controller) AdminDelete(ctx router.Context) error {
	identity, _ := SessionFrom(ctx).Identity()

	id, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return c.NotFound(ctx)
	}

	if err := c.articles.Delete(ctx.Context(), identity.ID, id); err != nil {
		if portal.HasTextCode(err, portal.TextCodeArticleNotFound) {
			return c.NotFound(ctx)
		}
		return c.adminFailure(ctx, err)
	}
	return ctx.Redirect(c.Routes.Admin, router.StatusSeeOther)
}

// CoverRequest asks for a cover upload URL.
type CoverRequest struct {
	Slug        string `form:"slug" json:"slug"`
	ContentType string `form:"content_type" json:"content_type"`
}

// AdminCoverUpload returns a presigned upload for an article cover.
func (c *Controller) AdminCoverUpload(ctx router.Context) error {
	if c.covers == nil || !c.covers.Enabled() {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]any{"error": media.ErrStorageDisabled.Error()})
	}

	payload := new(CoverRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{"error": err.Error()})
	}
	slug := strings.TrimSpace(payload.Slug)
	if slug == "" {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error":  portal.ErrValidationFailed.Error(),
			"fields": map[string]string{"slug": portal.ArticleInput{}.FieldErrors()["slug"]},
		})
	}

	upload, err := c.covers.PresignCover(ctx.Context(), slug, payload.ContentType)
	switch {
	case err == nil:
		return ctx.JSON(router.StatusOK, upload)
	case errors.Is(err, media.ErrUnsupportedMimeType):
		return ctx.JSON(router.StatusBadRequest, map[string]any{"error": err.Error()})
	default:
		c.Logger.Error("presign cover for %s: %v", slug, err)
		return ctx.JSON(router.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}

func (c *Controller) adminFailure(ctx router.Context, err error) error {
	c.Logger.Error("admin article write: %v", err)
	return flash.WithError(ctx, router.ViewContext{
		"error_message":  err.Error(),
		"system_message": err.Error(),
	}).Redirect(c.Routes.Admin, router.StatusSeeOther)
}

func (c *Controller) adminURL(filter string) string {
	f := portal.ParseArticleFilter(filter)
	if f == portal.ArticlesAll {
		return c.Routes.Admin
	}
	return c.Routes.Admin + "?filter=" + string(f)
}
