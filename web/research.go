package web

import (
	"strings"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-router"
)

// ResearchIndex lists published articles grouped by category.
func (c *Controller) ResearchIndex(ctx router.Context) error {
	articles, err := c.articles.List(ctx.Context(), portal.ArticlesPublished)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	groups := make([]map[string]any, 0)
	for _, g := range portal.GroupByCategory(articles) {
		groups = append(groups, map[string]any{
			"category": string(g.Category),
			"articles": g.Articles,
		})
	}

	return c.render(ctx, c.Views.Research, router.ViewContext{
		"groups": groups,
		"empty":  len(articles) == 0,
	})
}

// ResearchShow renders one published article and counts the view.
func (c *Controller) ResearchShow(ctx router.Context) error {
	slug := strings.TrimSpace(ctx.Param("slug", ""))
	if slug == "" {
		return c.NotFound(ctx)
	}

	article, err := c.articles.Read(ctx.Context(), slug)
	if err != nil {
		if portal.HasTextCode(err, portal.TextCodeArticleNotFound) {
			return c.NotFound(ctx)
		}
		return c.ErrorHandler(ctx, err)
	}

	return c.render(ctx, c.Views.Article, router.ViewContext{
		"article": article,
	})
}
