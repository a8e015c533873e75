package portal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Articles is the bun backed article store.
type Articles interface {
	ArticleStore
	InsertTx(ctx context.Context, tx bun.IDB, article *Article) (*Article, error)
}

type articles struct {
	repository.Repository[*Article]
	db *bun.DB
}

var _ Articles = (*articles)(nil)

func NewArticlesRepository(db *bun.DB) Articles {
	repo := repository.NewRepository[*Article](db, repository.ModelHandlers[*Article]{
		NewRecord: func() *Article { return &Article{} },
		GetID: func(a *Article) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Article, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "slug"
		},
	})
	return &articles{Repository: repo, db: db}
}

func (r *articles) Insert(ctx context.Context, article *Article) (*Article, error) {
	return r.InsertTx(ctx, r.db, article)
}

func (r *articles) InsertTx(ctx context.Context, tx bun.IDB, article *Article) (*Article, error) {
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	now := time.Now()
	if article.CreatedAt == nil {
		article.CreatedAt = &now
	}
	article.UpdatedAt = &now
	return r.CreateTx(ctx, tx, article)
}

func (r *articles) List(ctx context.Context, filter ArticleFilter) ([]*Article, error) {
	records := []*Article{}
	q := r.db.NewSelect().Model(&records).Order("created_at DESC", "id ASC")

	switch filter {
	case ArticlesPublished:
		q = q.Where("?TableAlias.published = ?", true)
	case ArticlesDrafts:
		q = q.Where("?TableAlias.published = ?", false)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *articles) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Article)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res, "articles", id.String())
}

func (r *articles) SetPublished(ctx context.Context, id uuid.UUID, published bool, at *time.Time) (*Article, error) {
	res, err := r.db.NewUpdate().
		Model((*Article)(nil)).
		Set("published = ?", published).
		Set("published_at = ?", at).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res, "articles", id.String()); err != nil {
		return nil, err
	}

	record := &Article{}
	if err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *articles) GetPublishedBySlug(ctx context.Context, slug string) (*Article, error) {
	record := &Article{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.slug = ?", slug).
		Where("?TableAlias.published = ?", true).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
			"table": "articles",
			"slug":  slug,
		})
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *articles) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*Article)(nil)).
		Set("views = views + 1").
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func expectAffected(res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{
			"table": table,
			"id":    id,
		})
	}
	return nil
}
