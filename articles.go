package portal

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// ArticleStore is the row store surface used by ArticleService.
type ArticleStore interface {
	Insert(ctx context.Context, article *Article) (*Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]*Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetPublished(ctx context.Context, id uuid.UUID, published bool, at *time.Time) (*Article, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Article, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// ArticleServiceOption customizes an ArticleService.
type ArticleServiceOption func(*ArticleService)

// WithArticleClock injects a custom clock (useful for tests).
func WithArticleClock(clock func() time.Time) ArticleServiceOption {
	return func(s *ArticleService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithArticleActivitySink sets the sink for article writes.
func WithArticleActivitySink(sink ActivitySink) ArticleServiceOption {
	return func(s *ArticleService) {
		s.sink = normalizeActivitySink(sink)
	}
}

// WithArticleLogger overrides the logger.
func WithArticleLogger(logger Logger) ArticleServiceOption {
	return func(s *ArticleService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ArticleService implements the admin CMS operations. Store errors are
// returned unchanged so their text can be shown to the administrator.
type ArticleService struct {
	store  ArticleStore
	sink   ActivitySink
	logger Logger
	now    func() time.Time
}

// NewArticleService returns a service backed by store.
func NewArticleService(store ArticleStore, opts ...ArticleServiceOption) *ArticleService {
	if store == nil {
		panic("portal: NewArticleService requires an ArticleStore")
	}
	s := &ArticleService{
		store:  store,
		sink:   noopActivitySink{},
		logger: defLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create validates in and inserts a new article authored by authorID.
func (s *ArticleService) Create(ctx context.Context, authorID uuid.UUID, in ArticleInput) (*Article, error) {
	n := in.Normalize()
	if fields := n.FieldErrors(); len(fields) > 0 {
		return nil, fields.Err()
	}

	record := &Article{
		ID:            uuid.New(),
		Title:         n.Title,
		Slug:          n.Slug,
		Content:       n.Content,
		Excerpt:       n.Excerpt,
		Category:      n.Category,
		CoverImageURL: n.CoverImageURL,
		AuthorID:      authorID,
		Published:     n.Published,
	}
	if n.Published {
		at := s.now()
		record.PublishedAt = &at
	}

	created, err := s.store.Insert(ctx, record)
	if err != nil {
		s.logger.Error("create article %q: %v", n.Slug, err)
		return nil, err
	}

	recordActivity(ctx, s.sink, s.logger, s.now, ActivityEvent{
		EventType: ActivityArticleCreated,
		UserID:    authorID.String(),
		Metadata:  map[string]any{"article_id": created.ID.String(), "slug": created.Slug},
	})
	return created, nil
}

// List returns articles matching filter, newest first.
func (s *ArticleService) List(ctx context.Context, filter ArticleFilter) ([]*Article, error) {
	return s.store.List(ctx, filter)
}

// Delete removes the article with id.
func (s *ArticleService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrArticleNotFound.WithMetadata(map[string]any{"id": id.String()})
		}
		return err
	}

	recordActivity(ctx, s.sink, s.logger, s.now, ActivityEvent{
		EventType: ActivityArticleDeleted,
		UserID:    actorID.String(),
		Metadata:  map[string]any{"article_id": id.String()},
	})
	return nil
}

// SetPublished publishes or unpublishes the article, stamping published_at.
func (s *ArticleService) SetPublished(ctx context.Context, actorID, id uuid.UUID, published bool) (*Article, error) {
	var at *time.Time
	if published {
		now := s.now()
		at = &now
	}

	updated, err := s.store.SetPublished(ctx, id, published, at)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrArticleNotFound.WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	recordActivity(ctx, s.sink, s.logger, s.now, ActivityEvent{
		EventType: ActivityArticleToggled,
		UserID:    actorID.String(),
		Metadata:  map[string]any{"article_id": id.String(), "published": published},
	})
	return updated, nil
}

// Read returns a published article by slug and counts the view.
func (s *ArticleService) Read(ctx context.Context, slug string) (*Article, error) {
	article, err := s.store.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrArticleNotFound.WithMetadata(map[string]any{"slug": slug})
		}
		return nil, err
	}

	if err := s.store.IncrementViews(ctx, article.ID); err != nil {
		s.logger.Warn("count view for %s: %v", article.Slug, err)
	} else {
		article.Views++
	}
	return article, nil
}

// GroupByCategory buckets articles by category in display order, skipping
// empty categories.
func GroupByCategory(articles []*Article) []ArticleGroup {
	buckets := map[ArticleCategory][]*Article{}
	for _, a := range articles {
		buckets[a.Category] = append(buckets[a.Category], a)
	}
	out := []ArticleGroup{}
	for _, c := range ArticleCategories() {
		if len(buckets[c]) > 0 {
			out = append(out, ArticleGroup{Category: c, Articles: buckets[c]})
		}
	}
	return out
}

// ArticleGroup is a category with its articles.
type ArticleGroup struct {
	Category ArticleCategory
	Articles []*Article
}
