package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"elektora/internal/cache"
	apperrors "elektora/internal/errors"
	"elektora/internal/model"
	"elektora/internal/repository"
)

const (
	articleCacheTTL = 5 * time.Minute

	defaultPage  = 1
	defaultLimit = 10
	// maxLimit caps client-requested page sizes to avoid unbounded scans.
	maxLimit = 100
)

// CreateArticleInput carries the fields for a new article.
type CreateArticleInput struct {
	Title         string
	Content       string
	Excerpt       string
	Category      string
	FeaturedImage string
	Tags          []string
	Featured      bool
	Published     bool
}

// UpdateArticleInput carries a partial update. Nil fields are left untouched.
type UpdateArticleInput struct {
	Title         *string
	Content       *string
	Excerpt       *string
	Category      *string
	FeaturedImage *string
	Tags          []string
	Featured      *bool
	Published     *bool
}

// ArticleFilters describes the optional list predicates and page window.
type ArticleFilters struct {
	Category  string
	Author    string
	Search    string
	Published *bool
	Page      int
	Limit     int
}

// Pagination describes the page window of a list result. Total counts all
// rows matching the predicate before pagination.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// PaginatedArticles bundles a page of articles with its pagination metadata.
type PaginatedArticles struct {
	Articles   []model.Article `json:"articles"`
	Pagination Pagination      `json:"pagination"`
}

// ArticleService handles article operations. It is the sole owner of slug
// derivation and collision rules: the slug unique index is the source of
// truth, and a duplicate-key error at write time is treated as a conflict
// even when the advisory pre-check passed.
type ArticleService interface {
	CreateArticle(ctx context.Context, authorID uuid.UUID, input CreateArticleInput) (*model.Article, error)
	UpdateArticle(ctx context.Context, id uuid.UUID, input UpdateArticleInput) (*model.Article, error)
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	GetArticle(ctx context.Context, id uuid.UUID) (*model.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error)
	ListArticles(ctx context.Context, filters ArticleFilters) (*PaginatedArticles, error)
	RecentArticles(ctx context.Context, limit int) ([]model.Article, error)
	FeaturedArticles(ctx context.Context) ([]model.Article, error)
	Categories(ctx context.Context) ([]string, error)
	Authors(ctx context.Context) ([]string, error)
}

type articleService struct {
	repo  repository.ArticleRepository
	cache *cache.Client
}

// NewArticleService creates a new article service.
func NewArticleService(repo repository.ArticleRepository, cache *cache.Client) ArticleService {
	return &articleService{
		repo:  repo,
		cache: cache,
	}
}

func (s *articleService) idCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("article:id:%s", id.String())
}

func (s *articleService) slugCacheKey(slug string) string {
	return fmt.Sprintf("article:slug:%s", slug)
}

// CreateArticle validates input, derives slug and excerpt, and inserts one row.
func (s *articleService) CreateArticle(ctx context.Context, authorID uuid.UUID, input CreateArticleInput) (*model.Article, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title", apperrors.ErrMissingField)
	}
	if input.Content == "" {
		return nil, fmt.Errorf("%w: content", apperrors.ErrMissingField)
	}
	if input.Category == "" {
		return nil, fmt.Errorf("%w: category", apperrors.ErrMissingField)
	}

	slug := Slugify(input.Title)
	if slug == "" {
		return nil, fmt.Errorf("%w: title has no sluggable characters", apperrors.ErrMissingField)
	}

	// Advisory pre-check for a friendly error; the unique index decides.
	taken, err := s.repo.SlugExists(ctx, slug, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return nil, apperrors.ErrSlugTaken
	}

	excerpt := input.Excerpt
	if excerpt == "" {
		excerpt = MakeExcerpt(input.Content)
	}

	article := &model.Article{
		Title:         input.Title,
		Slug:          slug,
		Excerpt:       excerpt,
		Content:       input.Content,
		FeaturedImage: input.FeaturedImage,
		AuthorID:      authorID,
		Category:      input.Category,
		Tags:          model.NormalizeTags(input.Tags),
		Featured:      input.Featured,
		Published:     input.Published,
	}

	if err := s.repo.Create(ctx, article); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, fmt.Errorf("create article: %w", err)
	}

	return article, nil
}

// UpdateArticle applies a partial update. A changed title recomputes the slug
// and conflict-checks it against every other article; an unchanged title
// never conflicts with itself.
func (s *articleService) UpdateArticle(ctx context.Context, id uuid.UUID, input UpdateArticleInput) (*model.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrArticleNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}

	oldSlug := article.Slug

	if input.Title != nil && *input.Title != article.Title {
		if *input.Title == "" {
			return nil, fmt.Errorf("%w: title", apperrors.ErrMissingField)
		}
		slug := Slugify(*input.Title)
		if slug == "" {
			return nil, fmt.Errorf("%w: title has no sluggable characters", apperrors.ErrMissingField)
		}
		if slug != article.Slug {
			taken, err := s.repo.SlugExists(ctx, slug, article.ID)
			if err != nil {
				return nil, fmt.Errorf("check slug: %w", err)
			}
			if taken {
				return nil, apperrors.ErrSlugTaken
			}
		}
		article.Title = *input.Title
		article.Slug = slug
	}
	if input.Content != nil {
		if *input.Content == "" {
			return nil, fmt.Errorf("%w: content", apperrors.ErrMissingField)
		}
		article.Content = *input.Content
	}
	if input.Excerpt != nil {
		article.Excerpt = *input.Excerpt
	}
	if input.Category != nil {
		if *input.Category == "" {
			return nil, fmt.Errorf("%w: category", apperrors.ErrMissingField)
		}
		article.Category = *input.Category
	}
	if input.FeaturedImage != nil {
		article.FeaturedImage = *input.FeaturedImage
	}
	if input.Tags != nil {
		article.Tags = model.NormalizeTags(input.Tags)
	}
	if input.Featured != nil {
		article.Featured = *input.Featured
	}
	if input.Published != nil {
		article.Published = *input.Published
	}

	if err := s.repo.Update(ctx, article); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrSlugTaken
		}
		return nil, fmt.Errorf("update article: %w", err)
	}

	_ = s.cache.Delete(ctx, s.idCacheKey(article.ID), s.slugCacheKey(oldSlug), s.slugCacheKey(article.Slug))

	return article, nil
}

// DeleteArticle removes an article, reporting not-found when no row matched.
func (s *articleService) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrArticleNotFound
		}
		return fmt.Errorf("find article: %w", err)
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if !removed {
		return apperrors.ErrArticleNotFound
	}

	_ = s.cache.Delete(ctx, s.idCacheKey(id), s.slugCacheKey(article.Slug))
	return nil
}

// GetArticle retrieves an article by ID with caching.
func (s *articleService) GetArticle(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	if data, _ := s.cache.Get(ctx, s.idCacheKey(id)); data != nil {
		var cached model.Article
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrArticleNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}

	if payload, err := json.Marshal(article); err == nil {
		_ = s.cache.Set(ctx, s.idCacheKey(id), payload, articleCacheTTL)
	}

	return article, nil
}

// GetArticleBySlug retrieves an article by its slug with caching.
func (s *articleService) GetArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	if data, _ := s.cache.Get(ctx, s.slugCacheKey(slug)); data != nil {
		var cached model.Article
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	article, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrArticleNotFound
		}
		return nil, fmt.Errorf("find article by slug: %w", err)
	}

	if payload, err := json.Marshal(article); err == nil {
		_ = s.cache.Set(ctx, s.slugCacheKey(slug), payload, articleCacheTTL)
	}

	return article, nil
}

// ListArticles returns a bounded, ordered, paginated result set. All supplied
// filters are AND-ed together; a nil Published admits drafts as well, which
// is what the admin management views rely on.
func (s *articleService) ListArticles(ctx context.Context, filters ArticleFilters) (*PaginatedArticles, error) {
	page := filters.Page
	if page < 1 {
		page = defaultPage
	}
	limit := filters.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	articles, total, err := s.repo.List(ctx, repository.ArticleFilter{
		Category:  filters.Category,
		Author:    filters.Author,
		Search:    filters.Search,
		Published: filters.Published,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return &PaginatedArticles{
		Articles: articles,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// RecentArticles returns the newest published articles, at most limit of them.
func (s *articleService) RecentArticles(ctx context.Context, limit int) ([]model.Article, error) {
	if limit < 1 {
		limit = 5
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	articles, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}
	return articles, nil
}

// FeaturedArticles returns published articles flagged for promotion.
func (s *articleService) FeaturedArticles(ctx context.Context) ([]model.Article, error) {
	articles, err := s.repo.ListFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("featured articles: %w", err)
	}
	return articles, nil
}

// Categories returns the distinct categories across all articles, drafts included.
func (s *articleService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Authors returns the names of users who have written at least one article.
func (s *articleService) Authors(ctx context.Context) ([]string, error) {
	authors, err := s.repo.AuthorNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}
