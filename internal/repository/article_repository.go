package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"elektora/internal/model"
)

// ArticleFilter describes the optional predicates for listing articles.
// All supplied filters are AND-ed together. Published is tri-state: nil
// means both published and unpublished rows are eligible.
type ArticleFilter struct {
	Category  string
	Author    string
	Search    string
	Published *bool
	Offset    int
	Limit     int
}

// ArticleRepository defines article persistence operations.
type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error)
	FindBySlug(ctx context.Context, slug string) (*model.Article, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, filter ArticleFilter) ([]model.Article, int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.Article, error)
	ListFeatured(ctx context.Context) ([]model.Article, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	AuthorNames(ctx context.Context) ([]string, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// Create inserts a new article row.
func (r *articleRepository) Create(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

// Update persists all fields of an existing article row.
func (r *articleRepository) Update(ctx context.Context, article *model.Article) error {
	return r.db.WithContext(ctx).Save(article).Error
}

// Delete removes an article and reports whether a row matched.
func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Article{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindByID finds an article by ID with its author preloaded.
func (r *articleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	var article model.Article
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("id = ?", id).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// FindBySlug finds an article by its slug with its author preloaded.
func (r *articleRepository) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var article model.Article
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// SlugExists reports whether a different article already owns the slug.
// excludeID may be uuid.Nil when checking a brand-new article.
func (r *articleRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.Article{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns the articles matching the filter plus the total match count
// before pagination. Ordering is newest first with id as a deterministic
// tie-break for equal timestamps.
func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]model.Article, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Article{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Author != "" {
		query = query.Where("author_id IN (?)",
			r.db.Model(&model.User{}).Select("id").Where("name = ?", filter.Author))
	}
	if filter.Search != "" {
		// LOWER on both sides keeps the match case-insensitive regardless of
		// the column collation.
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(excerpt) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.Published != nil {
		query = query.Where("published = ?", *filter.Published)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []model.Article
	err := query.Preload("Author").
		Order("created_at DESC, id DESC").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&articles).Error
	return articles, total, err
}

// ListRecent returns the newest published articles.
func (r *articleRepository) ListRecent(ctx context.Context, limit int) ([]model.Article, error) {
	var articles []model.Article
	err := r.db.WithContext(ctx).Preload("Author").
		Where("published = ?", true).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&articles).Error
	return articles, err
}

// ListFeatured returns published articles flagged for promotional placement.
func (r *articleRepository) ListFeatured(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	err := r.db.WithContext(ctx).Preload("Author").
		Where("featured = ? AND published = ?", true, true).
		Order("created_at DESC, id DESC").
		Find(&articles).Error
	return articles, err
}

// DistinctCategories returns the distinct non-empty categories, sorted.
func (r *articleRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&model.Article{}).
		Distinct("category").
		Where("category <> ''").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// AuthorNames returns the distinct names of users with at least one article, sorted.
func (r *articleRepository) AuthorNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Distinct("users.name").
		Joins("JOIN articles ON articles.author_id = users.id AND articles.deleted_at IS NULL").
		Where("users.name <> ''").
		Order("users.name ASC").
		Pluck("users.name", &names).Error
	return names, err
}
