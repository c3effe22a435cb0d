package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "elektora/internal/errors"
	"elektora/internal/model"
	"elektora/internal/repository"
)

// MockArticleRepository is a mock implementation of ArticleRepository.
type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Create(ctx context.Context, article *model.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) Update(ctx context.Context, article *model.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleRepository) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleRepository) List(ctx context.Context, filter repository.ArticleFilter) ([]model.Article, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.Article), args.Get(1).(int64), args.Error(2)
}

func (m *MockArticleRepository) ListRecent(ctx context.Context, limit int) ([]model.Article, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *MockArticleRepository) ListFeatured(ctx context.Context) ([]model.Article, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *MockArticleRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockArticleRepository) AuthorNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestArticleService_CreateArticle(t *testing.T) {
	authorID := uuid.New()

	tests := []struct {
		name          string
		input         CreateArticleInput
		setupMock     func(*MockArticleRepository)
		expectedError error
		check         func(*testing.T, *model.Article)
	}{
		{
			name: "successful creation derives slug and excerpt",
			input: CreateArticleInput{
				Title:    "Hello, World! 2024",
				Content:  "Some article content that is short enough to survive as its own excerpt.",
				Category: "Tech",
				Tags:     []string{" go ", "", "web"},
			},
			setupMock: func(m *MockArticleRepository) {
				m.On("SlugExists", mock.Anything, "hello-world-2024", uuid.Nil).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Article")).Return(nil)
			},
			check: func(t *testing.T, article *model.Article) {
				assert.Equal(t, "hello-world-2024", article.Slug)
				assert.Equal(t, "Some article content that is short enough to survive as its own excerpt.", article.Excerpt)
				assert.Equal(t, model.TagList{"go", "web"}, article.Tags)
				assert.Equal(t, authorID, article.AuthorID)
			},
		},
		{
			name: "supplied excerpt is kept",
			input: CreateArticleInput{
				Title:    "Another Title",
				Content:  "content body",
				Excerpt:  "hand-written excerpt",
				Category: "Tech",
			},
			setupMock: func(m *MockArticleRepository) {
				m.On("SlugExists", mock.Anything, "another-title", uuid.Nil).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Article")).Return(nil)
			},
			check: func(t *testing.T, article *model.Article) {
				assert.Equal(t, "hand-written excerpt", article.Excerpt)
			},
		},
		{
			name: "missing title",
			input: CreateArticleInput{
				Content:  "content",
				Category: "Tech",
			},
			setupMock:     func(m *MockArticleRepository) {},
			expectedError: apperrors.ErrMissingField,
		},
		{
			name: "missing content",
			input: CreateArticleInput{
				Title:    "A Title",
				Category: "Tech",
			},
			setupMock:     func(m *MockArticleRepository) {},
			expectedError: apperrors.ErrMissingField,
		},
		{
			name: "missing category",
			input: CreateArticleInput{
				Title:   "A Title",
				Content: "content",
			},
			setupMock:     func(m *MockArticleRepository) {},
			expectedError: apperrors.ErrMissingField,
		},
		{
			name: "title with no sluggable characters",
			input: CreateArticleInput{
				Title:    "!!! ???",
				Content:  "content",
				Category: "Tech",
			},
			setupMock:     func(m *MockArticleRepository) {},
			expectedError: apperrors.ErrMissingField,
		},
		{
			name: "slug collision detected by pre-check",
			input: CreateArticleInput{
				Title:    "Hello,   World!   2024",
				Content:  "different content",
				Category: "Tech",
			},
			setupMock: func(m *MockArticleRepository) {
				m.On("SlugExists", mock.Anything, "hello-world-2024", uuid.Nil).Return(true, nil)
			},
			expectedError: apperrors.ErrSlugTaken,
		},
		{
			name: "unique index violation at insert wins over passing pre-check",
			input: CreateArticleInput{
				Title:    "Racy Title",
				Content:  "content",
				Category: "Tech",
			},
			setupMock: func(m *MockArticleRepository) {
				m.On("SlugExists", mock.Anything, "racy-title", uuid.Nil).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Article")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrSlugTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockArticleRepository)
			tt.setupMock(mockRepo)

			svc := NewArticleService(mockRepo, nil)
			article, err := svc.CreateArticle(context.Background(), authorID, tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, article)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, article)
				if tt.check != nil {
					tt.check(t, article)
				}
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestArticleService_UpdateArticle(t *testing.T) {
	articleID := uuid.New()

	existing := func() *model.Article {
		return &model.Article{
			ID:        articleID,
			Title:     "Hello, World! 2024",
			Slug:      "hello-world-2024",
			Excerpt:   "old excerpt",
			Content:   "old content",
			Category:  "Tech",
			Tags:      model.TagList{"go"},
			Published: true,
		}
	}

	strPtr := func(s string) *string { return &s }
	boolPtr := func(b bool) *bool { return &b }

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindByID", mock.Anything, articleID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewArticleService(mockRepo, nil)
		_, err := svc.UpdateArticle(context.Background(), articleID, UpdateArticleInput{Title: strPtr("New")})

		assert.ErrorIs(t, err, apperrors.ErrArticleNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("same title skips conflict check and keeps slug", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindByID", mock.Anything, articleID).Return(existing(), nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Article")).Return(nil)

		svc := NewArticleService(mockRepo, nil)
		article, err := svc.UpdateArticle(context.Background(), articleID, UpdateArticleInput{
			Title: strPtr("Hello, World! 2024"),
		})

		assert.NoError(t, err)
		assert.Equal(t, "hello-world-2024", article.Slug)
		mockRepo.AssertNotCalled(t, "SlugExists", mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("title change recomputes slug and keeps id", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindByID", mock.Anything, articleID).Return(existing(), nil)
		mockRepo.On("SlugExists", mock.Anything, "hello-world-updated", articleID).Return(false, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Article")).Return(nil)

		svc := NewArticleService(mockRepo, nil)
		article, err := svc.UpdateArticle(context.Background(), articleID, UpdateArticleInput{
			Title: strPtr("Hello World Updated"),
		})

		assert.NoError(t, err)
		assert.Equal(t, articleID, article.ID)
		assert.Equal(t, "hello-world-updated", article.Slug)
		assert.Equal(t, "Hello World Updated", article.Title)
		mockRepo.AssertExpectations(t)
	})

	t.Run("title change into another article's slug conflicts", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindByID", mock.Anything, articleID).Return(existing(), nil)
		mockRepo.On("SlugExists", mock.Anything, "taken-title", articleID).Return(true, nil)

		svc := NewArticleService(mockRepo, nil)
		_, err := svc.UpdateArticle(context.Background(), articleID, UpdateArticleInput{
			Title: strPtr("Taken Title"),
		})

		assert.ErrorIs(t, err, apperrors.ErrSlugTaken)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("absent fields are left untouched", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindByID", mock.Anything, articleID).Return(existing(), nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.Article")).Return(nil)

		svc := NewArticleService(mockRepo, nil)
		article, err := svc.UpdateArticle(context.Background(), articleID, UpdateArticleInput{
			Content:   strPtr("new content"),
			Published: boolPtr(false),
		})

		assert.NoError(t, err)
		assert.Equal(t, "Hello, World! 2024", article.Title)
		assert.Equal(t, "hello-world-2024", article.Slug)
		assert.Equal(t, "old excerpt", article.Excerpt)
		assert.Equal(t, "new content", article.Content)
		assert.Equal(t, model.TagList{"go"}, article.Tags)
		assert.False(t, article.Published)
		mockRepo.AssertExpectations(t)
	})
}

func TestArticleService_DeleteArticle(t *testing.T) {
	articleID := uuid.New()

	t.Run("deletes and reports success", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindByID", mock.Anything, articleID).Return(&model.Article{ID: articleID, Slug: "some-slug"}, nil)
		mockRepo.On("Delete", mock.Anything, articleID).Return(true, nil)

		svc := NewArticleService(mockRepo, nil)
		assert.NoError(t, svc.DeleteArticle(context.Background(), articleID))
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown id is not found, not an internal error", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindByID", mock.Anything, articleID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewArticleService(mockRepo, nil)
		err := svc.DeleteArticle(context.Background(), articleID)
		assert.ErrorIs(t, err, apperrors.ErrArticleNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("row vanished between lookup and delete", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindByID", mock.Anything, articleID).Return(&model.Article{ID: articleID, Slug: "some-slug"}, nil)
		mockRepo.On("Delete", mock.Anything, articleID).Return(false, nil)

		svc := NewArticleService(mockRepo, nil)
		err := svc.DeleteArticle(context.Background(), articleID)
		assert.ErrorIs(t, err, apperrors.ErrArticleNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestArticleService_ListArticles(t *testing.T) {
	t.Run("pagination metadata for 25 rows at limit 10", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("List", mock.Anything, repository.ArticleFilter{
			Offset: 20,
			Limit:  10,
		}).Return([]model.Article{{Title: "one"}}, int64(25), nil)

		svc := NewArticleService(mockRepo, nil)
		result, err := svc.ListArticles(context.Background(), ArticleFilters{Page: 3, Limit: 10})

		assert.NoError(t, err)
		assert.Equal(t, 3, result.Pagination.Page)
		assert.Equal(t, int64(25), result.Pagination.Total)
		assert.Equal(t, 3, result.Pagination.TotalPages)
		assert.False(t, result.Pagination.HasNext)
		assert.True(t, result.Pagination.HasPrev)
		mockRepo.AssertExpectations(t)
	})

	t.Run("defaults applied and limit capped", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("List", mock.Anything, repository.ArticleFilter{
			Offset: 0,
			Limit:  100,
		}).Return([]model.Article{}, int64(0), nil)

		svc := NewArticleService(mockRepo, nil)
		result, err := svc.ListArticles(context.Background(), ArticleFilters{Page: 0, Limit: 1000})

		assert.NoError(t, err)
		assert.Equal(t, 1, result.Pagination.Page)
		assert.Equal(t, 100, result.Pagination.Limit)
		assert.Equal(t, 0, result.Pagination.TotalPages)
		assert.False(t, result.Pagination.HasNext)
		assert.False(t, result.Pagination.HasPrev)
		mockRepo.AssertExpectations(t)
	})

	t.Run("filters forwarded to the repository", func(t *testing.T) {
		published := true
		mockRepo := new(MockArticleRepository)
		mockRepo.On("List", mock.Anything, repository.ArticleFilter{
			Category:  "Tech",
			Author:    "Jane",
			Search:    "golang",
			Published: &published,
			Offset:    0,
			Limit:     1,
		}).Return([]model.Article{{Title: "match"}}, int64(2), nil)

		svc := NewArticleService(mockRepo, nil)
		result, err := svc.ListArticles(context.Background(), ArticleFilters{
			Category:  "Tech",
			Author:    "Jane",
			Search:    "golang",
			Published: &published,
			Page:      1,
			Limit:     1,
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, result.Pagination.TotalPages)
		assert.True(t, result.Pagination.HasNext)
		assert.False(t, result.Pagination.HasPrev)
		mockRepo.AssertExpectations(t)
	})
}

func TestArticleService_RecentArticles(t *testing.T) {
	now := time.Now()
	recent := []model.Article{
		{Title: "newest", Published: true, CreatedAt: now},
		{Title: "older", Published: true, CreatedAt: now.Add(-time.Hour)},
	}

	t.Run("forwards requested limit", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("ListRecent", mock.Anything, 5).Return(recent, nil)

		svc := NewArticleService(mockRepo, nil)
		articles, err := svc.RecentArticles(context.Background(), 5)

		assert.NoError(t, err)
		assert.Len(t, articles, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("ListRecent", mock.Anything, 5).Return(recent, nil)

		svc := NewArticleService(mockRepo, nil)
		_, err := svc.RecentArticles(context.Background(), 0)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestArticleService_GetArticle(t *testing.T) {
	articleID := uuid.New()

	t.Run("unknown id maps to the domain error", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindByID", mock.Anything, articleID).Return(nil, gorm.ErrRecordNotFound)

		svc := NewArticleService(mockRepo, nil)
		_, err := svc.GetArticle(context.Background(), articleID)
		assert.ErrorIs(t, err, apperrors.ErrArticleNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown slug maps to the domain error", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		mockRepo.On("FindBySlug", mock.Anything, "missing-slug").Return(nil, gorm.ErrRecordNotFound)

		svc := NewArticleService(mockRepo, nil)
		_, err := svc.GetArticleBySlug(context.Background(), "missing-slug")
		assert.ErrorIs(t, err, apperrors.ErrArticleNotFound)
		mockRepo.AssertExpectations(t)
	})
}
