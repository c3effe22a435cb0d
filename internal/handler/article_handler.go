package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"elektora/internal/errors"
	"elektora/internal/service"
)

// ArticleHandler handles article endpoints.
type ArticleHandler struct {
	articleService service.ArticleService
}

// NewArticleHandler creates a new article handler.
func NewArticleHandler(articleService service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// CreateArticleRequest represents an article creation request.
type CreateArticleRequest struct {
	Title         string   `json:"title" validate:"required"`
	Content       string   `json:"content" validate:"required"`
	Excerpt       string   `json:"excerpt"`
	Category      string   `json:"category" validate:"required"`
	FeaturedImage string   `json:"featured_image"`
	Tags          []string `json:"tags"`
	Featured      bool     `json:"featured"`
	Published     bool     `json:"published"`
}

// UpdateArticleRequest represents a partial article update. Absent fields are
// left untouched, not nulled.
type UpdateArticleRequest struct {
	Title         *string  `json:"title"`
	Content       *string  `json:"content"`
	Excerpt       *string  `json:"excerpt"`
	Category      *string  `json:"category"`
	FeaturedImage *string  `json:"featured_image"`
	Tags          []string `json:"tags"`
	Featured      *bool    `json:"featured"`
	Published     *bool    `json:"published"`
}

// List godoc
// @Summary List articles with filtering and pagination
// @Tags articles
// @Produce json
// @Param category query string false "Exact category match"
// @Param author query string false "Exact author name match"
// @Param search query string false "Substring match on title, content, excerpt"
// @Param published query bool false "Published filter; omit for both"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} service.PaginatedArticles
// @Failure 500 {object} errors.ErrorResponse
// @Router /articles [get]
func (h *ArticleHandler) List(c echo.Context) error {
	filters := service.ArticleFilters{
		Category: c.QueryParam("category"),
		Author:   c.QueryParam("author"),
		Search:   c.QueryParam("search"),
	}

	switch c.QueryParam("published") {
	case "true":
		published := true
		filters.Published = &published
	case "false":
		published := false
		filters.Published = &published
	}

	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		filters.Page = page
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filters.Limit = limit
	}

	result, err := h.articleService.ListArticles(c.Request().Context(), filters)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, result)
}

// GetByID godoc
// @Summary Get article by id
// @Tags articles
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} model.Article
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /articles/{id} [get]
func (h *ArticleHandler) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid article id",
			Code:  "INVALID_UUID",
		})
	}

	article, err := h.articleService.GetArticle(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, article)
}

// GetBySlug godoc
// @Summary Get article by slug
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} model.Article
// @Failure 404 {object} errors.ErrorResponse
// @Router /articles/slug/{slug} [get]
func (h *ArticleHandler) GetBySlug(c echo.Context) error {
	article, err := h.articleService.GetArticleBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, article)
}

// Recent godoc
// @Summary List recent published articles
// @Tags articles
// @Produce json
// @Param limit query int false "Maximum number of articles (default 5)"
// @Success 200 {array} model.Article
// @Failure 500 {object} errors.ErrorResponse
// @Router /articles/recent [get]
func (h *ArticleHandler) Recent(c echo.Context) error {
	limit := 5
	if parsed, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		limit = parsed
	}

	articles, err := h.articleService.RecentArticles(c.Request().Context(), limit)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, articles)
}

// Featured godoc
// @Summary List featured published articles
// @Tags articles
// @Produce json
// @Success 200 {array} model.Article
// @Failure 500 {object} errors.ErrorResponse
// @Router /articles/featured [get]
func (h *ArticleHandler) Featured(c echo.Context) error {
	articles, err := h.articleService.FeaturedArticles(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, articles)
}

// Categories godoc
// @Summary List distinct article categories
// @Tags articles
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} errors.ErrorResponse
// @Router /articles/categories [get]
func (h *ArticleHandler) Categories(c echo.Context) error {
	categories, err := h.articleService.Categories(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, categories)
}

// Authors godoc
// @Summary List article author names
// @Tags articles
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} errors.ErrorResponse
// @Router /articles/authors [get]
func (h *ArticleHandler) Authors(c echo.Context) error {
	authors, err := h.articleService.Authors(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, authors)
}

// Create godoc
// @Summary Create a new article
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateArticleRequest true "Article data"
// @Success 201 {object} model.Article
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req CreateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	article, err := h.articleService.CreateArticle(c.Request().Context(), userID, service.CreateArticleInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Category:      req.Category,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
		Featured:      req.Featured,
		Published:     req.Published,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, article)
}

// Update godoc
// @Summary Update an article
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Param request body UpdateArticleRequest true "Fields to update"
// @Success 200 {object} model.Article
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /articles/{id} [put]
func (h *ArticleHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid article id",
			Code:  "INVALID_UUID",
		})
	}

	var req UpdateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	article, err := h.articleService.UpdateArticle(c.Request().Context(), id, service.UpdateArticleInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Category:      req.Category,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
		Featured:      req.Featured,
		Published:     req.Published,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, article)
}

// Delete godoc
// @Summary Delete an article
// @Tags articles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /articles/{id} [delete]
func (h *ArticleHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid article id",
			Code:  "INVALID_UUID",
		})
	}

	if err := h.articleService.DeleteArticle(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "article deleted successfully",
	})
}
