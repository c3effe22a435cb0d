package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"elektora/internal/config"
	"elektora/internal/repository"
	"elektora/internal/seed"
	"elektora/internal/service"
)

// SeedHandler exposes the bootstrap seeding as an admin endpoint.
type SeedHandler struct {
	cfg            *config.Config
	userRepo       repository.UserRepository
	userService    service.UserService
	articleService service.ArticleService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(cfg *config.Config, userRepo repository.UserRepository, userService service.UserService, articleService service.ArticleService) *SeedHandler {
	return &SeedHandler{
		cfg:            cfg,
		userRepo:       userRepo,
		userService:    userService,
		articleService: articleService,
	}
}

// Seed godoc
// @Summary Seed the admin account and sample articles
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} seed.Result
// @Success 201 {object} seed.Result
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} map[string]string
// @Router /admin/seed [post]
func (h *SeedHandler) Seed(c echo.Context) error {
	result, err := seed.Run(c.Request().Context(), h.cfg, h.userRepo, h.userService, h.articleService)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{
			"error": "seeding failed",
		})
	}

	status := http.StatusOK
	if result.AdminCreated || result.ArticlesCreated > 0 {
		status = http.StatusCreated
	}
	return c.JSON(status, result)
}
