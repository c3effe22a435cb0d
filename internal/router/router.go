package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"elektora/internal/auth"
	"elektora/internal/config"
	apperrors "elektora/internal/errors"
	"elektora/internal/handler"
	"elektora/internal/model"
	"elektora/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userRepo repository.UserRepository,
	authHandler *handler.AuthHandler,
	articleHandler *handler.ArticleHandler,
	userHandler *handler.UserHandler,
	seedHandler *handler.SeedHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public auth routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Public article reads
	api.GET("/articles", articleHandler.List)
	api.GET("/articles/recent", articleHandler.Recent)
	api.GET("/articles/featured", articleHandler.Featured)
	api.GET("/articles/categories", articleHandler.Categories)
	api.GET("/articles/authors", articleHandler.Authors)
	api.GET("/articles/slug/:slug", articleHandler.GetBySlug)
	api.GET("/articles/:id", articleHandler.GetByID)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	secured.GET("/me", userHandler.Me)
	secured.PATCH("/profile", userHandler.UpdateProfile)

	// Admin routes: article writes and user management
	admin := secured.Group("", RequireAdmin(userRepo))

	admin.POST("/articles", articleHandler.Create)
	admin.PUT("/articles/:id", articleHandler.Update)
	admin.DELETE("/articles/:id", articleHandler.Delete)

	admin.GET("/admin/users", userHandler.ListUsers)
	admin.PATCH("/admin/users/:id/role", userHandler.UpdateUserRole)
	admin.POST("/admin/seed", seedHandler.Seed)
}

// RequireAdmin gates a route group on the ADMIN role. The role is re-read
// from the user store rather than trusted from the token claim, so a
// demotion takes effect immediately and a stale claim never grants access.
// It must run after the JWT middleware.
func RequireAdmin(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "authentication required",
					Code:  "UNAUTHENTICATED",
				})
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "invalid token claims",
					Code:  "UNAUTHENTICATED",
				})
			}

			user, err := findClaimedUser(c, userRepo, claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "unknown user",
					Code:  "UNAUTHENTICATED",
				})
			}
			if user.Role != model.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: "admin access required",
					Code:  "ADMIN_REQUIRED",
				})
			}

			return next(c)
		}
	}
}

func findClaimedUser(c echo.Context, userRepo repository.UserRepository, claims *auth.Claims) (*model.User, error) {
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, err
	}
	return userRepo.FindByID(c.Request().Context(), id)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
