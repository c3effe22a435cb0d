// Package seed bootstraps a fresh deployment: the first admin account plus a
// small set of published sample articles. Both cmd/seed and the admin seed
// endpoint run the same logic, and every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"

	"elektora/internal/config"
	apperrors "elektora/internal/errors"
	"elektora/internal/model"
	"elektora/internal/repository"
	"elektora/internal/service"
)

// Result reports what the seed run actually created.
type Result struct {
	AdminCreated    bool   `json:"admin_created"`
	AdminEmail      string `json:"admin_email"`
	ArticlesCreated int    `json:"articles_created"`
}

type sampleArticle struct {
	Title    string
	Excerpt  string
	Content  string
	Category string
	Tags     []string
	Featured bool
}

var sampleArticles = []sampleArticle{
	{
		Title:    "Welcome to the Elektora Community",
		Excerpt:  "Who we are, what we build, and how to get involved in the community.",
		Content:  "The Elektora community brings hardware and software enthusiasts together. We run workshops, publish write-ups of member projects, and maintain a shared lab. This article walks through the divisions, how meetings are organized, and where newcomers should start. Drop by any of the weekly sessions, or pick an open project from the gallery and introduce yourself in the discussion thread.",
		Category: "Community",
		Tags:     []string{"community", "welcome"},
		Featured: true,
	},
	{
		Title:    "Getting Started with Embedded Rust",
		Excerpt:  "A first tour of the embedded Rust toolchain on the boards we stock in the lab.",
		Content:  "Rust has become a serious option for firmware. This guide covers installing the target toolchains, flashing the discovery boards available in the hardware zone, and the debugging setup we use during workshops. We start from a blinking LED and end with a small interrupt-driven driver, with links to the repositories used in the last workshop series.",
		Category: "Hardware",
		Tags:     []string{"rust", "embedded", "workshop"},
	},
	{
		Title:    "Building Our Website with Modern Web Tooling",
		Excerpt:  "Notes from the software division on the stack behind this platform.",
		Content:  "The community platform you are reading runs on a small service with a relational database behind it. This post documents the architecture decisions: why articles are addressed by slug, how the role model keeps the editorial workflow simple, and what the deployment pipeline looks like. It doubles as onboarding material for members joining the software division.",
		Category: "Software",
		Tags:     []string{"web", "architecture"},
	},
}

// Run ensures the admin account exists and inserts the sample articles under
// its authorship, skipping any whose slug is already taken.
func Run(
	ctx context.Context,
	cfg *config.Config,
	userRepo repository.UserRepository,
	users service.UserService,
	articles service.ArticleService,
) (*Result, error) {
	result := &Result{AdminEmail: cfg.AdminEmail}

	author, created, err := users.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	result.AdminCreated = created

	if author == nil {
		// An admin already existed; attribute the samples to the configured
		// admin account if present, otherwise to any admin.
		author, err = userRepo.FindByEmail(ctx, cfg.AdminEmail)
		if err != nil {
			author, err = firstAdmin(ctx, userRepo)
			if err != nil {
				return nil, fmt.Errorf("find seed author: %w", err)
			}
		}
	}

	for _, sample := range sampleArticles {
		_, err := articles.CreateArticle(ctx, author.ID, service.CreateArticleInput{
			Title:     sample.Title,
			Excerpt:   sample.Excerpt,
			Content:   sample.Content,
			Category:  sample.Category,
			Tags:      sample.Tags,
			Featured:  sample.Featured,
			Published: true,
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrSlugTaken) {
				continue
			}
			return nil, fmt.Errorf("seed article %q: %w", sample.Title, err)
		}
		result.ArticlesCreated++
	}

	return result, nil
}

func firstAdmin(ctx context.Context, userRepo repository.UserRepository) (*model.User, error) {
	all, err := userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].IsAdmin() {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("no admin user found")
}
