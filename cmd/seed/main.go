// Command seed migrates the schema and bootstraps the admin account and
// sample articles. Safe to run repeatedly.
package main

import (
	"context"
	"log"
	"time"

	"elektora/internal/cache"
	"elektora/internal/config"
	"elektora/internal/db"
	"elektora/internal/model"
	"elektora/internal/repository"
	"elektora/internal/seed"
	"elektora/internal/service"
)

func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Article{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	userRepo := repository.NewUserRepository(gormDB)
	articleRepo := repository.NewArticleRepository(gormDB)
	userService := service.NewUserService(userRepo, cacheClient)
	articleService := service.NewArticleService(articleRepo, cacheClient)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := seed.Run(ctx, cfg, userRepo, userService, articleService)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	if result.AdminCreated {
		log.Printf("created admin user %s", result.AdminEmail)
	} else {
		log.Printf("admin user already present")
	}
	log.Printf("created %d sample articles", result.ArticlesCreated)
}
