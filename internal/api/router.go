// Package api wires together all HTTP routes for the app catalog backend.
//
// Route grouping:
//   - /api/v1/apps browse endpoints are public: the storefront needs no
//     account to list, search, or view approved apps.
//   - Submission and GitHub import endpoints require a developer account.
//   - Moderation endpoints under /api/v1/admin require an admin account.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/app-catalog/app-catalog/internal/api/accounts"
	"github.com/app-catalog/app-catalog/internal/api/approvals"
	"github.com/app-catalog/app-catalog/internal/api/apps"
	githubapi "github.com/app-catalog/app-catalog/internal/api/github"
	"github.com/app-catalog/app-catalog/internal/auth"
	"github.com/app-catalog/app-catalog/internal/config"
	"github.com/app-catalog/app-catalog/internal/crypto"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
	"github.com/app-catalog/app-catalog/internal/middleware"
	"github.com/app-catalog/app-catalog/internal/services"
)

// NewRouter builds the Gin engine with the full middleware chain and every
// route registered.
func NewRouter(db *sqlx.DB, cfg *config.Config) (*gin.Engine, error) {
	issuer, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		return nil, err
	}

	var cipher *crypto.TokenCipher
	if cfg.Github.TokenCipherKey != "" {
		cipher, err = crypto.NewTokenCipher([]byte(cfg.Github.TokenCipherKey))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token cipher: %w", err)
		}
	}

	userRepo := repositories.NewUserRepository(db)
	appRepo := repositories.NewAppRepository(db)
	submissionService := services.NewSubmissionService(appRepo, repositories.NewPlatformRepository(db))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public storefront.
	v1.GET("/apps", apps.ListHandler(db))
	v1.GET("/apps/search", apps.SearchHandler(db))
	v1.GET("/apps/featured", apps.FeaturedHandler(db))
	v1.GET("/apps/categories", apps.CategoriesHandler(db))
	v1.GET("/apps/:appId", apps.DetailHandler(db))
	v1.GET("/apps/:appId/versions", apps.VersionsHandler(db))
	v1.GET("/apps/:appId/versions/:versionId/platforms", apps.PlatformSupportHandler(db))
	v1.GET("/apps/:appId/approvals", approvals.HistoryHandler(db))
	v1.GET("/apps/:appId/versions/:versionId/approvals", approvals.VersionHistoryHandler(db))

	// Accounts.
	v1.POST("/auth/register", accounts.RegisterHandler(db, issuer))
	v1.POST("/auth/login", accounts.LoginHandler(db, issuer))
	v1.POST("/auth/refresh", accounts.RefreshHandler(db, issuer))

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(issuer))
	authed.GET("/auth/me", accounts.ProfileHandler(db, issuer))
	authed.PATCH("/auth/me", accounts.UpdateProfileHandler(db, issuer))

	// Developer surface: submissions and edits.
	developer := authed.Group("")
	developer.Use(middleware.RequireDeveloper())
	developer.POST("/apps", apps.SubmitHandler(db))
	developer.PATCH("/apps/:appId", apps.UpdateHandler(db))
	developer.DELETE("/apps/:appId", apps.DeleteHandler(db))
	developer.POST("/apps/:appId/versions", apps.SubmitVersionHandler(db))
	developer.PUT("/apps/:appId/versions/:versionId/platforms/:platform", apps.UpsertPlatformHandler(db))

	// GitHub sign-in and release imports; only wired when the OAuth app and
	// token cipher are configured.
	if cipher != nil && cfg.Github.ClientID != "" {
		githubAuth := services.NewGithubAuthService(userRepo, issuer, cipher, cfg.Github)
		importService := services.NewReleaseImportService(userRepo, appRepo, submissionService, cipher, cfg.Github.APIURL)

		v1.GET("/auth/github", githubapi.LoginHandler(githubAuth))
		v1.GET("/auth/github/callback", githubapi.CallbackHandler(githubAuth))

		developer.GET("/github/repos", githubapi.ReposHandler(importService))
		developer.GET("/github/repos/:owner/:repo/releases", githubapi.ReleasesHandler(importService))
		developer.POST("/github/import", githubapi.ImportHandler(importService))
		developer.PUT("/apps/:appId/github/update", githubapi.UpdateHandler(importService))
	}

	// Moderation surface.
	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/apps/pending", approvals.PendingAppsHandler(db))
	admin.GET("/versions/pending", approvals.PendingVersionsHandler(db))
	admin.POST("/apps/:appId/decision", approvals.DecideAppHandler(db))
	admin.POST("/apps/:appId/versions/:versionId/decision", approvals.DecideVersionHandler(db))

	return router, nil
}
