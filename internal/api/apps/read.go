// Package apps implements the catalog browse and management endpoints.
package apps

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/app-catalog/app-catalog/internal/api/httputil"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
)

// ListHandler handles the public storefront listing.
// Implements: GET /api/v1/apps?page=<n>&pageSize=<n>&category=<c>
func ListHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		page, pageSize := httputil.Page(c)

		var err error
		var apps interface{}
		var total int

		if category := c.Query("category"); category != "" {
			apps, total, err = appRepo.ListByCategory(c.Request.Context(), category, page, pageSize)
		} else {
			apps, total, err = appRepo.ListApproved(c.Request.Context(), page, pageSize)
		}
		if err != nil {
			httputil.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"apps": apps,
			"meta": gin.H{"page": page, "pageSize": pageSize, "total": total},
		})
	}
}

// SearchHandler handles full-catalog search over name, developer, and
// description.
// Implements: GET /api/v1/apps/search?q=<query>&page=<n>&pageSize=<n>
func SearchHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query"})
			return
		}

		page, pageSize := httputil.Page(c)
		apps, total, err := appRepo.Search(c.Request.Context(), query, page, pageSize)
		if err != nil {
			httputil.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"apps": apps,
			"meta": gin.H{"page": page, "pageSize": pageSize, "total": total},
		})
	}
}

// FeaturedHandler handles the featured apps strip.
// Implements: GET /api/v1/apps/featured
func FeaturedHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		apps, err := appRepo.ListFeatured(c.Request.Context())
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"apps": apps})
	}
}

// CategoriesHandler lists the categories currently in use.
// Implements: GET /api/v1/apps/categories
func CategoriesHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		categories, err := appRepo.ListCategories(c.Request.Context())
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}

// DetailHandler serves one app with its approved versions and platform
// offerings.
// Implements: GET /api/v1/apps/:appId
func DetailHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		detail, err := appRepo.GetAppDetail(c.Request.Context(), c.Param("appId"))
		if err != nil {
			httputil.Error(c, err)
			return
		}
		if detail == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// VersionsHandler lists every version of an app, regardless of status.
// Implements: GET /api/v1/apps/:appId/versions
func VersionsHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		appID := c.Param("appId")

		app, err := appRepo.GetApp(c.Request.Context(), appID)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		if app == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
			return
		}

		versions, err := appRepo.ListVersions(c.Request.Context(), appID)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"versions": versions})
	}
}

// PlatformSupportHandler lists the platform offerings of one version.
// Implements: GET /api/v1/apps/:appId/versions/:versionId/platforms
func PlatformSupportHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		appID := c.Param("appId")
		versionID, err := strconv.ParseInt(c.Param("versionId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version ID"})
			return
		}

		version, err := appRepo.GetVersionByID(c.Request.Context(), appID, versionID)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		if version == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Version not found"})
			return
		}

		supports, err := appRepo.ListPlatformSupport(c.Request.Context(), appID, versionID)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"platforms": supports})
	}
}
