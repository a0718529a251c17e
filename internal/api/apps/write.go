// write.go implements the developer-facing mutation endpoints: submitting
// apps and versions, editing metadata, and removal.
package apps

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/app-catalog/app-catalog/internal/api/httputil"
	"github.com/app-catalog/app-catalog/internal/db/models"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
	"github.com/app-catalog/app-catalog/internal/middleware"
	"github.com/app-catalog/app-catalog/internal/services"
	"github.com/app-catalog/app-catalog/internal/validation"
)

// SubmitHandler accepts a full submission: app metadata, one version, and its
// platform offerings, persisted atomically. Resubmitting an existing appId
// adds a version to it without touching the app's metadata.
// Implements: POST /api/v1/apps
func SubmitHandler(db *sqlx.DB) gin.HandlerFunc {
	submissionService := services.NewSubmissionService(
		repositories.NewAppRepository(db),
		repositories.NewPlatformRepository(db),
	)

	return func(c *gin.Context) {
		var sub services.Submission
		if err := c.ShouldBindJSON(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		caller := middleware.CallerID(c)
		sub.SubmittedBy = &caller

		result, err := submissionService.Submit(c.Request.Context(), &sub)
		if err != nil {
			httputil.Error(c, err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

type updateRequest struct {
	Name        *string `json:"name"`
	Developer   *string `json:"developer"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	ReleaseDate *string `json:"releaseDate"`
	IsFeatured  *bool   `json:"isFeatured"`
}

// UpdateHandler applies a partial metadata update. The last_updated stamp
// moves on every successful call, even an empty patch.
// Implements: PATCH /api/v1/apps/:appId
func UpdateHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		patch := &models.AppPatch{
			Name:        req.Name,
			Developer:   req.Developer,
			Description: req.Description,
			Category:    req.Category,
			IsFeatured:  req.IsFeatured,
		}
		if req.ReleaseDate != nil {
			parsed, err := validation.ParseReleaseDate(*req.ReleaseDate)
			if err != nil {
				httputil.Error(c, err)
				return
			}
			patch.ReleaseDate = &parsed
		}

		app, err := appRepo.UpdateApp(c.Request.Context(), c.Param("appId"), patch)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, app)
	}
}

// DeleteHandler removes an app and everything attached to it. Deleting an
// absent app reports 404 rather than silently succeeding.
// Implements: DELETE /api/v1/apps/:appId
func DeleteHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		deleted, err := appRepo.DeleteApp(c.Request.Context(), c.Param("appId"))
		if err != nil {
			httputil.Error(c, err)
			return
		}
		if !deleted {
			c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type versionRequest struct {
	Version      string                   `json:"version" binding:"required"`
	ReleaseNotes *string                  `json:"releaseNotes"`
	ReleaseDate  string                   `json:"releaseDate"`
	MinOSVersion *string                  `json:"minOsVersion"`
	SizeBytes    *int64                   `json:"sizeBytes"`
	Platforms    []services.PlatformEntry `json:"platforms" binding:"required"`
}

// SubmitVersionHandler adds a version to an existing app.
// Implements: POST /api/v1/apps/:appId/versions
func SubmitVersionHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)
	submissionService := services.NewSubmissionService(
		appRepo,
		repositories.NewPlatformRepository(db),
	)

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

		var req versionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		caller := middleware.CallerID(c)
		sub := &services.Submission{
			AppID:        appID,
			Name:         app.Name,
			Developer:    app.Developer,
			Description:  app.Description,
			Category:     app.Category,
			ReleaseDate:  req.ReleaseDate,
			Version:      req.Version,
			ReleaseNotes: req.ReleaseNotes,
			MinOSVersion: req.MinOSVersion,
			SizeBytes:    req.SizeBytes,
			Platforms:    req.Platforms,
			SubmittedBy:  &caller,
		}

		result, err := submissionService.Submit(c.Request.Context(), sub)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, result.Version)
	}
}

// UpsertPlatformHandler adds or updates one platform offering on an existing
// version.
// Implements: PUT /api/v1/apps/:appId/versions/:versionId/platforms/:platform
func UpsertPlatformHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)
	platformRepo := repositories.NewPlatformRepository(db)

	return func(c *gin.Context) {
		appID := c.Param("appId")
		versionID, err := strconv.ParseInt(c.Param("versionId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version ID"})
			return
		}

		platform, err := platformRepo.GetByName(c.Request.Context(), c.Param("platform"))
		if err != nil {
			httputil.Error(c, err)
			return
		}
		if platform == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown platform"})
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

		var req struct {
			DownloadURL string  `json:"downloadUrl" binding:"required"`
			Price       float64 `json:"price"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		if req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
			return
		}

		support := &models.PlatformSupport{
			AppID:       appID,
			PlatformID:  platform.ID,
			VersionID:   versionID,
			DownloadURL: req.DownloadURL,
			Price:       req.Price,
		}
		if err := appRepo.UpsertPlatformSupport(c.Request.Context(), support); err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, support)
	}
}
