// Package approvals implements the moderation endpoints: pending queues,
// review decisions, and the approval history.
package approvals

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/app-catalog/app-catalog/internal/api/httputil"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
	"github.com/app-catalog/app-catalog/internal/middleware"
	"github.com/app-catalog/app-catalog/internal/services"
)

// PendingAppsHandler lists apps awaiting moderation.
// Implements: GET /api/v1/admin/apps/pending
func PendingAppsHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		page, pageSize := httputil.Page(c)
		apps, total, err := appRepo.ListPending(c.Request.Context(), page, pageSize)
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

// PendingVersionsHandler lists versions awaiting moderation, joined with
// their app's name.
// Implements: GET /api/v1/admin/versions/pending
func PendingVersionsHandler(db *sqlx.DB) gin.HandlerFunc {
	appRepo := repositories.NewAppRepository(db)

	return func(c *gin.Context) {
		page, pageSize := httputil.Page(c)
		versions, err := appRepo.ListPendingVersions(c.Request.Context(), page, pageSize)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"versions": versions})
	}
}

type decisionRequest struct {
	Status      string  `json:"status" binding:"required"`
	ReviewNotes *string `json:"reviewNotes"`
}

// DecideAppHandler records a review decision on an app.
// Implements: POST /api/v1/admin/apps/:appId/decision
func DecideAppHandler(db *sqlx.DB) gin.HandlerFunc {
	approvalService := services.NewApprovalService(repositories.NewApprovalRepository(db))

	return func(c *gin.Context) {
		var req decisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		reviewer := middleware.CallerID(c)
		record, err := approvalService.Decide(c.Request.Context(), &services.Decision{
			AppID:       c.Param("appId"),
			Status:      req.Status,
			ReviewedBy:  &reviewer,
			ReviewNotes: req.ReviewNotes,
		})
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

// DecideVersionHandler records a review decision on one version of an app.
// Implements: POST /api/v1/admin/apps/:appId/versions/:versionId/decision
func DecideVersionHandler(db *sqlx.DB) gin.HandlerFunc {
	approvalService := services.NewApprovalService(repositories.NewApprovalRepository(db))

	return func(c *gin.Context) {
		versionID, err := strconv.ParseInt(c.Param("versionId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version ID"})
			return
		}

		var req decisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		reviewer := middleware.CallerID(c)
		record, err := approvalService.Decide(c.Request.Context(), &services.Decision{
			AppID:       c.Param("appId"),
			VersionID:   &versionID,
			Status:      req.Status,
			ReviewedBy:  &reviewer,
			ReviewNotes: req.ReviewNotes,
		})
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

// HistoryHandler serves the full decision history of an app, newest first.
// Implements: GET /api/v1/apps/:appId/approvals
func HistoryHandler(db *sqlx.DB) gin.HandlerFunc {
	approvalService := services.NewApprovalService(repositories.NewApprovalRepository(db))

	return func(c *gin.Context) {
		history, err := approvalService.History(c.Request.Context(), c.Param("appId"))
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": history})
	}
}

// VersionHistoryHandler serves the decision history of one version.
// Implements: GET /api/v1/apps/:appId/versions/:versionId/approvals
func VersionHistoryHandler(db *sqlx.DB) gin.HandlerFunc {
	approvalService := services.NewApprovalService(repositories.NewApprovalRepository(db))

	return func(c *gin.Context) {
		versionID, err := strconv.ParseInt(c.Param("versionId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid version ID"})
			return
		}

		history, err := approvalService.VersionHistory(c.Request.Context(), c.Param("appId"), versionID)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": history})
	}
}
