// Package github implements GitHub sign-in and the release import endpoints.
package github

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/app-catalog/app-catalog/internal/api/httputil"
	"github.com/app-catalog/app-catalog/internal/middleware"
	"github.com/app-catalog/app-catalog/internal/services"
)

// stateCookie carries the OAuth CSRF state between the login redirect and
// the callback.
const stateCookie = "gh_oauth_state"

// LoginHandler starts the GitHub OAuth flow.
// Implements: GET /api/v1/auth/github
func LoginHandler(authService *services.GithubAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate state"})
			return
		}
		state := base64.RawURLEncoding.EncodeToString(buf)

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(stateCookie, state, 600, "/", "", true, true)
		c.Redirect(http.StatusFound, authService.AuthorizationURL(state))
	}
}

// CallbackHandler completes the OAuth flow: it checks the CSRF state,
// exchanges the code, and returns the signed-in user with catalog tokens.
// Implements: GET /api/v1/auth/github/callback?code=<code>&state=<state>
func CallbackHandler(authService *services.GithubAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		expected, err := c.Cookie(stateCookie)
		if err != nil || expected == "" || c.Query("state") != expected {
			c.JSON(http.StatusBadRequest, gin.H{"error": "OAuth state mismatch"})
			return
		}
		c.SetCookie(stateCookie, "", -1, "/", "", true, true)

		code := c.Query("code")
		if code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
			return
		}

		result, err := authService.CompleteSignIn(c.Request.Context(), code)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ReposHandler lists the caller's GitHub repositories for the import picker.
// Implements: GET /api/v1/github/repos?page=<n>&pageSize=<n>
func ReposHandler(importService *services.ReleaseImportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := httputil.Page(c)
		repos, err := importService.ListRepositories(c.Request.Context(), middleware.CallerID(c), page, pageSize)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"repositories": repos})
	}
}

// ReleasesHandler lists the published releases of one repository.
// Implements: GET /api/v1/github/repos/:owner/:repo/releases
func ReleasesHandler(importService *services.ReleaseImportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := httputil.Page(c)
		releases, err := importService.ListReleases(c.Request.Context(),
			middleware.CallerID(c), c.Param("owner"), c.Param("repo"), page, pageSize)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"releases": releases})
	}
}

// ImportHandler imports one GitHub release as a catalog submission.
// Implements: POST /api/v1/github/import
func ImportHandler(importService *services.ReleaseImportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		req.UserID = middleware.CallerID(c)

		result, err := importService.ImportRelease(c.Request.Context(), &req)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// updateRequest selects the release to pull for an already-listed app.
type updateRequest struct {
	Owner string `json:"owner" binding:"required"`
	Repo  string `json:"repo" binding:"required"`
	// Tag empty means the latest release.
	Tag string `json:"tag"`
}

// UpdateHandler pulls a newer release of an existing app as a new version.
// Implements: PUT /api/v1/apps/:appId/github/update
func UpdateHandler(importService *services.ReleaseImportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		result, err := importService.UpdateFromRelease(c.Request.Context(),
			middleware.CallerID(c), c.Param("appId"), req.Owner, req.Repo, req.Tag)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}
