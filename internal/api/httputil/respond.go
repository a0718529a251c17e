// Package httputil maps service and repository errors onto HTTP responses so
// every handler package reports failures the same way.
package httputil

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/app-catalog/app-catalog/internal/auth"
	"github.com/app-catalog/app-catalog/internal/catalog"
	"github.com/app-catalog/app-catalog/internal/scm"
	"github.com/app-catalog/app-catalog/internal/services"
)

// Error writes the JSON error response for err. Unrecognized errors become an
// opaque 500; their detail goes to the log, never to the client.
func Error(c *gin.Context, err error) {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, scm.ErrRepositoryNotFound),
		errors.Is(err, scm.ErrReleaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrNoGithubToken):
		c.JSON(http.StatusForbidden, gin.H{"error": "No linked GitHub account"})
	case errors.Is(err, services.ErrNoMappableAssets):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, scm.ErrBadCredentials):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Stored GitHub credentials were rejected; sign in with GitHub again"})
	case errors.Is(err, scm.ErrRateLimited):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GitHub API rate limit exceeded; try again later"})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Page parses limit/offset-style pagination from ?page= and ?pageSize=.
func Page(c *gin.Context) (page, pageSize int) {
	page = intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = intQuery(c, "pageSize", 10)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

func intQuery(c *gin.Context, name string, fallback int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return n
}
