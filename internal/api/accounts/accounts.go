// Package accounts implements registration, login, token refresh, and
// profile management.
package accounts

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/app-catalog/app-catalog/internal/api/httputil"
	"github.com/app-catalog/app-catalog/internal/auth"
	"github.com/app-catalog/app-catalog/internal/db/models"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
	"github.com/app-catalog/app-catalog/internal/middleware"
	"github.com/app-catalog/app-catalog/internal/services"
)

func accountService(db *sqlx.DB, issuer *auth.TokenIssuer) *services.AccountService {
	return services.NewAccountService(repositories.NewUserRepository(db), issuer)
}

// RegisterHandler creates a password-based account and signs it in.
// Implements: POST /api/v1/auth/register
func RegisterHandler(db *sqlx.DB, issuer *auth.TokenIssuer) gin.HandlerFunc {
	svc := accountService(db, issuer)

	return func(c *gin.Context) {
		var reg services.Registration
		if err := c.ShouldBindJSON(&reg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		result, err := svc.Register(c.Request.Context(), &reg)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// LoginHandler verifies an email/password pair and issues tokens.
// Implements: POST /api/v1/auth/login
func LoginHandler(db *sqlx.DB, issuer *auth.TokenIssuer) gin.HandlerFunc {
	svc := accountService(db, issuer)

	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		result, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// RefreshHandler exchanges a refresh token for a fresh token pair.
// Implements: POST /api/v1/auth/refresh
func RefreshHandler(db *sqlx.DB, issuer *auth.TokenIssuer) gin.HandlerFunc {
	svc := accountService(db, issuer)

	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refreshToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		result, err := svc.Refresh(c.Request.Context(), req.RefreshToken)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ProfileHandler serves the authenticated user's own account.
// Implements: GET /api/v1/auth/me
func ProfileHandler(db *sqlx.DB, issuer *auth.TokenIssuer) gin.HandlerFunc {
	svc := accountService(db, issuer)

	return func(c *gin.Context) {
		user, err := svc.Profile(c.Request.Context(), middleware.CallerID(c))
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdateProfileHandler applies a partial update to the authenticated user's
// account.
// Implements: PATCH /api/v1/auth/me
func UpdateProfileHandler(db *sqlx.DB, issuer *auth.TokenIssuer) gin.HandlerFunc {
	svc := accountService(db, issuer)

	return func(c *gin.Context) {
		var patch models.UserPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		user, err := svc.UpdateProfile(c.Request.Context(), middleware.CallerID(c), &patch)
		if err != nil {
			httputil.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
