package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/app-catalog/app-catalog/internal/auth"
	"github.com/app-catalog/app-catalog/internal/catalog"
	"github.com/app-catalog/app-catalog/internal/db/models"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
)

// ErrInvalidCredentials is returned for a wrong email/password pair. Login
// never distinguishes "no such account" from "wrong password".
var ErrInvalidCredentials = errors.New("services: invalid credentials")

// Registration is a request to create a password-based account.
type Registration struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Developer bool   `json:"developer"`
}

// AccountService handles password-based registration, login, and token
// refresh.
type AccountService struct {
	userRepo *repositories.UserRepository
	issuer   *auth.TokenIssuer
}

// NewAccountService creates an account service.
func NewAccountService(userRepo *repositories.UserRepository, issuer *auth.TokenIssuer) *AccountService {
	return &AccountService{userRepo: userRepo, issuer: issuer}
}

// Register creates a new account and signs it in. Duplicate usernames or
// emails surface as catalog.ErrConflict.
func (s *AccountService) Register(ctx context.Context, reg *Registration) (*AuthResult, error) {
	username := strings.TrimSpace(reg.Username)
	if len(username) < 3 || len(username) > 100 {
		return nil, catalog.NewValidationError("username", "must be between 3 and 100 characters")
	}
	email := strings.TrimSpace(strings.ToLower(reg.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, catalog.NewValidationError("email", "is not a valid address")
	}
	if len(reg.Password) < 8 {
		return nil, catalog.NewValidationError("password", "must be at least 8 characters")
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, catalog.NewValidationError("password", "must not exceed 72 bytes")
		}
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: &hash,
		IsDeveloper:  reg.Developer,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("account registered", "user_id", user.UserID, "developer", user.IsDeveloper)
	return s.issueTokens(user)
}

// Login verifies an email/password pair and signs the account in.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(*user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.UserID); err != nil {
		slog.Warn("failed to record last login", "user_id", user.UserID, "error", err)
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a fresh token pair. The user is
// re-read so capability changes (e.g. admin revoked) take effect on refresh.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByUserID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, auth.ErrTokenInvalid
	}
	return s.issueTokens(user)
}

// Profile returns the account for a user ID, or catalog.ErrNotFound.
func (s *AccountService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, catalog.ErrNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial profile update.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, patch *models.UserPatch) (*models.User, error) {
	if patch.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*patch.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, catalog.NewValidationError("email", "is not a valid address")
		}
		patch.Email = &email
	}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if len(username) < 3 || len(username) > 100 {
			return nil, catalog.NewValidationError("username", "must be between 3 and 100 characters")
		}
		patch.Username = &username
	}
	return s.userRepo.UpdateProfile(ctx, userID, patch)
}

func (s *AccountService) issueTokens(user *models.User) (*AuthResult, error) {
	accessToken, err := s.issuer.IssueAccessToken(user.UserID, user.Email, user.IsAdmin, user.IsDeveloper)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issuer.IssueRefreshToken(user.UserID, user.Email, user.IsAdmin, user.IsDeveloper)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
