// Package auth handles JWT issuance/verification and password hashing.
package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/app-catalog/app-catalog/internal/config"
)

var (
	// ErrTokenInvalid is returned when a token fails signature or claims
	// validation for any reason, including expiry.
	ErrTokenInvalid = errors.New("auth: token invalid")

	// ErrSecretMissing is returned by NewTokenIssuer when no signing secret
	// is configured.
	ErrSecretMissing = errors.New("auth: JWT_SECRET environment variable is required; generate one with: openssl rand -hex 32")
)

// Claims are the JWT claims carried by catalog access and refresh tokens.
type Claims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"is_admin"`
	IsDeveloper bool   `json:"is_developer"`
	TokenType   string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies catalog JWTs. Construct one at startup with
// NewTokenIssuer and share it; it is safe for concurrent use.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer builds a TokenIssuer from the auth config and the JWT_SECRET
// environment variable. There is no dev-mode fallback: a missing secret is a
// startup error in every environment.
func NewTokenIssuer(cfg config.AuthConfig) (*TokenIssuer, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrSecretMissing
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("auth: JWT_SECRET must be at least 32 characters, got %d", len(secret))
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.TokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// NewTokenIssuerWithSecret is like NewTokenIssuer but takes the secret
// directly. Used by tests and by callers that manage secrets themselves.
func NewTokenIssuerWithSecret(secret string, cfg config.AuthConfig) (*TokenIssuer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("auth: signing secret must be at least 32 characters, got %d", len(secret))
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.TokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

func (ti *TokenIssuer) sign(userID, email string, isAdmin, isDeveloper bool, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      userID,
		Email:       email,
		IsAdmin:     isAdmin,
		IsDeveloper: isDeveloper,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// IssueAccessToken creates a short-lived access token for the user.
func (ti *TokenIssuer) IssueAccessToken(userID, email string, isAdmin, isDeveloper bool) (string, error) {
	return ti.sign(userID, email, isAdmin, isDeveloper, "access", ti.accessTTL)
}

// IssueRefreshToken creates a long-lived refresh token for the user.
func (ti *TokenIssuer) IssueRefreshToken(userID, email string, isAdmin, isDeveloper bool) (string, error) {
	return ti.sign(userID, email, isAdmin, isDeveloper, "refresh", ti.refreshTTL)
}

// Verify parses and validates a token string and returns its claims.
// Any failure, including an expired token or an unexpected signing method,
// is reported as ErrTokenInvalid.
func (ti *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithIssuer(ti.issuer))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyRefresh validates a token and additionally requires it to be a
// refresh token, so a leaked access token cannot mint new credentials.
func (ti *TokenIssuer) VerifyRefresh(tokenString string) (*Claims, error) {
	claims, err := ti.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
