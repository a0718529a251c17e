package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/app-catalog/app-catalog/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T, accessTTL time.Duration) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuerWithSecret(testSecret, config.AuthConfig{
		TokenTTL:        accessTTL,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "app-catalog-test",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuerWithSecret: %v", err)
	}
	return issuer
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := NewTokenIssuer(config.AuthConfig{}); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("error = %v, want ErrSecretMissing", err)
	}

	t.Setenv("JWT_SECRET", "too-short")
	if _, err := NewTokenIssuer(config.AuthConfig{}); err == nil {
		t.Fatal("short secret accepted, want error")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)

	signed, err := issuer.IssueAccessToken("user-1", "alice@example.com", true, false)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	claims, err := issuer.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if !claims.IsAdmin || claims.IsDeveloper {
		t.Errorf("capabilities = admin:%v developer:%v, want admin only", claims.IsAdmin, claims.IsDeveloper)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t, -time.Minute)

	signed, err := issuer.IssueAccessToken("user-1", "alice@example.com", false, false)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := issuer.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerify_RejectsForeignSignature(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	other, err := NewTokenIssuerWithSecret("another-secret-another-secret-xx", config.AuthConfig{
		TokenTTL: time.Hour,
		Issuer:   "app-catalog-test",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuerWithSecret: %v", err)
	}

	signed, err := other.IssueAccessToken("user-1", "alice@example.com", false, false)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := issuer.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerify_RejectsWrongIssuer(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	other, err := NewTokenIssuerWithSecret(testSecret, config.AuthConfig{
		TokenTTL: time.Hour,
		Issuer:   "someone-else",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuerWithSecret: %v", err)
	}

	signed, err := other.IssueAccessToken("user-1", "alice@example.com", false, false)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := issuer.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyRefresh_RejectsAccessToken(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)

	access, err := issuer.IssueAccessToken("user-1", "alice@example.com", false, false)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := issuer.VerifyRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("error = %v, want ErrTokenInvalid for an access token", err)
	}

	refresh, err := issuer.IssueRefreshToken("user-1", "alice@example.com", false, false)
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}
	claims, err := issuer.VerifyRefresh(refresh)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %q, want refresh", claims.TokenType)
	}
}
