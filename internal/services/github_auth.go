package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/app-catalog/app-catalog/internal/auth"
	"github.com/app-catalog/app-catalog/internal/config"
	"github.com/app-catalog/app-catalog/internal/crypto"
	"github.com/app-catalog/app-catalog/internal/db/models"
	"github.com/app-catalog/app-catalog/internal/db/repositories"
	"github.com/app-catalog/app-catalog/internal/scm"
)

// GithubAuthService implements GitHub OAuth sign-in: it exchanges the
// authorization code, finds or creates the catalog user for the GitHub
// account, stores the encrypted token for later release imports, and issues
// catalog JWTs.
type GithubAuthService struct {
	userRepo *repositories.UserRepository
	issuer   *auth.TokenIssuer
	cipher   *crypto.TokenCipher
	oauth    *oauth2.Config
	apiURL   string
}

// NewGithubAuthService creates a GitHub auth service from the OAuth app
// credentials in the config.
func NewGithubAuthService(
	userRepo *repositories.UserRepository,
	issuer *auth.TokenIssuer,
	cipher *crypto.TokenCipher,
	cfg config.GithubConfig,
) *GithubAuthService {
	return &GithubAuthService{
		userRepo: userRepo,
		issuer:   issuer,
		cipher:   cipher,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"repo", "read:user", "user:email"},
			Endpoint:     oauthgithub.Endpoint,
		},
		apiURL: cfg.APIURL,
	}
}

// AuthorizationURL builds the GitHub consent page URL carrying the CSRF
// state parameter.
func (s *GithubAuthService) AuthorizationURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// AuthResult is a completed sign-in: the catalog user plus fresh tokens.
type AuthResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// CompleteSignIn exchanges the authorization code, resolves the GitHub
// account to a catalog user (creating a developer account on first sign-in),
// and stores the encrypted GitHub token so the user can import releases.
func (s *GithubAuthService) CompleteSignIn(ctx context.Context, code string) (*AuthResult, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	ghUser, err := scm.NewClient(s.apiURL, token.AccessToken).FetchAuthenticatedUser(ctx)
	if err != nil {
		return nil, err
	}

	githubID := strconv.FormatInt(ghUser.ID, 10)
	var email *string
	if ghUser.Email != "" {
		email = &ghUser.Email
	}
	var avatarURL *string
	if ghUser.AvatarURL != "" {
		avatarURL = &ghUser.AvatarURL
	}

	user, err := s.userRepo.FindOrCreateGithubUser(ctx, githubID, ghUser.Login, email, avatarURL)
	if err != nil {
		return nil, err
	}

	sealed, err := s.cipher.Seal(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt github token: %w", err)
	}
	stored := &models.GithubToken{
		UserID:      user.UserID,
		AccessToken: sealed,
		TokenType:   token.TokenType,
	}
	if stored.TokenType == "" {
		stored.TokenType = "bearer"
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		stored.ExpiresAt = &expiry
	}
	if token.RefreshToken != "" {
		sealedRefresh, err := s.cipher.Seal(token.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt github refresh token: %w", err)
		}
		stored.RefreshToken = &sealedRefresh
	}
	if err := s.userRepo.SaveGithubToken(ctx, stored); err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.UserID); err != nil {
		slog.Warn("failed to record last login", "user_id", user.UserID, "error", err)
	}

	accessToken, err := s.issuer.IssueAccessToken(user.UserID, user.Email, user.IsAdmin, user.IsDeveloper)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issuer.IssueRefreshToken(user.UserID, user.Email, user.IsAdmin, user.IsDeveloper)
	if err != nil {
		return nil, err
	}

	slog.Info("github sign-in completed", "user_id", user.UserID, "github_login", ghUser.Login)

	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
