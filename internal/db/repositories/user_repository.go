// user_repository.go implements UserRepository, the identity store: account
// creation, lookup, profile updates, and find-or-create for GitHub sign-in.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/app-catalog/app-catalog/internal/catalog"
	"github.com/app-catalog/app-catalog/internal/db/models"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, user_id, username, email, password_hash, is_admin, is_developer,
	avatar_url, bio, github_id, github_username, date_registered, last_login`

// CreateUser inserts a new account. A duplicate username, email, or github_id
// is reported as catalog.ErrConflict.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}

	query := `
		INSERT INTO users (user_id, username, email, password_hash, is_admin, is_developer,
		                   avatar_url, bio, github_id, github_username)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, date_registered
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.UserID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.IsDeveloper,
		user.AvatarURL,
		user.Bio,
		user.GithubID,
		user.GithubUsername,
	).Scan(&user.ID, &user.DateRegistered)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", user.Username, catalog.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByUserID retrieves a user by external ID. Returns (nil, nil) when the
// user does not exist.
func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	return r.getOne(ctx, `user_id = $1`, userID)
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

// GetByGithubID retrieves a user by linked GitHub account ID. Returns
// (nil, nil) when absent.
func (r *UserRepository) GetByGithubID(ctx context.Context, githubID string) (*models.User, error) {
	return r.getOne(ctx, `github_id = $1`, githubID)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update. Returns catalog.ErrNotFound
// when the user does not exist and catalog.ErrConflict when the new username
// or email is already taken.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, patch *models.UserPatch) (*models.User, error) {
	set := []string{}
	args := []interface{}{}
	idx := 1

	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.AvatarURL != nil {
		add("avatar_url", *patch.AvatarURL)
	}
	if patch.Bio != nil {
		add("bio", *patch.Bio)
	}

	if len(set) == 0 {
		return r.GetByUserID(ctx, userID)
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE user_id = $%d RETURNING %s`,
		strings.Join(set, ", "), idx, userColumns)
	args = append(args, userID)

	user := &models.User{}
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(user)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %q: %w", userID, catalog.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user profile: %w", catalog.ErrConflict)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// TouchLastLogin records a successful sign-in.
func (r *UserRepository) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// FindOrCreateGithubUser resolves a GitHub sign-in to a local account,
// creating one on first sign-in. GitHub accounts are developers by default —
// the only reason to link GitHub is to publish releases.
func (r *UserRepository) FindOrCreateGithubUser(ctx context.Context, githubID, githubUsername string, email *string, avatarURL *string) (*models.User, error) {
	user, err := r.GetByGithubID(ctx, githubID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	resolvedEmail := githubUsername + "@users.noreply.github.com"
	if email != nil && *email != "" {
		resolvedEmail = *email
	}

	user = &models.User{
		Username:       githubUsername,
		Email:          resolvedEmail,
		IsDeveloper:    true,
		AvatarURL:      avatarURL,
		GithubID:       &githubID,
		GithubUsername: &githubUsername,
	}
	if err := r.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ---- GitHub tokens ---------------------------------------------------------

// SaveGithubToken stores (or replaces) a user's GitHub token. Token fields
// must already be encrypted by the caller.
func (r *UserRepository) SaveGithubToken(ctx context.Context, token *models.GithubToken) error {
	query := `
		INSERT INTO github_tokens (user_id, access_token, token_type, refresh_token, expires_at, scope)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id)
		DO UPDATE SET access_token = EXCLUDED.access_token,
		              token_type = EXCLUDED.token_type,
		              refresh_token = EXCLUDED.refresh_token,
		              expires_at = EXCLUDED.expires_at,
		              scope = EXCLUDED.scope,
		              updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		token.UserID,
		token.AccessToken,
		token.TokenType,
		token.RefreshToken,
		token.ExpiresAt,
		token.Scope,
	).Scan(&token.ID, &token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save github token: %w", err)
	}

	return nil
}

// GetGithubToken retrieves a user's stored GitHub token. Returns (nil, nil)
// when the user has none.
func (r *UserRepository) GetGithubToken(ctx context.Context, userID string) (*models.GithubToken, error) {
	token := &models.GithubToken{}
	err := r.db.GetContext(ctx, token, `
		SELECT id, user_id, access_token, token_type, refresh_token, expires_at, scope,
		       created_at, updated_at
		FROM github_tokens WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get github token: %w", err)
	}
	return token, nil
}
