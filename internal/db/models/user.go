// Package models - user.go defines the User model and the stored GitHub OAuth
// token. Users authenticate with a password or through GitHub OAuth, and carry
// the two capability flags the catalog trusts: is_developer and is_admin.
package models

import "time"

// User represents a registered account. PasswordHash is nil for accounts that
// only ever signed in through GitHub.
type User struct {
	ID             int64      `db:"id" json:"-"`
	UserID         string     `db:"user_id" json:"user_id"` // stable UUID exposed externally
	Username       string     `db:"username" json:"username"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   *string    `db:"password_hash" json:"-"`
	IsAdmin        bool       `db:"is_admin" json:"is_admin"`
	IsDeveloper    bool       `db:"is_developer" json:"is_developer"`
	AvatarURL      *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Bio            *string    `db:"bio" json:"bio,omitempty"`
	GithubID       *string    `db:"github_id" json:"-"`
	GithubUsername *string    `db:"github_username" json:"github_username,omitempty"`
	DateRegistered time.Time  `db:"date_registered" json:"date_registered"`
	LastLogin      *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// UserPatch carries the optional fields of a profile update.
type UserPatch struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// GithubToken is a stored GitHub access token for one user. AccessToken and
// RefreshToken hold AES-GCM ciphertext, never the raw token.
type GithubToken struct {
	ID           int64      `db:"id"`
	UserID       string     `db:"user_id"`
	AccessToken  string     `db:"access_token"`
	TokenType    string     `db:"token_type"`
	RefreshToken *string    `db:"refresh_token"`
	ExpiresAt    *time.Time `db:"expires_at"`
	Scope        string     `db:"scope"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
