package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/app-catalog/app-catalog/internal/catalog"
	"github.com/app-catalog/app-catalog/internal/db/models"
)

var userCols = []string{
	"id", "user_id", "username", "email", "password_hash", "is_admin",
	"is_developer", "avatar_url", "bio", "github_id", "github_username",
	"date_registered", "last_login",
}

func sampleUserRow() *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(int64(1), "11111111-2222-3333-4444-555555555555", "alice", "alice@example.com",
			strPtr("$2a$12$hash"), false, true, nil, nil, nil, nil, time.Now(), nil)
}

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewUserRepository(db), mock
}

func TestCreateUser_GeneratesUserID(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date_registered"}).
			AddRow(int64(1), time.Now()))

	user := &models.User{Username: "alice", Email: "alice@example.com"}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UserID == "" {
		t.Error("UserID not generated")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(uniqueViolation())

	err := repo.CreateUser(context.Background(), &models.User{Username: "alice", Email: "taken@example.com"})
	if !errors.Is(err, catalog.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestGetByEmail_NotFoundIsNilNil(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE email").
		WillReturnRows(sqlmock.NewRows(userCols))

	user, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("user = %+v, want nil", user)
	}
}

func TestFindOrCreateGithubUser_ExistingAccount(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE github_id").
		WithArgs("12345").
		WillReturnRows(sampleUserRow())

	user, err := repo.FindOrCreateGithubUser(context.Background(), "12345", "alice", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}
}

func TestFindOrCreateGithubUser_NewAccountIsDeveloper(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT .* FROM users WHERE github_id").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date_registered"}).
			AddRow(int64(2), time.Now()))

	user, err := repo.FindOrCreateGithubUser(context.Background(), "67890", "bob", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.IsDeveloper {
		t.Error("github users must be created as developers")
	}
	if user.Email == "" {
		t.Error("fallback email not set")
	}
}

func TestSaveGithubToken_Upsert(t *testing.T) {
	repo, mock := newUserRepo(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO github_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	token := &models.GithubToken{
		UserID:      "11111111-2222-3333-4444-555555555555",
		AccessToken: "ciphertext",
		TokenType:   "bearer",
	}
	if err := repo.SaveGithubToken(context.Background(), token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.ID != 1 {
		t.Errorf("token.ID = %d, want 1", token.ID)
	}
}

func TestGetGithubToken_NotFoundIsNilNil(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT .* FROM github_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "access_token", "token_type",
			"refresh_token", "expires_at", "scope", "created_at", "updated_at"}))

	token, err := repo.GetGithubToken(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != nil {
		t.Errorf("token = %+v, want nil", token)
	}
}
