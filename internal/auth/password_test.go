package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22!" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "hunter22!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter23!") {
		t.Error("wrong password accepted")
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("error = %v, want ErrPasswordTooLong", err)
	}

	// Exactly at the bcrypt limit is fine.
	if _, err := HashPassword(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("72-byte password rejected: %v", err)
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "whatever") {
		t.Error("malformed hash accepted")
	}
}
