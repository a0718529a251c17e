package crypto

import (
	"errors"
	"strings"
	"testing"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestSealOpen_RoundTrip(t *testing.T) {
	cipher, err := NewTokenCipher(testKey)
	if err != nil {
		t.Fatalf("NewTokenCipher: %v", err)
	}

	plaintext := "gho_testtoken123456"
	sealed, err := cipher.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if sealed == plaintext {
		t.Fatal("ciphertext equals plaintext")
	}
	if strings.Contains(sealed, plaintext) {
		t.Fatal("ciphertext leaks plaintext")
	}

	opened, err := cipher.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened != plaintext {
		t.Errorf("Open = %q, want %q", opened, plaintext)
	}
}

func TestSeal_NoncesDiffer(t *testing.T) {
	cipher, _ := NewTokenCipher(testKey)

	a, _ := cipher.Seal("same input")
	b, _ := cipher.Seal("same input")
	if a == b {
		t.Error("two seals of the same plaintext are identical")
	}
}

func TestNewTokenCipher_RejectsShortKey(t *testing.T) {
	if _, err := NewTokenCipher([]byte("too short")); !errors.Is(err, ErrKeyLengthInvalid) {
		t.Fatalf("error = %v, want ErrKeyLengthInvalid", err)
	}
}

func TestOpen_WrongKeyFails(t *testing.T) {
	cipher, _ := NewTokenCipher(testKey)
	other, _ := NewTokenCipher([]byte("fedcba9876543210fedcba9876543210"))

	sealed, _ := cipher.Seal("secret")
	if _, err := other.Open(sealed); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("error = %v, want ErrDecryptionFailed", err)
	}
}

func TestOpen_CorruptedCiphertext(t *testing.T) {
	cipher, _ := NewTokenCipher(testKey)

	if _, err := cipher.Open("not base64!!!"); !errors.Is(err, ErrCiphertextCorrupted) {
		t.Fatalf("error = %v, want ErrCiphertextCorrupted", err)
	}
	if _, err := cipher.Open("c2hvcnQ"); !errors.Is(err, ErrCiphertextCorrupted) {
		t.Fatalf("error = %v, want ErrCiphertextCorrupted for truncated input", err)
	}
}

func TestDeriveTokenCipher(t *testing.T) {
	salt := []byte("0123456789abcdef")

	a, err := DeriveTokenCipher("passphrase", salt, 0)
	if err != nil {
		t.Fatalf("DeriveTokenCipher: %v", err)
	}
	b, err := DeriveTokenCipher("passphrase", salt, 0)
	if err != nil {
		t.Fatalf("DeriveTokenCipher: %v", err)
	}

	// Same passphrase and salt must derive interoperable ciphers.
	sealed, _ := a.Seal("portable")
	opened, err := b.Open(sealed)
	if err != nil || opened != "portable" {
		t.Fatalf("derived ciphers not interoperable: %v", err)
	}
}

func TestDeriveTokenCipher_RejectsShortSalt(t *testing.T) {
	if _, err := DeriveTokenCipher("passphrase", []byte("short"), 0); !errors.Is(err, ErrSaltTooShort) {
		t.Fatalf("error = %v, want ErrSaltTooShort", err)
	}
}
