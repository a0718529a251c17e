package validation

import (
	"testing"
	"time"
)

func TestValidateAppID(t *testing.T) {
	valid := []string{
		"com.example.myapp",
		"my-app",
		"snake_case_app",
		"app2",
		"a.b",
	}
	for _, id := range valid {
		if err := ValidateAppID(id); err != nil {
			t.Errorf("ValidateAppID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{
		"ab",                        // too short
		"Has.Uppercase",             // case
		"spaces not allowed",        // whitespace
		"double..dot",               // empty segment
		".leading",                  // leading separator
		"trailing.",                 // trailing separator
		"emoji-🚀",                   // non-ascii
		string(make([]byte, 101)),   // too long
	}
	for _, id := range invalid {
		if err := ValidateAppID(id); err == nil {
			t.Errorf("ValidateAppID(%q) = nil, want error", id)
		}
	}
}

func TestParseVersion(t *testing.T) {
	for _, raw := range []string{"1.0.0", "v2.1.3", "1.0.0-beta.1", "0.1"} {
		if _, err := ParseVersion(raw); err != nil {
			t.Errorf("ParseVersion(%q) = %v, want nil", raw, err)
		}
	}
	for _, raw := range []string{"", "not a version", "1.0.0.0.0.whoops!"} {
		if _, err := ParseVersion(raw); err == nil {
			t.Errorf("ParseVersion(%q) = nil, want error", raw)
		}
	}
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct{ tag, want string }{
		{"v1.2.0", "1.2.0"},
		{"V1.2.0", "1.2.0"},
		{"1.2.0", "1.2.0"},
		{"version-one", "version-one"}, // "v" not followed by a digit
		{"v", "v"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTag(tt.tag); got != tt.want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestParseReleaseDate(t *testing.T) {
	got, err := ParseReleaseDate("2024-03-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseReleaseDate = %v, want %v", got, want)
	}

	if _, err := ParseReleaseDate("03/01/2024"); err == nil {
		t.Error("slash-separated date accepted, want error")
	}
	if _, err := ParseReleaseDate("2024-13-40"); err == nil {
		t.Error("out-of-range date accepted, want error")
	}

	today, err := ParseReleaseDate("")
	if err != nil {
		t.Fatalf("unexpected error for empty date: %v", err)
	}
	if today.IsZero() {
		t.Error("empty date should default to today, got zero time")
	}
}

func TestFormatReleaseDate(t *testing.T) {
	d := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
	if got := FormatReleaseDate(d); got != "2024-03-01" {
		t.Errorf("FormatReleaseDate = %q, want 2024-03-01", got)
	}
}
