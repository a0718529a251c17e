package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "appcatalog" {
		t.Errorf("database.name = %q, want appcatalog", cfg.Database.Name)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("auth.token_ttl = %v, want 1h", cfg.Auth.TokenTTL)
	}
	if cfg.Github.APIURL != "https://api.github.com" {
		t.Errorf("github.api_url = %q", cfg.Github.APIURL)
	}
	if !cfg.Telemetry.MetricsEnabled || cfg.Telemetry.MetricsPort != 9090 {
		t.Errorf("telemetry = %+v, want metrics on :9090", cfg.Telemetry)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APPCAT_SERVER_PORT", "9000")
	t.Setenv("APPCAT_DATABASE_HOST", "db.internal")
	t.Setenv("APPCAT_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("server.port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 8443
database:
  name: catalog_test
  password: sekret
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8443 {
		t.Errorf("server.port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Database.Name != "catalog_test" {
		t.Errorf("database.name = %q, want catalog_test", cfg.Database.Name)
	}
	// Untouched keys keep their defaults.
	if cfg.Database.Port != 5432 {
		t.Errorf("database.port = %d, want default 5432", cfg.Database.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("missing config file accepted, want error")
	}
}

func TestLoad_TokenCipherKeyFallback(t *testing.T) {
	t.Setenv("TOKEN_CIPHER_KEY", "0123456789abcdef0123456789abcdef")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Github.TokenCipherKey != "0123456789abcdef0123456789abcdef" {
		t.Errorf("token cipher key not picked up from environment")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 accepted")
	}

	cfg = base()
	cfg.Database.Name = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty database name accepted")
	}

	cfg = base()
	cfg.Auth.TokenTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero token TTL accepted")
	}

	cfg = base()
	cfg.Auth.RefreshTokenTTL = cfg.Auth.TokenTTL / 2
	if err := cfg.Validate(); err == nil {
		t.Error("refresh TTL shorter than access TTL accepted")
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "app", Password: "pw",
		Name: "catalog", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=app password=pw dbname=catalog sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
