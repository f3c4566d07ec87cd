package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
env: staging
http:
  addr: ":9090"
auth:
  jwt_access_ttl: 5m
  reset_token_ttl: 30m
client:
  base_url: https://api.example.test
  timeout: 7s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Env != "staging" {
		t.Fatalf("unexpected env: %q", cfg.Env)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTP.Addr)
	}
	if cfg.Auth.JWTAccessTTL != 5*time.Minute {
		t.Fatalf("unexpected access ttl: %v", cfg.Auth.JWTAccessTTL)
	}
	if cfg.Auth.ResetTokenTTL != 30*time.Minute {
		t.Fatalf("unexpected reset token ttl: %v", cfg.Auth.ResetTokenTTL)
	}
	if cfg.Client.BaseURL != "https://api.example.test" {
		t.Fatalf("unexpected client base url: %q", cfg.Client.BaseURL)
	}
	if cfg.Client.Timeout != 7*time.Second {
		t.Fatalf("unexpected client timeout: %v", cfg.Client.Timeout)
	}

	// Untouched values keep their defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr: %q", cfg.Redis.Addr)
	}
	if cfg.Auth.RefreshTTL != 720*time.Hour {
		t.Fatalf("unexpected refresh ttl: %v", cfg.Auth.RefreshTTL)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default addr: %q", cfg.HTTP.Addr)
	}
}

func TestEnvOverridesWinOverYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("CLIENT_TIMEOUT", "3s")
	t.Setenv("REDIS_DB", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("unexpected jwt secret: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Client.Timeout != 3*time.Second {
		t.Fatalf("unexpected client timeout: %v", cfg.Client.Timeout)
	}
	if cfg.Redis.DB != 4 {
		t.Fatalf("unexpected redis db: %d", cfg.Redis.DB)
	}
}

func TestEnvOverrideRejectsBadDuration(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CLIENT_TIMEOUT", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for malformed duration override")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT", "LOG_LEVEL", "POSTGRES_DSN", "REDIS_ADDR",
		"REDIS_PASSWORD", "REDIS_DB", "S3_ENDPOINT", "S3_ACCESS_KEY",
		"S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL", "JWT_SECRET",
		"JWT_ACCESS_TTL", "REFRESH_TTL", "RESET_TOKEN_TTL",
		"CLIENT_BASE_URL", "CLIENT_TIMEOUT", "CLIENT_STATE_PATH",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
