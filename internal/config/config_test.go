package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MINIO_ACCESS_KEY_ID", "minio")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "minio-secret")
	t.Setenv("SESSION_SECRET", strings.Repeat("s", 32))
}

func TestLoad_AppliesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Fatalf("expected default port 8080 got %d", cfg.API.Port)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("expected default session ttl 24h got %s", cfg.Session.TTL)
	}
	if cfg.Session.CookieName != "resume_session" {
		t.Fatalf("unexpected cookie name %q", cfg.Session.CookieName)
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr())
	}
	if proxies := cfg.API.TrustedProxyList(); len(proxies) != 0 {
		t.Fatalf("expected no trusted proxies by default, got %v", proxies)
	}
	if cfg.Worker.MetricsAddr() != ":9091" {
		t.Fatalf("unexpected worker metrics addr %q", cfg.Worker.MetricsAddr())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	t.Setenv("WORKER_METRICS_PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 9090 {
		t.Fatalf("expected port 9090 got %d", cfg.API.Port)
	}
	if cfg.Session.TTL != 90*time.Minute {
		t.Fatalf("expected ttl 90m got %s", cfg.Session.TTL)
	}
	origins := cfg.API.AllowedOrigins()
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", origins)
	}
	proxies := cfg.API.TrustedProxyList()
	if len(proxies) != 2 || proxies[0] != "10.0.0.0/8" || proxies[1] != "127.0.0.1" {
		t.Fatalf("unexpected trusted proxies %v", proxies)
	}
	if cfg.Worker.MetricsAddr() != ":9191" {
		t.Fatalf("unexpected worker metrics addr %q", cfg.Worker.MetricsAddr())
	}
}

func TestLoad_RejectsInvalidTrustedProxy(t *testing.T) {
	chdir(t, t.TempDir())
	setRequiredEnv(t)
	t.Setenv("TRUSTED_PROXIES", "not-an-ip")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid trusted proxy")
	}
}

func TestLoad_RejectsShortSessionSecret(t *testing.T) {
	chdir(t, t.TempDir())
	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "short")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for short session secret")
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := d.DSN(); got != want {
		t.Fatalf("dsn mismatch: got %q want %q", got, want)
	}
}
