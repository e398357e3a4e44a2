package main

import "testing"

func TestLoadDatabaseConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("DATABASE_HOST", "env-host")
	t.Setenv("DATABASE_PORT", "6543")
	t.Setenv("POSTGRES_DB", "envdb")
	t.Setenv("POSTGRES_USER", "envuser")
	t.Setenv("POSTGRES_PASSWORD", "envpass")
	t.Setenv("DATABASE_SSLMODE", "")

	cfg, err := loadDatabaseConfig("flag-host", 0, "", "", "flagpass", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Host != "flag-host" || cfg.Port != 6543 || cfg.Name != "envdb" || cfg.User != "envuser" || cfg.Password != "flagpass" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.SSLMode != "disable" {
		t.Fatalf("expected sslmode default, got %q", cfg.SSLMode)
	}
}

func TestLoadDatabaseConfig_RequiresName(t *testing.T) {
	t.Setenv("POSTGRES_DB", "")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")

	if _, err := loadDatabaseConfig("", 0, "", "", "", ""); err == nil {
		t.Fatal("expected error without database name")
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	a, err := generateRandomPassword(18)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := generateRandomPassword(18)
	if len(a) != 24 || a == b {
		t.Fatalf("unexpected passwords %q %q", a, b)
	}
}
