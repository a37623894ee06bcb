package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvFile, "DATABASE_URL", "PG_DSN", "HTTP_ADDR", "AUTH_JWT_SECRET", "JWT_SECRET",
		"NOTIFY_WEBHOOK_URL", "SAVINGS_INTEREST_SHARE", "CAMPAIGN_RUN_INTERVAL",
		"BACKUP_DIR", "BACKUP_RETAIN", "BACKUP_DAILY_AT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/e2d")
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.CampaignInterval != time.Minute {
		t.Errorf("campaign interval = %v", cfg.CampaignInterval)
	}
	if cfg.Backup.DailyAt != "03:00" {
		t.Errorf("backup daily at = %q", cfg.Backup.DailyAt)
	}
	if !cfg.SavingsInterestShare.IsZero() {
		t.Errorf("interest share = %s, want zero", cfg.SavingsInterestShare)
	}
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "e2d.yaml")
	content := []byte(`database_url: postgres://file/e2d
jwt_secret: file-secret
http_addr: ":9090"
savings_interest_share: "0.15"
campaign_interval: 30s
backup:
  dir: /srv/backups
  retain: 7
  daily_at: "02:30"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvFile, path)
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://file/e2d" {
		t.Errorf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Errorf("http addr = %q, env must win over file", cfg.HTTPAddr)
	}
	if cfg.SavingsInterestShare.String() != "0.15" {
		t.Errorf("interest share = %s", cfg.SavingsInterestShare)
	}
	if cfg.CampaignInterval != 30*time.Second {
		t.Errorf("campaign interval = %v", cfg.CampaignInterval)
	}
	if cfg.Backup.Dir != "/srv/backups" || cfg.Backup.Retain != 7 || cfg.Backup.DailyAt != "02:30" {
		t.Errorf("backup = %+v", cfg.Backup)
	}
}

func TestLoadRequiredFields(t *testing.T) {
	clearConfigEnv(t)
	if _, err := Load(); !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("err = %v, want ErrMissingDatabaseURL", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/e2d")
	if _, err := Load(); !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("err = %v, want ErrMissingJWTSecret", err)
	}
}
