package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvFile names the env var pointing at an optional yaml config file.
// File values fill the defaults; env vars override both.
const EnvFile = "E2D_CONFIG"

var (
	ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("config: AUTH_JWT_SECRET is required")
)

// Config is the full service configuration.
type Config struct {
	DatabaseURL          string
	HTTPAddr             string
	JWTSecret            string
	NotifyWebhookURL     string
	SavingsInterestShare decimal.Decimal
	CampaignInterval     time.Duration
	Backup               Backup
}

// Backup holds the snapshot export settings.
type Backup struct {
	Dir     string
	Retain  int
	DailyAt string
}

// fileConfig is the yaml shape. Decimal and duration fields stay strings
// here and are parsed after the env overlay.
type fileConfig struct {
	DatabaseURL          string `yaml:"database_url"`
	HTTPAddr             string `yaml:"http_addr"`
	JWTSecret            string `yaml:"jwt_secret"`
	NotifyWebhookURL     string `yaml:"notify_webhook_url"`
	SavingsInterestShare string `yaml:"savings_interest_share"`
	CampaignInterval     string `yaml:"campaign_interval"`
	Backup               struct {
		Dir     string `yaml:"dir"`
		Retain  int    `yaml:"retain"`
		DailyAt string `yaml:"daily_at"`
	} `yaml:"backup"`
}

// Load reads the optional yaml file named by E2D_CONFIG, then applies env
// overrides and defaults. DatabaseURL and JWTSecret are required.
func Load() (Config, error) {
	var file fileConfig
	if path := os.Getenv(EnvFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		DatabaseURL:      pick(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN"), file.DatabaseURL),
		HTTPAddr:         pick(os.Getenv("HTTP_ADDR"), file.HTTPAddr, ":8080"),
		JWTSecret:        pick(os.Getenv("AUTH_JWT_SECRET"), os.Getenv("JWT_SECRET"), file.JWTSecret),
		NotifyWebhookURL: pick(os.Getenv("NOTIFY_WEBHOOK_URL"), file.NotifyWebhookURL),
		Backup: Backup{
			Dir:     pick(os.Getenv("BACKUP_DIR"), file.Backup.Dir, filepath.FromSlash("var/backups")),
			Retain:  pickInt(os.Getenv("BACKUP_RETAIN"), file.Backup.Retain),
			DailyAt: pick(os.Getenv("BACKUP_DAILY_AT"), file.Backup.DailyAt, "03:00"),
		},
	}
	cfg.SavingsInterestShare = parseDecimal(pick(os.Getenv("SAVINGS_INTEREST_SHARE"), file.SavingsInterestShare))
	cfg.CampaignInterval = parseDuration(pick(os.Getenv("CAMPAIGN_RUN_INTERVAL"), file.CampaignInterval), time.Minute)

	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}
	return cfg, nil
}

// pick returns the first non-empty value.
func pick(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func pickInt(env string, file int) int {
	if env != "" {
		if parsed, err := strconv.Atoi(env); err == nil {
			return parsed
		}
	}
	return file
}

// parseDecimal leaves the share zero when unset or malformed; callers fall
// back to their own defaults on a non-positive share.
func parseDecimal(value string) decimal.Decimal {
	if value == "" {
		return decimal.Decimal{}
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}
	}
	return parsed
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
