package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Club struct {
		TimeZone      string `yaml:"time_zone"`
		KnowledgePath string `yaml:"knowledge_path"`
	} `yaml:"club"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		CredentialsPath string `yaml:"credentials_path"`
		SheetName       string `yaml:"sheet_name"`
	} `yaml:"sheets"`

	Ledger struct {
		Path string `yaml:"path"`
	} `yaml:"ledger"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	History struct {
		MaxMessages int `yaml:"max_messages"`
	} `yaml:"history"`

	Audit struct {
		Path string `yaml:"path"`
	} `yaml:"audit"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Managers []int64 `yaml:"managers"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Club.TimeZone == "" {
		cfg.Club.TimeZone = "Asia/Omsk"
	}
	if cfg.Club.KnowledgePath == "" {
		cfg.Club.KnowledgePath = "configs/club.txt"
	}
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = "data/bookings.xlsx"
	}
	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "data/audit.db"
	}
	if cfg.Sheets.SheetName == "" {
		cfg.Sheets.SheetName = "Bookings"
	}

	for _, p := range []string{cfg.Ledger.Path, cfg.Audit.Path} {
		if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, err
		}
	}

	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token is required")
	}

	return &cfg, nil
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) BackupRetention() time.Duration {
	if c.Backup.RetentionDays <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(c.Backup.RetentionDays) * 24 * time.Hour
}
