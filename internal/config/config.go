package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string   `yaml:"addr"`            // API bind address
	LogDir         string   `yaml:"log_dir"`         // logs directory
	DatabaseURL    string   `yaml:"database_url"`    // empty means in-memory store
	ReportDir      string   `yaml:"report_dir"`      // finished artifacts land here
	DataDir        string   `yaml:"data_dir"`        // source CSVs for the loader
	ArtifactFormat string   `yaml:"artifact_format"` // "csv" (default) or "xlsx"
	SlackWebhook   string   `yaml:"slack_webhook"`   // empty disables failure notifications
	PublicAPIKeys  []string `yaml:"public_api_keys"`
	AdminAPIKeys   []string `yaml:"admin_api_keys"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	PublicRPM   int `yaml:"public_rpm"`
	PublicBurst int `yaml:"public_burst"`
	AdminRPM    int `yaml:"admin_rpm"`
	AdminBurst  int `yaml:"admin_burst"`

	RunTimeout    time.Duration `yaml:"run_timeout"`    // ceiling for one report run
	JobTTL        time.Duration `yaml:"job_ttl"`        // 0 disables eviction
	SweepInterval time.Duration `yaml:"sweep_interval"` // 0 disables the sweeper
}

func defaults() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		LogDir:         "logs",
		ReportDir:      "generated_reports",
		DataDir:        "data",
		ArtifactFormat: "csv",
		PublicRPM:      120,
		PublicBurst:    60,
		AdminRPM:       60,
		AdminBurst:     30,
		RunTimeout:     5 * time.Minute,
		JobTTL:         24 * time.Hour,
		SweepInterval:  10 * time.Minute,
	}
}

// Load builds the config from defaults, then an optional YAML file named by
// CONFIG_FILE, then environment variables. Env wins so deployments can
// override a shared file per instance.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// FromEnv is Load without the file layer; handy in tools and tests.
func FromEnv() Config {
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	setString(&cfg.Addr, "ADDR")
	setString(&cfg.LogDir, "LOG_DIR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.ReportDir, "REPORT_DIR")
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.ArtifactFormat, "ARTIFACT_FORMAT")
	setString(&cfg.SlackWebhook, "SLACK_WEBHOOK")
	setList(&cfg.PublicAPIKeys, "PUBLIC_API_KEYS")
	setList(&cfg.AdminAPIKeys, "ADMIN_API_KEYS")
	setList(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")
	setInt(&cfg.PublicRPM, "PUBLIC_RPM")
	setInt(&cfg.PublicBurst, "PUBLIC_BURST")
	setInt(&cfg.AdminRPM, "ADMIN_RPM")
	setInt(&cfg.AdminBurst, "ADMIN_BURST")
	setDurationMS(&cfg.RunTimeout, "RUN_TIMEOUT_MS")
	setDurationMS(&cfg.JobTTL, "JOB_TTL_MS")
	setDurationMS(&cfg.SweepInterval, "SWEEP_INTERVAL_MS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*dst = n
		}
	}
}

func setDurationMS(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			*dst = time.Duration(ms) * time.Millisecond
		}
	}
}
