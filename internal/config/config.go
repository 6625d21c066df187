// Package config loads server configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the formcraft server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// StorageConfig selects and parameterizes the blob store.
type StorageConfig struct {
	Driver        string        `yaml:"driver"` // "sqlite" or "file"
	Path          string        `yaml:"path"`
	Key           string        `yaml:"key"`
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// AuthConfig configures the authoring-surface login.
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	AdminEmail        string `yaml:"admin_email"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
}

// Load reads the YAML file at path (skipped when path is empty or missing),
// then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.Server.Addr = getEnv("FORMCRAFT_ADDR", defaultStr(cfg.Server.Addr, ":8080"))
	cfg.Server.StaticDir = getEnv("FORMCRAFT_STATIC_DIR", cfg.Server.StaticDir)
	cfg.Storage.Driver = getEnv("FORMCRAFT_STORAGE_DRIVER", defaultStr(cfg.Storage.Driver, "sqlite"))
	cfg.Storage.Path = getEnv("FORMCRAFT_STORAGE_PATH", defaultStr(cfg.Storage.Path, "formcraft.db"))
	cfg.Storage.Key = getEnv("FORMCRAFT_STORAGE_KEY", defaultStr(cfg.Storage.Key, "formcraft-state-v1"))
	if cfg.Storage.WatchInterval <= 0 {
		cfg.Storage.WatchInterval = 2 * time.Second
	}
	if v := os.Getenv("FORMCRAFT_WATCH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse FORMCRAFT_WATCH_INTERVAL: %w", err)
		}
		cfg.Storage.WatchInterval = d
	}
	cfg.Auth.JWTSecret = getEnv("FORMCRAFT_JWT_SECRET", defaultStr(cfg.Auth.JWTSecret, "formcraft-dev-secret"))
	cfg.Auth.AdminEmail = getEnv("FORMCRAFT_ADMIN_EMAIL", cfg.Auth.AdminEmail)
	cfg.Auth.AdminPasswordHash = getEnv("FORMCRAFT_ADMIN_PASSWORD_HASH", cfg.Auth.AdminPasswordHash)

	if cfg.Storage.Driver != "sqlite" && cfg.Storage.Driver != "file" {
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
