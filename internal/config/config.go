package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "aquawatch/libs/config"
)

// Config defines aquawatch service configuration.
type Config struct {
	HTTP struct {
		Port           string   `yaml:"port" env:"AQUAWATCH_HTTP_PORT"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"AQUAWATCH_ALLOWED_ORIGINS"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"AQUAWATCH_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"AQUAWATCH_REDIS_ADDR"`
		Password string `yaml:"password" env:"AQUAWATCH_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"AQUAWATCH_REDIS_DB"`
	} `yaml:"redis"`
	Device struct {
		Timeout    time.Duration `yaml:"timeout" env:"AQUAWATCH_DEVICE_TIMEOUT"`
		Retries    int           `yaml:"retries" env:"AQUAWATCH_DEVICE_RETRIES"`
		RetryDelay time.Duration `yaml:"retry_delay" env:"AQUAWATCH_DEVICE_RETRY_DELAY"`
	} `yaml:"device"`
	DefaultUser string `yaml:"default_user" env:"AQUAWATCH_DEFAULT_USER"`
}

// Load configuration using the shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.HTTP.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Device.Timeout = 5 * time.Second
	cfg.Device.Retries = 2
	cfg.Device.RetryDelay = time.Second
	cfg.DefaultUser = "local"

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if cfg.Device.Retries < 0 {
		return nil, errors.New("config: device retries must not be negative")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
