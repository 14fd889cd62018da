// Package config loads the service configuration from YAML with
// environment overrides for credentials.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Listen    string  `yaml:"listen"`
	LogLevel  string  `yaml:"log_level"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	Astronomy AstronomyConfig `yaml:"astronomy"`
	RiseSet   RiseSetConfig   `yaml:"rise_set"`
	Meteors   MeteorConfig    `yaml:"meteors"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// AstronomyConfig holds the primary event provider credentials.
type AstronomyConfig struct {
	AppID     string `yaml:"app_id"`
	AppSecret string `yaml:"app_secret"`
	BaseURL   string `yaml:"base_url"`
}

// RiseSetConfig holds the rise/set provider settings.
type RiseSetConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// MeteorConfig holds the meteor provider settings.
type MeteorConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// CatalogConfig holds the body catalog settings.
type CatalogConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// Default returns the built-in configuration: serve on :8095, observe
// from Greenwich.
func Default() Config {
	return Config{
		Listen:    ":8095",
		LogLevel:  "info",
		Latitude:  51.4769,
		Longitude: 0.0,
	}
}

// Load reads a YAML config file, layers it over the defaults, and applies
// environment overrides. A missing file is not an error; the defaults and
// environment still apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, cfg.validate()
}

// applyEnv overlays SKYFEED_* environment variables. Credentials are the
// main use: deployments keep secrets out of the config file.
func (c *Config) applyEnv() {
	setString(&c.Listen, "SKYFEED_LISTEN")
	setString(&c.LogLevel, "SKYFEED_LOG_LEVEL")
	setFloat(&c.Latitude, "SKYFEED_LATITUDE")
	setFloat(&c.Longitude, "SKYFEED_LONGITUDE")

	setString(&c.Astronomy.AppID, "SKYFEED_ASTRONOMY_APP_ID")
	setString(&c.Astronomy.AppSecret, "SKYFEED_ASTRONOMY_APP_SECRET")
	setString(&c.RiseSet.APIKey, "SKYFEED_RISESET_API_KEY")
	setString(&c.Meteors.APIKey, "SKYFEED_METEOR_API_KEY")
	setString(&c.Catalog.Token, "SKYFEED_CATALOG_TOKEN")
}

func (c *Config) validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range", c.Longitude)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
