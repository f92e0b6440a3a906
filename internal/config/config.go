package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CRISISDRILL_"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Scenario ScenarioConfig `koanf:"scenario"`
	Auth     AuthConfig     `koanf:"auth"`
	Upload   UploadConfig   `koanf:"upload"`
	App      AppConfig      `koanf:"app"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port string `koanf:"port"`
}

type ScenarioConfig struct {
	Path         string        `koanf:"path"`
	Timezone     string        `koanf:"timezone"`
	PollInterval time.Duration `koanf:"poll_interval"`
}

type AuthConfig struct {
	AdminPassword       string `koanf:"admin_password"`
	FacilitatorPassword string `koanf:"facilitator_password"`
	ObserverPassword    string `koanf:"observer_password"`
	CookieSecret        string `koanf:"cookie_secret"`
	Demo                bool   `koanf:"demo"`
}

type UploadConfig struct {
	ImageDir string `koanf:"image_dir"`
}

type AppConfig struct {
	ID       string `koanf:"id"`
	Tracking string `koanf:"tracking"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// Load reads the yaml file at path, then applies CRISISDRILL_* environment
// overrides. Double underscores in variable names separate config sections
// (CRISISDRILL_SERVER__PORT -> server.port).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, err
	}

	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "__", "."), value
	}), nil)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Scenario.Timezone == "" {
		cfg.Scenario.Timezone = "Europe/Paris"
	}
	if cfg.Scenario.PollInterval <= 0 {
		cfg.Scenario.PollInterval = time.Second
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":5000"
	}
	if cfg.Upload.ImageDir == "" {
		cfg.Upload.ImageDir = "static/images"
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scenario.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Scenario.Timezone, err)
	}
	return loc, nil
}
