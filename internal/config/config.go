// Package config loads CLI settings from ~/.promptflow/config.yaml, dotenv
// files and PROMPTFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. PROMPTFLOW_SERVER_URL.
const EnvPrefix = "PROMPTFLOW"

const (
	DefaultServerURL       = "http://localhost:8000/api"
	DefaultTimeout         = 30 * time.Second
	DefaultGenerateTimeout = 2 * time.Minute
	DefaultCacheTTL        = 5 * time.Minute
)

type Config struct {
	ServerURL       string      `mapstructure:"server_url" yaml:"server_url"`
	Token           string      `mapstructure:"token" yaml:"token,omitempty"`
	CredentialsPath string      `mapstructure:"credentials_path" yaml:"credentials_path,omitempty"`
	Debug           bool        `mapstructure:"debug" yaml:"debug"`
	Timeout         string      `mapstructure:"timeout" yaml:"timeout"`
	GenerateTimeout string      `mapstructure:"generate_timeout" yaml:"generate_timeout"`
	Cache           CacheConfig `mapstructure:"cache" yaml:"cache"`
	UI              UIConfig    `mapstructure:"ui" yaml:"ui"`
}

type CacheConfig struct {
	TTL     string `mapstructure:"ttl" yaml:"ttl"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

type UIConfig struct {
	Compact bool   `mapstructure:"compact" yaml:"compact"`
	Color   string `mapstructure:"color" yaml:"color"` // auto, always, never
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		ServerURL:       DefaultServerURL,
		Timeout:         DefaultTimeout.String(),
		GenerateTimeout: DefaultGenerateTimeout.String(),
		Cache: CacheConfig{
			TTL:     DefaultCacheTTL.String(),
			Enabled: true,
		},
		UI: UIConfig{
			Color: "auto",
		},
	}
}

// Load reads the YAML file at path without consulting the environment.
// A missing file yields Defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DiscoverPath resolves the config file: flag, then PROMPTFLOW_CONFIG, then
// ~/.promptflow/config.yaml.
func DiscoverPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}

	if envPath := os.Getenv(EnvPrefix + "_CONFIG"); envPath != "" {
		return envPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".promptflow", "config.yaml")
	}

	return filepath.Join(homeDir, ".promptflow", "config.yaml")
}

// LoadDotEnv loads .env.local and then .env from dir. Variables already
// present in the process environment are never overwritten, so .env.local
// wins over .env.
func LoadDotEnv(dir string) error {
	for _, name := range []string{".env.local", ".env"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadWithEnv reads path through v, layering PROMPTFLOW_* environment
// variables and any flags already bound on v over the file and defaults.
// A nil v gets a fresh viper instance.
func LoadWithEnv(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	d := Defaults()
	v.SetDefault("server_url", d.ServerURL)
	v.SetDefault("token", "")
	v.SetDefault("credentials_path", "")
	v.SetDefault("debug", false)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("generate_timeout", d.GenerateTimeout)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("ui.compact", d.UI.Compact)
	v.SetDefault("ui.color", d.UI.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = d.ServerURL
	}

	return cfg, nil
}

// RequestTimeout is the deadline for ordinary API calls.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Timeout, DefaultTimeout)
}

// GenerationTimeout is the deadline for workflow generation.
func (c *Config) GenerationTimeout() time.Duration {
	return parseDuration(c.GenerateTimeout, DefaultGenerateTimeout)
}

// CacheTTL returns the completion cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Cache.TTL, DefaultCacheTTL)
}

// UseColor determines if color output should be used.
func (c *Config) UseColor(noColorFlag bool) bool {
	if noColorFlag || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.UI.Color != "never"
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
